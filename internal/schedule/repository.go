package schedule

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gymsched/internal/template"
)

var (
	ErrScheduleNotFound  = errors.New("active schedule not found")
	ErrSlotNotFound      = errors.New("timeslot not found")
	ErrTimeslotFull      = errors.New("timeslot is full")
	ErrDuplicateSchedule = errors.New("gym already has an active schedule")
	ErrLastCoach         = errors.New("cannot remove the last coach")
)

const uniqueViolation = "23505"

func mapNoRows(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, gymID, templateID int, coachIDs []int64, days []template.ScheduleDay) (*ActiveSchedule, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO active_schedules (gym_id, template_id, coach_ids)
		VALUES ($1, $2, $3)
		RETURNING id, gym_id, template_id, coach_ids, last_reset_at, created_at
	`

	var sched ActiveSchedule
	err = tx.GetContext(ctx, &sched, query, gymID, templateID, pq.Array(coachIDs))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrDuplicateSchedule
		}
		return nil, err
	}

	sched.Days, err = insertDays(ctx, tx, sched.ID, days)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &sched, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*ActiveSchedule, error) {
	query := `
		SELECT id, gym_id, template_id, coach_ids, last_reset_at, created_at
		FROM active_schedules
		WHERE id = $1
	`

	var sched ActiveSchedule
	err := r.db.GetContext(ctx, &sched, query, id)
	if err != nil {
		return nil, err
	}

	sched.Days, err = loadDays(ctx, r.db, sched.ID)
	if err != nil {
		return nil, err
	}

	return &sched, nil
}

func (r *repository) GetByGym(ctx context.Context, gymID int) (*ActiveSchedule, error) {
	query := `
		SELECT id, gym_id, template_id, coach_ids, last_reset_at, created_at
		FROM active_schedules
		WHERE gym_id = $1
	`

	var sched ActiveSchedule
	err := r.db.GetContext(ctx, &sched, query, gymID)
	if err != nil {
		return nil, err
	}

	sched.Days, err = loadDays(ctx, r.db, sched.ID)
	if err != nil {
		return nil, err
	}

	return &sched, nil
}

func (r *repository) GetRef(ctx context.Context, id int) (*Ref, error) {
	var ref Ref
	err := r.db.GetContext(ctx, &ref, `SELECT id, gym_id, template_id FROM active_schedules WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *repository) ListRefs(ctx context.Context) ([]Ref, error) {
	refs := []Ref{}
	err := r.db.SelectContext(ctx, &refs, `SELECT id, gym_id, template_id FROM active_schedules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *repository) ListRefsByGym(ctx context.Context, gymID int) ([]Ref, error) {
	refs := []Ref{}
	err := r.db.SelectContext(ctx, &refs, `SELECT id, gym_id, template_id FROM active_schedules WHERE gym_id = $1 ORDER BY id`, gymID)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]ActiveSchedule, error) {
	query := `
		SELECT id, gym_id, template_id, coach_ids, last_reset_at, created_at
		FROM active_schedules
		ORDER BY gym_id
		LIMIT $1 OFFSET $2
	`

	schedules := []ActiveSchedule{}
	err := r.db.SelectContext(ctx, &schedules, query, limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range schedules {
		schedules[i].Days, err = loadDays(ctx, r.db, schedules[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return schedules, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM active_schedules`)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM active_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	return nil
}

// JoinSlot takes a row lock on the slot before re-checking occupancy, so two
// racing joins for the last spot are serialized and exactly one wins.
func (r *repository) JoinSlot(ctx context.Context, scheduleID, dayOfWeek, slotID int, clientID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var slot struct {
		ID       int `db:"id"`
		Capacity int `db:"capacity"`
	}
	err = tx.GetContext(ctx, &slot, `
		SELECT s.id, s.capacity
		FROM schedule_slots s
		JOIN schedule_days d ON d.id = s.day_id
		WHERE s.id = $1 AND d.schedule_id = $2 AND d.day_of_week = $3
		FOR UPDATE OF s`,
		slotID, scheduleID, dayOfWeek,
	)
	if err != nil {
		return false, mapNoRows(err, ErrSlotNotFound)
	}

	var alreadyJoined bool
	err = tx.GetContext(ctx, &alreadyJoined,
		`SELECT EXISTS(SELECT 1 FROM slot_clients WHERE slot_id = $1 AND client_id = $2)`,
		slotID, clientID,
	)
	if err != nil {
		return false, err
	}
	if alreadyJoined {
		return true, tx.Commit()
	}

	var occupancy int
	err = tx.GetContext(ctx, &occupancy,
		`SELECT COUNT(*) FROM slot_clients WHERE slot_id = $1`,
		slotID,
	)
	if err != nil {
		return false, err
	}
	if occupancy >= slot.Capacity {
		return false, ErrTimeslotFull
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO slot_clients (slot_id, client_id) VALUES ($1, $2)`,
		slotID, clientID,
	)
	if err != nil {
		return false, err
	}

	return false, tx.Commit()
}

func (r *repository) LeaveSlot(ctx context.Context, scheduleID, dayOfWeek, slotID int, clientID int64) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1
			FROM schedule_slots s
			JOIN schedule_days d ON d.id = s.day_id
			WHERE s.id = $1 AND d.schedule_id = $2 AND d.day_of_week = $3
		)`,
		slotID, scheduleID, dayOfWeek,
	)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSlotNotFound
	}

	// Deleting an absent membership is a no-op; leave is idempotent.
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM slot_clients WHERE slot_id = $1 AND client_id = $2`,
		slotID, clientID,
	)
	return err
}

func (r *repository) AssignCoach(ctx context.Context, scheduleID int, coachID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var coachIDs pq.Int64Array
	err = tx.GetContext(ctx, &coachIDs,
		`SELECT coach_ids FROM active_schedules WHERE id = $1 FOR UPDATE`,
		scheduleID,
	)
	if err != nil {
		return mapNoRows(err, ErrScheduleNotFound)
	}

	for _, id := range coachIDs {
		if id == coachID {
			return tx.Commit()
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE active_schedules SET coach_ids = array_append(coach_ids, $2) WHERE id = $1`,
		scheduleID, coachID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) UnassignCoach(ctx context.Context, scheduleID int, coachID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var coachIDs pq.Int64Array
	err = tx.GetContext(ctx, &coachIDs,
		`SELECT coach_ids FROM active_schedules WHERE id = $1 FOR UPDATE`,
		scheduleID,
	)
	if err != nil {
		return mapNoRows(err, ErrScheduleNotFound)
	}

	assigned := false
	for _, id := range coachIDs {
		if id == coachID {
			assigned = true
			break
		}
	}
	if !assigned {
		return tx.Commit()
	}

	if len(coachIDs) == 1 {
		return ErrLastCoach
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE active_schedules SET coach_ids = array_remove(coach_ids, $2) WHERE id = $1`,
		scheduleID, coachID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Reset wipes and re-materializes the schedule's days inside one transaction,
// so a concurrent join either sees the old days or the new ones, never a
// half-replaced schedule.
func (r *repository) Reset(ctx context.Context, scheduleID int, days []template.ScheduleDay) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int
	err = tx.GetContext(ctx, &id,
		`SELECT id FROM active_schedules WHERE id = $1 FOR UPDATE`,
		scheduleID,
	)
	if err != nil {
		return mapNoRows(err, ErrScheduleNotFound)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM schedule_days WHERE schedule_id = $1`, scheduleID)
	if err != nil {
		return err
	}

	if _, err := insertDays(ctx, tx, scheduleID, days); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE active_schedules SET last_reset_at = NOW() WHERE id = $1`,
		scheduleID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) ListClientSlots(ctx context.Context, clientID int64, gymID int) ([]MySlot, error) {
	query := `
		SELECT a.id AS schedule_id, a.gym_id, d.day_of_week,
		       s.id AS timeslot_id, s.start_time, s.end_time
		FROM slot_clients sc
		JOIN schedule_slots s ON s.id = sc.slot_id
		JOIN schedule_days d ON d.id = s.day_id
		JOIN active_schedules a ON a.id = d.schedule_id
		WHERE sc.client_id = $1 AND a.gym_id = $2
		ORDER BY d.day_of_week, s.start_time
	`

	slots := []MySlot{}
	err := r.db.SelectContext(ctx, &slots, query, clientID, gymID)
	if err != nil {
		return nil, err
	}

	return slots, nil
}

type dayRow struct {
	ID        int `db:"id"`
	DayOfWeek int `db:"day_of_week"`
}

type slotRow struct {
	ID        int    `db:"id"`
	DayID     int    `db:"day_id"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
	Capacity  int    `db:"capacity"`
}

type clientRow struct {
	SlotID   int   `db:"slot_id"`
	ClientID int64 `db:"client_id"`
}

// insertDays copies template day structure into schedule rows. Occupancy
// always starts empty, whatever the source looked like.
func insertDays(ctx context.Context, tx *sqlx.Tx, scheduleID int, days []template.ScheduleDay) ([]ScheduleDay, error) {
	result := make([]ScheduleDay, 0, len(days))

	for _, day := range days {
		var dayID int
		err := tx.GetContext(ctx, &dayID,
			`INSERT INTO schedule_days (schedule_id, day_of_week) VALUES ($1, $2) RETURNING id`,
			scheduleID, day.DayOfWeek,
		)
		if err != nil {
			return nil, err
		}

		out := ScheduleDay{DayOfWeek: day.DayOfWeek, TimeSlots: []TimeSlot{}}
		for _, slot := range day.TimeSlots {
			var slotID int
			err := tx.GetContext(ctx, &slotID,
				`INSERT INTO schedule_slots (day_id, start_time, end_time, capacity)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id`,
				dayID, slot.StartTime, slot.EndTime, slot.Capacity,
			)
			if err != nil {
				return nil, err
			}
			out.TimeSlots = append(out.TimeSlots, TimeSlot{
				ID:              slotID,
				StartTime:       slot.StartTime,
				EndTime:         slot.EndTime,
				Capacity:        slot.Capacity,
				AssignedClients: []int64{},
			})
		}

		result = append(result, out)
	}

	return result, nil
}

func loadDays(ctx context.Context, q sqlx.QueryerContext, scheduleID int) ([]ScheduleDay, error) {
	var dayRows []dayRow
	err := sqlx.SelectContext(ctx, q, &dayRows,
		`SELECT id, day_of_week FROM schedule_days WHERE schedule_id = $1 ORDER BY day_of_week`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}

	var slotRows []slotRow
	err = sqlx.SelectContext(ctx, q, &slotRows,
		`SELECT s.id, s.day_id, s.start_time, s.end_time, s.capacity
		 FROM schedule_slots s
		 JOIN schedule_days d ON d.id = s.day_id
		 WHERE d.schedule_id = $1
		 ORDER BY s.start_time, s.id`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}

	var clientRows []clientRow
	err = sqlx.SelectContext(ctx, q, &clientRows,
		`SELECT sc.slot_id, sc.client_id
		 FROM slot_clients sc
		 JOIN schedule_slots s ON s.id = sc.slot_id
		 JOIN schedule_days d ON d.id = s.day_id
		 WHERE d.schedule_id = $1
		 ORDER BY sc.joined_at`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}

	clientsBySlot := make(map[int][]int64)
	for _, row := range clientRows {
		clientsBySlot[row.SlotID] = append(clientsBySlot[row.SlotID], row.ClientID)
	}

	slotsByDay := make(map[int][]TimeSlot, len(dayRows))
	for _, row := range slotRows {
		clients := clientsBySlot[row.ID]
		if clients == nil {
			clients = []int64{}
		}
		slotsByDay[row.DayID] = append(slotsByDay[row.DayID], TimeSlot{
			ID:              row.ID,
			StartTime:       row.StartTime,
			EndTime:         row.EndTime,
			Capacity:        row.Capacity,
			AssignedClients: clients,
		})
	}

	days := make([]ScheduleDay, 0, len(dayRows))
	for _, row := range dayRows {
		slots := slotsByDay[row.ID]
		if slots == nil {
			slots = []TimeSlot{}
		}
		days = append(days, ScheduleDay{DayOfWeek: row.DayOfWeek, TimeSlots: slots})
	}

	return days, nil
}
