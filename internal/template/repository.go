package template

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrTemplateNotFound = errors.New("template not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, gymID int, name string, description *string, coachIDs []int64, days []DayInput) (*Template, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO schedule_templates (gym_id, name, description, coach_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING id, gym_id, name, description, coach_ids, created_at, updated_at
	`

	var tmpl Template
	err = tx.GetContext(ctx, &tmpl, query, gymID, name, description, pq.Array(coachIDs))
	if err != nil {
		return nil, err
	}

	tmpl.Days, err = insertDays(ctx, tx, tmpl.ID, days)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &tmpl, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Template, error) {
	query := `
		SELECT id, gym_id, name, description, coach_ids, created_at, updated_at
		FROM schedule_templates
		WHERE id = $1
	`

	var tmpl Template
	err := r.db.GetContext(ctx, &tmpl, query, id)
	if err != nil {
		return nil, err
	}

	tmpl.Days, err = loadDays(ctx, r.db, tmpl.ID)
	if err != nil {
		return nil, err
	}

	return &tmpl, nil
}

func (r *repository) List(ctx context.Context, gymID, limit, offset int) ([]Template, error) {
	query := `
		SELECT id, gym_id, name, description, coach_ids, created_at, updated_at
		FROM schedule_templates
		WHERE gym_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	templates := []Template{}
	err := r.db.SelectContext(ctx, &templates, query, gymID, limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range templates {
		templates[i].Days, err = loadDays(ctx, r.db, templates[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return templates, nil
}

func (r *repository) CountByGym(ctx context.Context, gymID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM schedule_templates WHERE gym_id = $1`, gymID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Update(ctx context.Context, id int, name, description *string, coachIDs []int64, days []DayInput) (*Template, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE schedule_templates
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    coach_ids = COALESCE($4, coach_ids),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, gym_id, name, description, coach_ids, created_at, updated_at
	`

	var coachArg interface{}
	if coachIDs != nil {
		coachArg = pq.Array(coachIDs)
	}

	var tmpl Template
	err = tx.GetContext(ctx, &tmpl, query, id, name, description, coachArg)
	if err != nil {
		return nil, err
	}

	if days != nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM template_days WHERE template_id = $1`, id)
		if err != nil {
			return nil, err
		}

		tmpl.Days, err = insertDays(ctx, tx, id, days)
		if err != nil {
			return nil, err
		}
	} else {
		tmpl.Days, err = loadDays(ctx, tx, id)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &tmpl, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedule_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

type dayRow struct {
	ID        int `db:"id"`
	DayOfWeek int `db:"day_of_week"`
}

type slotRow struct {
	TimeSlot
	DayID int `db:"day_id"`
}

func insertDays(ctx context.Context, tx *sqlx.Tx, templateID int, days []DayInput) ([]ScheduleDay, error) {
	result := make([]ScheduleDay, 0, len(days))

	for _, day := range days {
		var dayID int
		err := tx.GetContext(ctx, &dayID,
			`INSERT INTO template_days (template_id, day_of_week) VALUES ($1, $2) RETURNING id`,
			templateID, day.DayOfWeek,
		)
		if err != nil {
			return nil, err
		}

		out := ScheduleDay{DayOfWeek: day.DayOfWeek, TimeSlots: []TimeSlot{}}
		for _, slot := range day.TimeSlots {
			var created TimeSlot
			err := tx.GetContext(ctx, &created,
				`INSERT INTO template_slots (day_id, start_time, end_time, capacity)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id, start_time, end_time, capacity`,
				dayID, slot.StartTime, slot.EndTime, slot.Capacity,
			)
			if err != nil {
				return nil, err
			}
			out.TimeSlots = append(out.TimeSlots, created)
		}

		result = append(result, out)
	}

	return result, nil
}

func loadDays(ctx context.Context, q sqlx.QueryerContext, templateID int) ([]ScheduleDay, error) {
	var dayRows []dayRow
	err := sqlx.SelectContext(ctx, q, &dayRows,
		`SELECT id, day_of_week FROM template_days WHERE template_id = $1 ORDER BY day_of_week`,
		templateID,
	)
	if err != nil {
		return nil, err
	}

	var slotRows []slotRow
	err = sqlx.SelectContext(ctx, q, &slotRows,
		`SELECT s.id, s.day_id, s.start_time, s.end_time, s.capacity
		 FROM template_slots s
		 JOIN template_days d ON d.id = s.day_id
		 WHERE d.template_id = $1
		 ORDER BY s.start_time, s.id`,
		templateID,
	)
	if err != nil {
		return nil, err
	}

	slotsByDay := make(map[int][]TimeSlot, len(dayRows))
	for _, row := range slotRows {
		slotsByDay[row.DayID] = append(slotsByDay[row.DayID], row.TimeSlot)
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
