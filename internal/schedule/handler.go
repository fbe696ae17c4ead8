package schedule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gymsched/internal/api"
	"gymsched/internal/auth"
	"gymsched/internal/policy"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func requireActor(c *gin.Context) (policy.Actor, bool) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User not authenticated"})
		return policy.Actor{}, false
	}
	return actor, true
}

func pathInt(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		api.Fail(c, api.Invalid("invalid_"+name, "invalid "+name))
		return 0, false
	}
	return value, true
}

// CreateSchedule godoc
// @Summary      Create active schedule from template
// @Description  Materializes the gym's live schedule by copying the template's days.
// @Tags         schedules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateScheduleRequest  true  "Template to copy"
// @Success      201      {object}  api.Response
// @Failure      404      {object}  api.Response
// @Failure      409      {object}  api.Response
// @Router       /schedules/active [post]
func (h *Handler) CreateSchedule(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.Invalid("invalid_body", err.Error()))
		return
	}
	if fieldErrors := api.ValidateStruct(req); fieldErrors != nil {
		api.Fail(c, api.Invalid("validation_failed", fieldErrors[0].Message))
		return
	}

	sched, err := h.service.CreateFromTemplate(c.Request.Context(), actor, req.TemplateID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.Created(c, sched)
}

// ListSchedules godoc
// @Summary      List active schedules
// @Description  Admins see every gym's schedule; owners and coaches see their own gym's.
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  api.Response
// @Router       /schedules/active [get]
func (h *Handler) ListSchedules(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	page, limit := api.PageParams(c)

	schedules, total, err := h.service.List(c.Request.Context(), actor, page, limit)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.List(c, schedules, api.NewPagination(page, limit, total))
}

// GetSchedule godoc
// @Summary      Get active schedule
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Schedule ID"
// @Success      200  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Router       /schedules/active/{id} [get]
func (h *Handler) GetSchedule(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	sched, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, sched)
}

// DeleteSchedule godoc
// @Summary      Delete active schedule
// @Description  Frees the gym to create a new schedule from a template.
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Schedule ID"
// @Success      200  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Router       /schedules/active/{id} [delete]
func (h *Handler) DeleteSchedule(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		api.Fail(c, err)
		return
	}

	api.Message(c, "Schedule deleted")
}

// AssignStaff godoc
// @Summary      Assign coach to active schedule
// @Tags         schedules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                 true  "Schedule ID"
// @Param        request  body      AssignStaffRequest  true  "Coach to assign"
// @Success      200      {object}  api.Response
// @Failure      404      {object}  api.Response
// @Router       /schedules/active/{id}/staff [post]
func (h *Handler) AssignStaff(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	var req AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.Invalid("invalid_body", err.Error()))
		return
	}
	if fieldErrors := api.ValidateStruct(req); fieldErrors != nil {
		api.Fail(c, api.Invalid("validation_failed", fieldErrors[0].Message))
		return
	}

	sched, err := h.service.AssignStaff(c.Request.Context(), actor, id, req.CoachID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, sched)
}

// UnassignStaff godoc
// @Summary      Unassign coach from active schedule
// @Description  Fails when the coach is the schedule's last remaining coach.
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        id       path      int  true  "Schedule ID"
// @Param        coachID  path      int  true  "Coach ID"
// @Success      200      {object}  api.Response
// @Failure      400      {object}  api.Response
// @Failure      404      {object}  api.Response
// @Router       /schedules/active/{id}/staff/{coachID} [delete]
func (h *Handler) UnassignStaff(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	coachID, err := strconv.ParseInt(c.Param("coachID"), 10, 64)
	if err != nil {
		api.Fail(c, api.Invalid("invalid_coach_id", "invalid coach ID"))
		return
	}

	sched, err := h.service.UnassignStaff(c.Request.Context(), actor, id, coachID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, sched)
}

// JoinTimeslot godoc
// @Summary      Join a timeslot
// @Description  Adds the caller to the timeslot if a spot is free. Joining twice is a no-op.
// @Tags         timeslots
// @Security     BearerAuth
// @Produce      json
// @Param        id          path      int  true  "Schedule ID"
// @Param        dayOfWeek   path      int  true  "Day of week (0=Sunday..6=Saturday)"
// @Param        timeslotID  path     int  true  "Timeslot ID"
// @Success      200         {object}  api.Response
// @Failure      404         {object}  api.Response
// @Failure      409         {object}  api.Response
// @Router       /schedules/{id}/days/{dayOfWeek}/timeslots/{timeslotID}/join [post]
func (h *Handler) JoinTimeslot(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	dayOfWeek, ok := pathInt(c, "dayOfWeek")
	if !ok {
		return
	}
	slotID, ok := pathInt(c, "timeslotID")
	if !ok {
		return
	}

	alreadyJoined, err := h.service.Join(c.Request.Context(), actor, id, dayOfWeek, slotID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	if alreadyJoined {
		api.Message(c, "Already joined")
		return
	}
	api.Message(c, "Joined timeslot")
}

// LeaveTimeslot godoc
// @Summary      Leave a timeslot
// @Description  Removes the caller from the timeslot; leaving a slot never joined is a no-op.
// @Tags         timeslots
// @Security     BearerAuth
// @Produce      json
// @Param        id          path      int  true  "Schedule ID"
// @Param        dayOfWeek   path      int  true  "Day of week (0=Sunday..6=Saturday)"
// @Param        timeslotID  path     int  true  "Timeslot ID"
// @Success      200         {object}  api.Response
// @Failure      404         {object}  api.Response
// @Router       /schedules/{id}/days/{dayOfWeek}/timeslots/{timeslotID}/leave [post]
func (h *Handler) LeaveTimeslot(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	dayOfWeek, ok := pathInt(c, "dayOfWeek")
	if !ok {
		return
	}
	slotID, ok := pathInt(c, "timeslotID")
	if !ok {
		return
	}

	if err := h.service.Leave(c.Request.Context(), actor, id, dayOfWeek, slotID); err != nil {
		api.Fail(c, err)
		return
	}

	api.Message(c, "Left timeslot")
}

// AvailableSchedules godoc
// @Summary      View the gym's schedule with availability
// @Description  Each timeslot carries available_spots and is_user_assigned for the caller.
// @Tags         timeslots
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response
// @Router       /schedules/available [get]
func (h *Handler) AvailableSchedules(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	views, err := h.service.Available(c.Request.Context(), actor)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, views)
}

// MySchedule godoc
// @Summary      List timeslots the caller has joined
// @Tags         timeslots
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response
// @Router       /schedules/me [get]
func (h *Handler) MySchedule(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	slots, err := h.service.MySchedule(c.Request.Context(), actor)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, slots)
}
