package reset

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gymsched/internal/api"
	"gymsched/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ResetSchedule godoc
// @Summary      Reset active schedule from its template
// @Description  Replaces the schedule's days with a fresh copy of its template and wipes all occupancy. Coach assignments survive.
// @Tags         reset
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Schedule ID"
// @Success      200  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Router       /schedules/active/{id}/reset [post]
func (h *Handler) ResetSchedule(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, api.Invalid("invalid_id", "invalid schedule ID"))
		return
	}

	summary, err := h.service.ResetByID(c.Request.Context(), actor, id)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, summary)
}

// ResetGymSchedules godoc
// @Summary      Reset all of a gym's active schedules
// @Tags         reset
// @Security     BearerAuth
// @Produce      json
// @Param        gymID  path      int  true  "Gym ID"
// @Success      200    {object}  api.Response
// @Router       /admin/gyms/{gymID}/schedules/reset [post]
func (h *Handler) ResetGymSchedules(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		api.Fail(c, api.Invalid("invalid_gym_id", "invalid gym ID"))
		return
	}

	summary, err := h.service.ResetByGym(c.Request.Context(), actor, gymID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, summary)
}

// ResetAllSchedules godoc
// @Summary      Reset every gym's active schedule
// @Description  The same operation the weekly cron runs. Per-item failures are reported in the summary; the batch always completes.
// @Tags         reset
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Response
// @Router       /admin/schedules/reset-all [post]
func (h *Handler) ResetAllSchedules(c *gin.Context) {
	summary, err := h.service.ResetAll(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, summary)
}
