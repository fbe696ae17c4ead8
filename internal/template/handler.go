package template

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

// resolveGymID picks the gym a template operation targets: the actor's own
// gym, or an explicit ?gym_id for platform admins.
func resolveGymID(c *gin.Context, actor policy.Actor) (int, error) {
	if gymIDStr := c.Query("gym_id"); gymIDStr != "" {
		gymID, err := strconv.Atoi(gymIDStr)
		if err != nil || gymID < 1 {
			return 0, api.Invalid("invalid_gym_id", "gym_id must be a positive integer")
		}
		return gymID, nil
	}

	if actor.Role == policy.RoleAdmin {
		return 0, api.Invalid("gym_id_required", "admins must specify gym_id")
	}

	return actor.GymID, nil
}

// CreateTemplate godoc
// @Summary      Create schedule template
// @Description  Creates a reusable weekly schedule blueprint for a gym.
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        gym_id   query     int                    false  "Target gym (admins only)"
// @Param        request  body      CreateTemplateRequest  true   "Template definition"
// @Success      201      {object}  api.Response
// @Failure      400      {object}  api.Response
// @Failure      403      {object}  api.Response
// @Router       /schedules/templates [post]
func (h *Handler) CreateTemplate(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User not authenticated"})
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.Invalid("invalid_body", err.Error()))
		return
	}

	if fieldErrors := api.ValidateStruct(req); fieldErrors != nil {
		api.Fail(c, api.Invalid("validation_failed", fieldErrors[0].Message))
		return
	}

	gymID, err := resolveGymID(c, actor)
	if err != nil {
		api.Fail(c, err)
		return
	}

	tmpl, err := h.service.Create(c.Request.Context(), actor, gymID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.Created(c, tmpl)
}

// ListTemplates godoc
// @Summary      List schedule templates
// @Description  Returns the gym's templates, paginated.
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int  false  "Page number"
// @Param        limit   query     int  false  "Page size"
// @Param        gym_id  query     int  false  "Target gym (admins only)"
// @Success      200     {object}  api.Response
// @Failure      403     {object}  api.Response
// @Router       /schedules/templates [get]
func (h *Handler) ListTemplates(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User not authenticated"})
		return
	}

	gymID, err := resolveGymID(c, actor)
	if err != nil {
		api.Fail(c, err)
		return
	}

	page, limit := api.PageParams(c)

	templates, total, err := h.service.List(c.Request.Context(), actor, gymID, page, limit)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.List(c, templates, api.NewPagination(page, limit, total))
}

// GetTemplate godoc
// @Summary      Get schedule template
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Template ID"
// @Success      200  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Router       /schedules/templates/{id} [get]
func (h *Handler) GetTemplate(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, api.Invalid("invalid_id", "invalid template ID"))
		return
	}

	tmpl, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, tmpl)
}

// UpdateTemplate godoc
// @Summary      Update schedule template
// @Description  Partial update; days, when supplied, replace all existing days.
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "Template ID"
// @Param        request  body      UpdateTemplateRequest  true  "Fields to update"
// @Success      200      {object}  api.Response
// @Failure      400      {object}  api.Response
// @Failure      404      {object}  api.Response
// @Router       /schedules/templates/{id} [put]
func (h *Handler) UpdateTemplate(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, api.Invalid("invalid_id", "invalid template ID"))
		return
	}

	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.Invalid("invalid_body", err.Error()))
		return
	}

	tmpl, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, tmpl)
}

// DeleteTemplate godoc
// @Summary      Delete schedule template
// @Description  Deletes the template. Active schedules copied from it survive.
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Template ID"
// @Success      200  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Router       /schedules/templates/{id} [delete]
func (h *Handler) DeleteTemplate(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.Fail(c, api.Invalid("invalid_id", "invalid template ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		api.Fail(c, err)
		return
	}

	api.Message(c, "Template deleted")
}
