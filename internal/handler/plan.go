package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/repository"
	"github.com/ebbingassist/backend/internal/service"
)

// PlanHandler serves plans and their tasks.
type PlanHandler struct {
	Plans *service.PlanService
}

func NewPlanHandler(p *service.PlanService) *PlanHandler {
	return &PlanHandler{Plans: p}
}

// ListPlans handles GET /api/plans. start_date and end_date bound the
// plan deadline.
func (h *PlanHandler) ListPlans(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	from, err := service.ParseDateParam(c.QueryParam("start_date"))
	if err != nil {
		return err
	}
	to, err := service.ParseDateParam(c.QueryParam("end_date"))
	if err != nil {
		return err
	}
	items, err := h.Plans.ListPlans(c.Request().Context(), uid, repository.PlanFilter{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Tag:      c.QueryParam("tag"),
		From:     from,
		To:       to,
	})
	if err != nil {
		return err
	}
	return OK(c, echo.Map{"items": items, "total": len(items)}, "")
}

// CreatePlan handles POST /api/plans.
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var in service.PlanInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	p, err := h.Plans.CreatePlan(c.Request().Context(), uid, in)
	if err != nil {
		return err
	}
	return OK(c, p, "plan_created")
}

// GetPlan handles GET /api/plans/:id; the plan embeds its tasks.
func (h *PlanHandler) GetPlan(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Plans.GetPlan(c.Request().Context(), uid, id)
	if err != nil {
		return err
	}
	return OK(c, p, "")
}

// UpdatePlan handles PUT /api/plans/:id.
func (h *PlanHandler) UpdatePlan(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.PlanInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	p, err := h.Plans.UpdatePlan(c.Request().Context(), uid, id, in)
	if err != nil {
		return err
	}
	return OK(c, p, "plan_updated")
}

// DeletePlan handles DELETE /api/plans/:id.
func (h *PlanHandler) DeletePlan(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Plans.DeletePlan(c.Request().Context(), uid, id); err != nil {
		return err
	}
	return OK(c, nil, "plan_deleted")
}

// CreateTask handles POST /api/plans/:id/tasks.
func (h *PlanHandler) CreateTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	planID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.TaskInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	t, err := h.Plans.CreateTask(c.Request().Context(), uid, planID, in)
	if err != nil {
		return err
	}
	return OK(c, t, "task_created")
}

// UpdateTask handles PUT /api/tasks/:id.
func (h *PlanHandler) UpdateTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.TaskInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	t, err := h.Plans.UpdateTask(c.Request().Context(), uid, id, in)
	if err != nil {
		return err
	}
	return OK(c, t, "task_updated")
}

// CompleteTask handles POST /api/tasks/:id/complete.
func (h *PlanHandler) CompleteTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.Plans.CompleteTask(c.Request().Context(), uid, id)
	if err != nil {
		return err
	}
	return OK(c, t, "task_completed")
}
