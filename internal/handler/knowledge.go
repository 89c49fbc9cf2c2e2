package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/repository"
	"github.com/ebbingassist/backend/internal/service"
)

// KnowledgeHandler serves topics and knowledge entries.
type KnowledgeHandler struct {
	Knowledge *service.KnowledgeService
}

func NewKnowledgeHandler(k *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{Knowledge: k}
}

// ListTopics handles GET /api/knowledge/topics.
func (h *KnowledgeHandler) ListTopics(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	items, err := h.Knowledge.ListTopics(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return OK(c, echo.Map{"items": items, "total": len(items)}, "")
}

// CreateTopic handles POST /api/knowledge/topics.
func (h *KnowledgeHandler) CreateTopic(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var in service.TopicInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	t, err := h.Knowledge.CreateTopic(c.Request().Context(), uid, in)
	if err != nil {
		return err
	}
	return OK(c, t, "topic_created")
}

// UpdateTopic handles PUT /api/knowledge/topics/:id.
func (h *KnowledgeHandler) UpdateTopic(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.TopicInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	t, err := h.Knowledge.UpdateTopic(c.Request().Context(), uid, id, in)
	if err != nil {
		return err
	}
	return OK(c, t, "topic_updated")
}

// DeleteTopic handles DELETE /api/knowledge/topics/:id.
func (h *KnowledgeHandler) DeleteTopic(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Knowledge.DeleteTopic(c.Request().Context(), uid, id); err != nil {
		return err
	}
	return OK(c, nil, "topic_deleted")
}

// ListEntries handles GET /api/knowledge/entries with keyword, tag,
// topic_id, page and page_size query parameters.
func (h *KnowledgeHandler) ListEntries(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	f := repository.EntryFilter{
		Keyword:  c.QueryParam("keyword"),
		Tag:      c.QueryParam("tag"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", service.DefaultPageSize),
	}
	if id, err := strconv.ParseUint(c.QueryParam("topic_id"), 10, 64); err == nil && id > 0 {
		f.TopicID = &id
	}
	page, err := h.Knowledge.ListEntries(c.Request().Context(), uid, f)
	if err != nil {
		return err
	}
	return OK(c, page, "")
}

// GetEntry handles GET /api/knowledge/entries/:id.
func (h *KnowledgeHandler) GetEntry(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	e, err := h.Knowledge.GetEntry(c.Request().Context(), uid, id)
	if err != nil {
		return err
	}
	return OK(c, e, "")
}

// CreateEntry handles POST /api/knowledge/entries.
func (h *KnowledgeHandler) CreateEntry(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var in service.EntryInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	e, err := h.Knowledge.CreateEntry(c.Request().Context(), uid, in)
	if err != nil {
		return err
	}
	return OK(c, e, "entry_created")
}

// UpdateEntry handles PUT /api/knowledge/entries/:id.
func (h *KnowledgeHandler) UpdateEntry(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.EntryInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	e, err := h.Knowledge.UpdateEntry(c.Request().Context(), uid, id, in)
	if err != nil {
		return err
	}
	return OK(c, e, "entry_updated")
}

// DeleteEntry handles DELETE /api/knowledge/entries/:id.
func (h *KnowledgeHandler) DeleteEntry(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Knowledge.DeleteEntry(c.Request().Context(), uid, id); err != nil {
		return err
	}
	return OK(c, nil, "entry_deleted")
}
