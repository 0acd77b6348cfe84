package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/verso/pkg/host"
	"github.com/papercomputeco/verso/pkg/notebook"
	"github.com/papercomputeco/verso/pkg/panel"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NotebookResponse lists the notebook, newest first.
type NotebookResponse struct {
	Items []notebook.EvidenceItem `json:"items"`
	Dirty bool                    `json:"dirty"`
}

// AppendRequest is the body of POST /notebook.
type AppendRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

// ItemResponse reports a saved item. Persisted is false when the item is
// held in memory but the durable write failed.
type ItemResponse struct {
	Item      notebook.EvidenceItem `json:"item"`
	Persisted bool                  `json:"persisted"`
	Error     string                `json:"error,omitempty"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse carries the assistant's answer.
type AskResponse struct {
	Answer string `json:"answer"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	return c.JSON(s.panel.Snapshot())
}

func (s *Server) handleListNotebook(c *fiber.Ctx) error {
	store := s.panel.Store()
	return c.JSON(NotebookResponse{
		Items: store.Items(),
		Dirty: store.Dirty(),
	})
}

func (s *Server) handleGetNotebookItem(c *fiber.Ctx) error {
	item, ok := s.panel.Store().Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "item not found"})
	}
	return c.JSON(item)
}

func (s *Server) handleAppendNotebook(c *fiber.Ctx) error {
	var req AppendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "content is required"})
	}

	itemType := notebook.TypeQuote
	if req.Type != "" {
		t, err := notebook.ParseItemType(req.Type)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		itemType = t
	}

	item, err := s.panel.Save(c.Context(), req.Content, itemType)
	return s.respondSaved(c, item, err)
}

func (s *Server) handleSaveSelection(c *fiber.Ctx) error {
	item, err := s.panel.SaveSelection(c.Context())
	return s.respondSaved(c, item, err)
}

func (s *Server) handleSaveInsight(c *fiber.Ctx) error {
	item, err := s.panel.SaveInsight(c.Context())
	return s.respondSaved(c, item, err)
}

// respondSaved answers 201 for a persisted item and 202 for an item
// whose durable write is still pending.
func (s *Server) respondSaved(c *fiber.Ctx, item notebook.EvidenceItem, err error) error {
	var perr *notebook.PersistError
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(ItemResponse{Item: item, Persisted: true})
	case errors.As(err, &perr):
		s.logger.Warn("notebook write pending", "item_id", item.ID, "error", err)
		return c.Status(fiber.StatusAccepted).JSON(ItemResponse{Item: item, Error: err.Error()})
	default:
		return s.respondError(c, err)
	}
}

func (s *Server) handleDeleteNotebookItem(c *fiber.Ctx) error {
	err := s.panel.Delete(c.Context(), c.Params("id"))

	var perr *notebook.PersistError
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.As(err, &perr):
		s.logger.Warn("notebook write pending", "error", err)
		return c.Status(fiber.StatusAccepted).JSON(ErrorResponse{Error: err.Error()})
	default:
		return s.respondError(c, err)
	}
}

func (s *Server) handleSyncNotebook(c *fiber.Ctx) error {
	store := s.panel.Store()
	if err := store.Sync(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(NotebookResponse{Items: store.Items(), Dirty: store.Dirty()})
}

func (s *Server) handleGetPage(c *fiber.Ctx) error {
	info, ok := s.panel.PageInfo()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: panel.ErrNoPage.Error()})
	}
	return c.JSON(info)
}

func (s *Server) handleRefreshPage(c *fiber.Ctx) error {
	s.panel.Refresh(c.Context())
	return c.JSON(s.panel.Snapshot())
}

func (s *Server) handleGetBrief(c *fiber.Ctx) error {
	b := s.panel.Brief()
	if b == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: panel.ErrNoBrief.Error()})
	}
	return c.JSON(b)
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
	}

	answer, err := s.panel.Ask(c.Context(), req.Question)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(AskResponse{Answer: answer})
}

func (s *Server) handleReadingMode(c *fiber.Ctx) error {
	mode, err := s.panel.EnableReadingMode(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mode)
}

func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, notebook.ErrInvalidType):
		status = fiber.StatusBadRequest
	case errors.Is(err, panel.ErrNoPage),
		errors.Is(err, panel.ErrNoBrief),
		errors.Is(err, panel.ErrNoSelection),
		errors.Is(err, host.ErrNoArticle):
		status = fiber.StatusConflict
	case errors.Is(err, panel.ErrNoAssistant):
		status = fiber.StatusNotImplemented
	default:
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
