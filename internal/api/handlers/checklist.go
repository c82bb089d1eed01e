package handlers

import (
	"net/http"
	"strings"

	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ChecklistHandler struct {
	checklistService *service.ChecklistService
	logger           *zap.Logger
}

func NewChecklistHandler(checklistService *service.ChecklistService, logger *zap.Logger) *ChecklistHandler {
	return &ChecklistHandler{checklistService: checklistService, logger: logger}
}

type AddItemRequest struct {
	Text      string  `json:"text"`
	Completed *bool   `json:"completed"`
	Priority  string  `json:"priority"`
	CreatedBy *string `json:"created_by"`
}

// UpdateItemRequest is a partial update; absent fields stay unchanged.
type UpdateItemRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
	Priority  *string `json:"priority"`
}

func (req UpdateItemRequest) patch() domain.ItemPatch {
	patch := domain.ItemPatch{Text: req.Text, Completed: req.Completed}
	if req.Priority != nil {
		p := domain.Priority(strings.ToLower(strings.TrimSpace(*req.Priority)))
		patch.Priority = &p
	}
	return patch
}

// List returns the caller's items. ?owner= may name the caller explicitly.
func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	items, err := h.checklistService.ListByOwner(r.Context(), caller, r.URL.Query().Get("owner"))
	if err != nil {
		respondError(w, h.logger, "checklist.list", err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *ChecklistHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := service.AddItemInput{
		Text:      req.Text,
		Priority:  req.Priority,
		CreatedBy: req.CreatedBy,
	}
	if req.Completed != nil {
		input.Completed = *req.Completed
	}

	item, err := h.checklistService.Add(r.Context(), caller, input)
	if err != nil {
		respondError(w, h.logger, "checklist.add", err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *ChecklistHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.checklistService.Update(r.Context(), caller, chi.URLParam(r, "id"), req.patch())
	if err != nil {
		respondError(w, h.logger, "checklist.update", err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.checklistService.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondError(w, h.logger, "checklist.delete", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted successfully"})
}

func (h *ChecklistHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	stats, err := h.checklistService.Stats(r.Context(), caller)
	if err != nil {
		respondError(w, h.logger, "checklist.stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
