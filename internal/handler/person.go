package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/dutyboard/internal/model"
	"github.com/dukerupert/dutyboard/internal/store"
	"github.com/dukerupert/dutyboard/internal/websocket"
)

type PersonHandler struct {
	store  *store.PersonStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPersonHandler(s *store.PersonStore, hub *websocket.Hub, logger *slog.Logger) *PersonHandler {
	return &PersonHandler{store: s, hub: hub, logger: logger}
}

func (h *PersonHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

type personRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	person, err := h.store.Create(req.Name)
	if err != nil {
		h.logger.Error("create person", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create person"})
		return
	}

	h.broadcast(websocket.Event{Type: websocket.EventRosterChanged, Data: map[string]any{"id": person.ID, "action": "created"}})
	writeJSON(w, http.StatusCreated, person)
}

func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	people, err := h.store.List()
	if err != nil {
		h.logger.Error("list people", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list people"})
		return
	}
	if people == nil {
		people = []model.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get person", "person_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get person"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "person not found"})
		return
	}

	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	person, err := h.store.Update(id, req.Name, req.SortOrder)
	if err != nil {
		h.logger.Error("update person", "person_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update person"})
		return
	}

	h.broadcast(websocket.Event{Type: websocket.EventRosterChanged, Data: map[string]any{"id": id, "action": "updated"}})
	writeJSON(w, http.StatusOK, person)
}

func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.logger.Error("delete person", "person_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete person"})
		return
	}

	h.broadcast(websocket.Event{Type: websocket.EventRosterChanged, Data: map[string]any{"id": id, "action": "deleted"}})
	w.WriteHeader(http.StatusNoContent)
}
