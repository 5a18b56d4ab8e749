package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/dutyboard/internal/schedule"
	"github.com/dukerupert/dutyboard/internal/store"
	"github.com/dukerupert/dutyboard/internal/websocket"
)

type ScheduleHandler struct {
	svc    *schedule.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewScheduleHandler(svc *schedule.Service, hub *websocket.Hub, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, hub: hub, logger: logger}
}

func (h *ScheduleHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

type generateRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Year < 1 || req.Month < 1 || req.Month > 12 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid year or month"})
		return
	}

	result, err := h.svc.Generate(req.Year, time.Month(req.Month))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateAssignment) {
			// Lost a race against a concurrent generation; the caller
			// can simply retry once the winner finishes.
			writeJSON(w, http.StatusConflict, map[string]string{"error": "concurrent generation in progress, retry"})
			return
		}
		h.logger.Error("generate schedule", "year", req.Year, "month", req.Month, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate schedule"})
		return
	}

	h.broadcast(websocket.Event{
		Type: websocket.EventScheduleGenerated,
		Data: map[string]any{
			"year":    req.Year,
			"month":   req.Month,
			"created": result.Created,
			"gaps":    result.Gaps,
		},
	})

	writeJSON(w, http.StatusOK, result)
}

func (h *ScheduleHandler) Range(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end before start"})
		return
	}

	days, err := h.svc.ScheduleForRange(start, end)
	if err != nil {
		h.logger.Error("schedule range", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load schedule"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (h *ScheduleHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	days, err := h.svc.MonthSchedule(year, month)
	if err != nil {
		h.logger.Error("month schedule", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load schedule"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

// PersonDuties serves both the single-day and week views: ?date= for one
// day, ?week_start= for a 7-day window.
func (h *ScheduleHandler) PersonDuties(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if r.URL.Query().Get("week_start") != "" {
		weekStart, err := parseDateParam(r, "week_start")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		days, err := h.svc.DutiesForPersonWeek(id, weekStart)
		if err != nil {
			h.logger.Error("person week duties", "person_id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load duties"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"days": days})
		return
	}

	date, err := parseDateParam(r, "date")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	duties, err := h.svc.DutiesForPersonDay(id, date)
	if err != nil {
		h.logger.Error("person day duties", "person_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load duties"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"duties": duties})
}

type completeRequest struct {
	PersonID int64 `json:"person_id"`
}

func (h *ScheduleHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ok, err := h.svc.MarkCompleted(id, req.PersonID)
	if err != nil {
		h.logger.Error("mark completed", "assignment_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to mark completed"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "assignment not found"})
		return
	}

	h.broadcast(websocket.Event{
		Type: websocket.EventAssignmentCompleted,
		Data: map[string]any{"id": id, "by": req.PersonID},
	})

	writeJSON(w, http.StatusOK, map[string]bool{"completed": true})
}

func (h *ScheduleHandler) Wipe(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	deleted, err := h.svc.WipeMonth(year, month)
	if err != nil {
		h.logger.Error("wipe month", "year", year, "month", int(month), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to wipe schedule"})
		return
	}

	h.broadcast(websocket.Event{
		Type: websocket.EventScheduleWiped,
		Data: map[string]any{"year": year, "month": int(month), "deleted": deleted},
	})

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
