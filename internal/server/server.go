package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dutyboard/internal/handler"
	"github.com/dukerupert/dutyboard/internal/middleware"
	"github.com/dukerupert/dutyboard/internal/schedule"
	"github.com/dukerupert/dutyboard/internal/store"
	ws "github.com/dukerupert/dutyboard/internal/websocket"
)

type Server struct {
	db        *sql.DB
	hub       *ws.Hub
	scheduleH *handler.ScheduleHandler
	taskH     *handler.TaskHandler
	personH   *handler.PersonHandler
	logger    *slog.Logger
}

func New(db *sql.DB, cfg schedule.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	taskStore := store.NewTaskStore(db)
	personStore := store.NewPersonStore(db)
	assignmentStore := store.NewAssignmentStore(db)

	svc := schedule.NewService(taskStore, personStore, assignmentStore, cfg, logger.With("component", "schedule"))

	return &Server{
		db:        db,
		hub:       hub,
		scheduleH: handler.NewScheduleHandler(svc, hub, logger.With("component", "schedule_handler")),
		taskH:     handler.NewTaskHandler(taskStore, hub, logger.With("component", "task_handler")),
		personH:   handler.NewPersonHandler(personStore, hub, logger.With("component", "person_handler")),
		logger:    logger,
	}
}

// Hub returns the websocket hub, used by tests and shutdown hooks.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))

	// Schedule
	mux.HandleFunc("POST /api/schedule/generate", s.scheduleH.Generate)
	mux.HandleFunc("GET /api/schedule", s.scheduleH.Range)
	mux.HandleFunc("GET /api/schedule/month", s.scheduleH.Month)
	mux.HandleFunc("DELETE /api/schedule/month", s.scheduleH.Wipe)
	mux.HandleFunc("POST /api/assignments/{id}/complete", s.scheduleH.Complete)

	// Task catalog
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	// Roster
	mux.HandleFunc("GET /api/people", s.personH.List)
	mux.HandleFunc("POST /api/people", s.personH.Create)
	mux.HandleFunc("PUT /api/people/{id}", s.personH.Update)
	mux.HandleFunc("DELETE /api/people/{id}", s.personH.Delete)
	mux.HandleFunc("GET /api/people/{id}/duties", s.scheduleH.PersonDuties)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
