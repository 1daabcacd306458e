package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"pocketapps/internal/models"
	"pocketapps/internal/rps"
	"pocketapps/internal/store"
)

const maxBodyBytes = 1 << 20

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	tasks    store.TaskStore
	contacts store.ContactStore
	game     *rps.Scoreboard
	logger   *log.Logger
	now      func() time.Time
}

// New creates a new Handlers instance. A nil logger discards output.
func New(tasks store.TaskStore, contacts store.ContactStore, game *rps.Scoreboard, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if game == nil {
		game = rps.NewScoreboard(nil)
	}
	return &Handlers{
		tasks:    tasks,
		contacts: contacts,
		game:     game,
		logger:   logger,
		now:      time.Now,
	}
}

// Routes mounts every endpoint on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Get("/search", h.SearchTasks)
			r.Post("/clear-completed", h.ClearCompletedTasks)
			r.Get("/{id}", h.GetTask)
			r.Patch("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
			r.Post("/{id}/complete", h.CompleteTask)
		})
		r.Get("/overview", h.Overview)

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.ListContacts)
			r.Post("/", h.CreateContact)
			r.Get("/{id}", h.GetContact)
			r.Put("/{id}", h.UpdateContact)
			r.Delete("/{id}", h.DeleteContact)
			r.Put("/at/{pos}", h.ReplaceContactAt)
			r.Delete("/at/{pos}", h.DeleteContactAt)
		})

		r.Post("/calc", h.Calculate)
		r.Post("/password", h.GeneratePassword)
		r.Get("/rps", h.GameScore)
		r.Post("/rps/play", h.PlayRound)
		r.Post("/rps/reset", h.ResetGame)
	})
}

// Health reports that the server is up.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseID extracts and parses an integer ID from URL parameters.
func parseID(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	return strconv.ParseInt(idStr, 10, 64)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

func (h *Handlers) respondServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal server error", "path", r.URL.Path, "err", err)

	var perr *store.PersistError
	if errors.As(err, &perr) {
		respondError(w, http.StatusInternalServerError, "failed to save changes")
		return
	}
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// respondStoreError maps a store error onto a status code.
func (h *Handlers) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		h.respondServerError(w, r, err)
	}
}
