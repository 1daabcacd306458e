package handlers

import (
	"net/http"
	"strconv"

	"pocketapps/internal/models"
)

// ListTasks returns the task list. Completed tasks are included only with ?completed=true.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	showCompleted := false
	if v := r.URL.Query().Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "completed must be true or false")
			return
		}
		showCompleted = b
	}

	tasks, err := h.tasks.ListTasks(ctx, showCompleted)
	if err != nil {
		h.respondServerError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// SearchTasks returns the tasks whose description contains ?q=.
func (h *Handlers) SearchTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.SearchTasks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondServerError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask adds a task.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.tasks.AddTask(r.Context(), in)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// GetTask returns one task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update to a task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var patch models.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	found, err := h.tasks.UpdateTask(ctx, id, patch)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	h.respondTask(w, r, id)
}

// CompleteTask marks a task as done.
func (h *Handlers) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	found, err := h.tasks.CompleteTask(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	h.respondTask(w, r, id)
}

// DeleteTask deletes a task. Remaining ids may change.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	found, err := h.tasks.DeleteTask(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCompletedTasks removes every completed task.
func (h *Handlers) ClearCompletedTasks(w http.ResponseWriter, r *http.Request) {
	removed, err := h.tasks.ClearTasks(r.Context(), models.TaskCompleted)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *Handlers) respondTask(w http.ResponseWriter, r *http.Request, id int64) {
	task, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}
