package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"pocketapps/internal/models"
)

// DueTask is a pending task with a due date inside the overview window.
type DueTask struct {
	models.Task
	Overdue bool `json:"overdue"`
}

// OverviewData is the dashboard summary of the to-do list.
type OverviewData struct {
	Pending   int       `json:"pending"`
	Completed int       `json:"completed"`
	Overdue   int       `json:"overdue"`
	Days      int       `json:"days"`
	Upcoming  []DueTask `json:"upcoming"`
}

// Overview summarises the task list and lists tasks due within ?days= (7, 14 or 30).
func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	upcomingDays := 30
	if v := r.URL.Query().Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid days")
			return
		}
		if days != 7 && days != 14 && days != 30 {
			respondError(w, http.StatusBadRequest, "days must be 7, 14, or 30")
			return
		}
		upcomingDays = days
	}

	tasks, err := h.tasks.ListTasks(ctx, true)
	if err != nil {
		h.respondServerError(w, r, err)
		return
	}

	now := h.now()
	today := now.Format(models.DateLayout)
	upcomingEndDate := now.AddDate(0, 0, upcomingDays).Format(models.DateLayout)

	data := OverviewData{Days: upcomingDays, Upcoming: make([]DueTask, 0)}
	for _, task := range tasks {
		if task.Completed {
			data.Completed++
			continue
		}
		data.Pending++

		if task.DueDate == nil || *task.DueDate > upcomingEndDate {
			continue
		}
		overdue := *task.DueDate < today
		if overdue {
			data.Overdue++
		}
		data.Upcoming = append(data.Upcoming, DueTask{Task: task, Overdue: overdue})
	}

	sort.SliceStable(data.Upcoming, func(i, j int) bool {
		left, right := data.Upcoming[i], data.Upcoming[j]
		if left.Overdue != right.Overdue {
			return left.Overdue
		}
		if *left.DueDate != *right.DueDate {
			return *left.DueDate < *right.DueDate
		}
		return left.PriorityOrder() < right.PriorityOrder()
	})

	respondJSON(w, http.StatusOK, data)
}
