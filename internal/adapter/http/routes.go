package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Generation
		r.Post("/projects/{id}/generate", h.GenerateTasks)

		// Tasks (nested under projects)
		r.Get("/projects/{id}/tasks", handleListByParam("id", h.Lifecycle.List, "project not found"))
		r.Post("/projects/{id}/tasks", h.CreateTask)

		// Tasks (direct access)
		r.Get("/tasks/{id}", handleGet(h.Lifecycle.Get, "task not found"))
		r.Post("/tasks/{id}/status", h.SetTaskStatus)
		r.Post("/tasks/{id}/complete", h.CompleteTask)
		r.Post("/tasks/{id}/flag", h.FlagTask)
		r.Post("/tasks/{id}/block", h.BlockTask)
		r.Post("/tasks/{id}/dependency", h.SetTaskDependency)
		r.Post("/tasks/{id}/photos", h.AddTaskPhoto)
		r.Post("/tasks/{id}/notes", h.AddTaskNote)
		r.Get("/tasks/{id}/events", h.TaskHistory)

		// Derived views
		r.Get("/projects/{id}/views/rooms", h.RoomGroups)
		r.Get("/projects/{id}/views/dependencies", h.DependencyGroups)
		r.Get("/projects/{id}/views/stats", h.ProjectStats)
		r.Get("/projects/{id}/views/rollups", h.BOQRollups)

		// Activity feed
		r.Get("/projects/{id}/activity", h.ProjectFeed)

		// BOQ lines
		r.Get("/projects/{id}/boq", handleListByParam("id", h.BOQ.ListItems, "project not found"))
		r.Post("/projects/{id}/boq", handleCreateUnder(h.BOQ.CreateItem))
		r.Get("/boq/{id}", handleGet(h.BOQ.GetItem, "boq item not found"))
		r.Post("/boq/{id}/units", h.EnsureUnits)
		r.Post("/boq/{id}/units/{unitID}/stage", h.SetUnitStage)
		r.Post("/boq/{id}/units/{unitID}/allocate", h.AllocateUnit)

		// Rooms
		r.Get("/projects/{id}/rooms", handleListByParam("id", h.BOQ.ListRooms, "project not found"))
		r.Post("/projects/{id}/rooms", h.CreateRoom)
	})
}
