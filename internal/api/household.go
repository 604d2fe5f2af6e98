package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homebase/internal/events"
	"homebase/internal/monitoring"
	"homebase/internal/tracker"
)

// HouseholdAPI represents the main API handler for the household
type HouseholdAPI struct {
	Router  *gin.Engine
	Tracker *tracker.Tracker
	Events  *events.Bus
	Monitor *monitoring.Monitor
}

// NewHouseholdAPI creates a new household API instance
func NewHouseholdAPI(t *tracker.Tracker, bus *events.Bus, monitor *monitoring.Monitor) *HouseholdAPI {
	router := gin.Default()
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}

	api := &HouseholdAPI{
		Router:  router,
		Tracker: t,
		Events:  bus,
		Monitor: monitor,
	}

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (h *HouseholdAPI) setupRoutes() {
	h.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "homebase API is running"})
	})

	v1 := h.Router.Group("/api/v1")
	{
		// Item registry
		v1.GET("/items", h.ListItems)
		v1.POST("/items", h.CreateItem)
		v1.GET("/items/:id", h.GetItem)

		// Profiles
		v1.GET("/profiles", h.ListProfiles)
		v1.POST("/profiles", h.CreateProfile)

		// Tasks and checklist completion
		v1.GET("/tasks", h.ListTasks)
		v1.POST("/tasks", h.CreateTask)
		v1.GET("/tasks/due", h.DueTasks)
		v1.POST("/tasks/:id/items", h.AddTaskItem)
		v1.PUT("/tasks/:id/items/:itemId/check", h.CheckItem)
		v1.GET("/tasks/:id/state", h.ChecklistState)
		v1.POST("/tasks/:id/complete", h.AttemptComplete)
		v1.POST("/tasks/:id/misplaced", h.ConfirmMisplaced)
		v1.POST("/tasks/:id/cancel", h.CancelCompletion)

		// Return-home verification
		v1.GET("/verifications", h.PendingVerifications)
		v1.POST("/verifications/:profileId/items/:itemId/confirm", h.ConfirmItem)
		v1.POST("/verifications/:profileId/items/:itemId/update", h.UpdateItemLocation)

		// History
		v1.GET("/history", h.History)

		// Suggestions
		v1.POST("/reminders", h.ProfileReminders)
		v1.POST("/reminders/agenda", h.AgendaReminders)
		v1.POST("/predict", h.PredictLocation)

		// Monitoring and events
		v1.GET("/stats", h.Stats)
		v1.DELETE("/stats", h.ResetStats)
		v1.GET("/events/ws", h.handleWebSocket)
	}
}
