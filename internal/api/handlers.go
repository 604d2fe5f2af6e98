package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"homebase/internal/checklist"
	"homebase/internal/models"
	"homebase/internal/suggest"
	"homebase/internal/tracker"
)

// Item registry handlers

func (h *HouseholdAPI) ListItems(c *gin.Context) {
	items, err := h.Tracker.Items(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *HouseholdAPI) GetItem(c *gin.Context) {
	item, err := h.Tracker.Item(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HouseholdAPI) CreateItem(c *gin.Context) {
	var in checklist.NewItem
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.Tracker.CreateItem(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Profile handlers

func (h *HouseholdAPI) ListProfiles(c *gin.Context) {
	profiles, err := h.Tracker.Profiles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *HouseholdAPI) CreateProfile(c *gin.Context) {
	var in tracker.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.Tracker.CreateProfile(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Task handlers

func (h *HouseholdAPI) ListTasks(c *gin.Context) {
	tasks, err := h.Tracker.Tasks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *HouseholdAPI) CreateTask(c *gin.Context) {
	var in tracker.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.Tracker.CreateTask(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// DueTasks evaluates the due window at the current time, or at ?at=HH:MM today
func (h *HouseholdAPI) DueTasks(c *gin.Context) {
	now := h.Tracker.Now()
	if at := c.Query("at"); at != "" {
		tod, err := models.ParseTimeOfDay(at)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		now = tod.On(now)
	}
	due, err := h.Tracker.DueTasks(c.Request.Context(), now)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"at": now, "lookahead": h.Tracker.Lookahead().String(), "tasks": due})
}

func (h *HouseholdAPI) AddTaskItem(c *gin.Context) {
	var in checklist.NewItem
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.Tracker.AddTaskItem(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

type checkRequest struct {
	Checked *bool `json:"checked" binding:"required"`
}

func (h *HouseholdAPI) CheckItem(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.Tracker.CheckItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), *req.Checked)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *HouseholdAPI) ChecklistState(c *gin.Context) {
	st, err := h.Tracker.ChecklistStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *HouseholdAPI) AttemptComplete(c *gin.Context) {
	st, err := h.Tracker.AttemptComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *HouseholdAPI) ConfirmMisplaced(c *gin.Context) {
	res, err := h.Tracker.ConfirmMisplaced(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *HouseholdAPI) CancelCompletion(c *gin.Context) {
	st, err := h.Tracker.CancelCompletion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Verification handlers

func (h *HouseholdAPI) PendingVerifications(c *gin.Context) {
	checks, err := h.Tracker.PendingVerifications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checks)
}

func (h *HouseholdAPI) ConfirmItem(c *gin.Context) {
	item, err := h.Tracker.ConfirmItem(c.Request.Context(), c.Param("profileId"), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type locationRequest struct {
	Location string `json:"location" binding:"required"`
}

func (h *HouseholdAPI) UpdateItemLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.Tracker.UpdateItemLocation(c.Request.Context(), c.Param("profileId"), c.Param("itemId"), req.Location)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// History handler

func (h *HouseholdAPI) History(c *gin.Context) {
	filter := models.HistoryFilter{User: c.Query("user")}
	if v := c.Query("from"); v != "" {
		from, _, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, dateOnly, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if dateOnly {
			// a bare date includes the whole day
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filter.To = &to
	}

	entries, err := h.Tracker.History(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// parseDate accepts RFC3339 or a local YYYY-MM-DD date
func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q: want RFC3339 or YYYY-MM-DD", v)
	}
	return t, true, nil
}

// Suggestion handlers

type remindersRequest struct {
	ProfileID string `json:"profileId"`
}

// ProfileReminders generates reminders for one profile, or for the whole
// household when no profileId is given. An empty body is allowed.
func (h *HouseholdAPI) ProfileReminders(c *gin.Context) {
	var req remindersRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		out []suggest.Reminder
		err error
	)
	if req.ProfileID == "" {
		out, err = h.Tracker.HouseholdReminders(c.Request.Context())
	} else {
		out, err = h.Tracker.ProfileReminders(c.Request.Context(), req.ProfileID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": out})
}

func (h *HouseholdAPI) AgendaReminders(c *gin.Context) {
	out, err := h.Tracker.AgendaReminders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": out})
}

func (h *HouseholdAPI) PredictLocation(c *gin.Context) {
	var in suggest.PredictionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.Tracker.PredictLocation(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Stats returns the monitor snapshot
func (h *HouseholdAPI) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Monitor.GetMetrics())
}

// ResetStats clears the monitor counters. Prometheus series are untouched.
func (h *HouseholdAPI) ResetStats(c *gin.Context) {
	h.Monitor.Reset()
	c.JSON(http.StatusOK, h.Monitor.GetMetrics())
}
