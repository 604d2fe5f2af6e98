package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebase/internal/checklist"
	"homebase/internal/events"
	"homebase/internal/models"
	"homebase/internal/store"
	"homebase/internal/tracker"
)

func setupTestAPI(t *testing.T, clock string) *HouseholdAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := models.MustTimeOfDay(clock).On(time.Date(2024, 8, 1, 0, 0, 0, 0, time.Local))
	bus := events.NewBus(16)
	tr := tracker.New(store.NewSeededMemory(), tracker.Options{
		Events: bus,
		Now:    func() time.Time { return now },
	})
	return NewHouseholdAPI(tr, bus, nil)
}

func doJSON(t *testing.T, api *HouseholdAPI, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	api := setupTestAPI(t, "09:00")
	w := doJSON(t, api, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestItemsEndpoints(t *testing.T) {
	api := setupTestAPI(t, "09:00")

	w := doJSON(t, api, "GET", "/api/v1/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 12)

	w = doJSON(t, api, "GET", "/api/v1/items/item-4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Misplaced"`)

	w = doJSON(t, api, "GET", "/api/v1/items/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/items", checklist.NewItem{Name: "Umbrella", Owner: "Alex"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/items", checklist.NewItem{Name: "Umbrella", Owner: "Alex", Location: "Entrance"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDueTasksEndpoint(t *testing.T) {
	api := setupTestAPI(t, "08:20")

	w := doJSON(t, api, "GET", "/api/v1/tasks/due", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tasks []models.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "cl-2", resp.Tasks[0].ID)

	w = doJSON(t, api, "GET", "/api/v1/tasks/due?at=16:50", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "cl-3", resp.Tasks[0].ID)

	w = doJSON(t, api, "GET", "/api/v1/tasks/due?at=noon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChecklistEndpoints(t *testing.T) {
	api := setupTestAPI(t, "17:00")

	w := doJSON(t, api, "PUT", "/api/v1/tasks/cl-3/items/item-5/check", gin.H{"checked": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, "PUT", "/api/v1/tasks/cl-3/items/item-5/check", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/tasks/cl-3/misplaced", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/tasks/cl-3/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st checklist.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, checklist.AwaitingMisplacedConfirmation, st.State)
	assert.Equal(t, 2, st.Unchecked)

	w = doJSON(t, api, "POST", "/api/v1/tasks/cl-3/misplaced", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res checklist.MisplacedResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Marked, 2)

	w = doJSON(t, api, "GET", "/api/v1/tasks/cl-3/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"InProgress"`)

	w = doJSON(t, api, "POST", "/api/v1/tasks/cl-3/items", checklist.NewItem{Name: "Scarf", Owner: "Grandma May", Location: "Closet"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/tasks/missing/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerificationEndpoints(t *testing.T) {
	api := setupTestAPI(t, "16:00")

	w := doJSON(t, api, "GET", "/api/v1/verifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Leo"`)

	w = doJSON(t, api, "POST", "/api/v1/verifications/2/items/item-4/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"In Place"`)

	w = doJSON(t, api, "POST", "/api/v1/verifications/2/items/item-3/update", gin.H{"location": "Hallway"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"location":"Hallway"`)

	w = doJSON(t, api, "POST", "/api/v1/verifications/1/items/item-1/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, api, "GET", "/api/v1/history?user=Leo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.HistoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, "School Bag", entries[0].ItemName)
	assert.Equal(t, "Hallway", entries[0].Location)
}

func TestHistoryDateFilters(t *testing.T) {
	api := setupTestAPI(t, "09:00")

	w := doJSON(t, api, "GET", "/api/v1/history?from=2024-07-27T00:00:00Z&to=2024-07-27T23:59:59Z", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.HistoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)

	w = doJSON(t, api, "GET", "/api/v1/history?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestionsDisabled(t *testing.T) {
	api := setupTestAPI(t, "09:00")

	w := doJSON(t, api, "POST", "/api/v1/reminders", gin.H{"profileId": "1"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "suggestions disabled")

	w = doJSON(t, api, "POST", "/api/v1/reminders", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/reminders/agenda", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/predict", gin.H{"itemCharacteristics": "k", "userHabits": "habit"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	api := setupTestAPI(t, "09:00")
	api.Monitor.RecordMetric("due_tasks", 1)

	w := doJSON(t, api, "GET", "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uptime_seconds")
	assert.Contains(t, w.Body.String(), `"due_tasks":1`)

	w = doJSON(t, api, "DELETE", "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "due_tasks")
	_, ok := api.Monitor.GetMetric("due_tasks")
	assert.False(t, ok)
}

func TestEventStream(t *testing.T) {
	api := setupTestAPI(t, "09:00")
	srv := httptest.NewServer(api.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return api.Events.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	w := doJSON(t, api, "POST", "/api/v1/items", checklist.NewItem{Name: "Umbrella", Owner: "Alex", Location: "Entrance"})
	require.Equal(t, http.StatusCreated, w.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev struct {
		Kind    string      `json:"kind"`
		Payload models.Item `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, string(events.KindItemCreated), ev.Kind)
	assert.Equal(t, "Umbrella", ev.Payload.Name)
}
