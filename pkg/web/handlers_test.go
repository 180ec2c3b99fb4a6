package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/actions/createtask"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/automation"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/channels/gochannel"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/eventbus"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence/memory"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/registry"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/scheduling"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/workflow"
)

type testEnv struct {
	app *fiber.App
	p   *memory.Persistence
}

func setupTestApp(t *testing.T) testEnv {
	t.Helper()

	p := memory.NewPersistence()
	logger := slog.Default()

	reg := registry.NewRegistry(logger)
	reg.RegisterAction(createtask.NewActionFactory(p))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, logger)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	handlers := NewAPIHandlers(
		p,
		automation.NewScanner(p, logger),
		workflow.NewEngine(p, reg, logger),
		scheduling.NewGenerator(p.Scheduling(), logger),
		scheduling.NewBooker(p.Scheduling(), logger),
		bus,
		reg,
	)

	app := fiber.New()
	app.Post("/automation/scan", handlers.TriggerScan)
	app.Post("/events", handlers.PublishEvent)
	app.Get("/rules", handlers.GetRules)
	app.Post("/rules", handlers.CreateRule)
	app.Get("/rules/:id", handlers.GetRule)
	app.Put("/rules/:id", handlers.UpdateRule)
	app.Delete("/rules/:id", handlers.DeleteRule)
	app.Get("/workflows", handlers.GetWorkflows)
	app.Post("/workflows", handlers.CreateWorkflow)
	app.Get("/workflows/:id", handlers.GetWorkflow)
	app.Post("/workflows/:id/execute", handlers.ExecuteWorkflow)
	app.Get("/workflows/:id/executions", handlers.GetWorkflowExecutions)
	app.Get("/notifications", handlers.GetNotifications)
	app.Post("/notifications/:id/read", handlers.MarkNotificationRead)
	app.Get("/links/:slug/slots", handlers.GetSlots)
	app.Post("/links/:slug/bookings", handlers.BookSlot)
	app.Get("/health", handlers.HealthCheck)

	return testEnv{app: app, p: p}
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, payload
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestApp(t)

	resp, body := doJSON(t, env.app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}

func TestRuleLifecycle(t *testing.T) {
	env := setupTestApp(t)

	create := `{
		"owner": "alice",
		"name": "meeting follow-up",
		"trigger_type": "meeting_scheduled",
		"trigger_config": {"days_delay": 3},
		"action_type": "create_task",
		"action_config": {"title_template": "Follow up with {{attendee_name}}"}
	}`

	resp, body := doJSON(t, env.app, http.MethodPost, "/rules", create)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var rule models.AutomationRule
	require.NoError(t, json.Unmarshal(body, &rule))
	assert.NotEmpty(t, rule.ID)
	assert.True(t, rule.IsActive)

	resp, _ = doJSON(t, env.app, http.MethodGet, "/rules/"+rule.ID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, env.app, http.MethodGet, "/rules?owner=alice", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var rules []models.AutomationRule
	require.NoError(t, json.Unmarshal(body, &rules))
	assert.Len(t, rules, 1)

	resp, _ = doJSON(t, env.app, http.MethodDelete, "/rules/"+rule.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, env.app, http.MethodGet, "/rules/"+rule.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateRuleRejectsBadConfig(t *testing.T) {
	env := setupTestApp(t)

	// days_delay missing for a meeting_scheduled trigger.
	create := `{
		"owner": "alice",
		"name": "broken rule",
		"trigger_type": "meeting_scheduled",
		"action_type": "create_task",
		"action_config": {"title_template": "Follow up"}
	}`

	resp, body := doJSON(t, env.app, http.MethodPost, "/rules", create)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "days_delay")
}

func TestScanEndpoint(t *testing.T) {
	env := setupTestApp(t)

	resp, body := doJSON(t, env.app, http.MethodPost, "/automation/scan", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "results")
}

func TestPublishEventEndpoint(t *testing.T) {
	env := setupTestApp(t)

	resp, body := doJSON(t, env.app, http.MethodPost, "/events",
		`{"type":"contact.created","owner":"alice","entity_id":"c-1","data":{"contact_name":"Ada"}}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))

	var mutation map[string]any
	require.NoError(t, json.Unmarshal(body, &mutation))
	assert.NotEmpty(t, mutation["id"])

	resp, _ = doJSON(t, env.app, http.MethodPost, "/events",
		`{"type":"contact.archived","owner":"alice","entity_id":"c-1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkflowExecuteEndpoint(t *testing.T) {
	env := setupTestApp(t)

	create := `{
		"owner": "alice",
		"name": "welcome workflow",
		"trigger_type": "manual",
		"actions": [{"kind": "create_task", "config": {"title": "Welcome {{contact_name}}"}}]
	}`

	resp, body := doJSON(t, env.app, http.MethodPost, "/workflows", create)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var wf models.Workflow
	require.NoError(t, json.Unmarshal(body, &wf))

	resp, body = doJSON(t, env.app, http.MethodPost, "/workflows/"+wf.ID+"/execute",
		`{"trigger_data":{"contact_name":"Ada"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var execution models.WorkflowExecution
	require.NoError(t, json.Unmarshal(body, &execution))
	assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)

	tasks, err := env.p.Tasks().TasksByOwner(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Welcome Ada", tasks[0].Title)

	resp, body = doJSON(t, env.app, http.MethodGet, "/workflows/"+wf.ID+"/executions", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var executions []models.WorkflowExecution
	require.NoError(t, json.Unmarshal(body, &executions))
	assert.Len(t, executions, 1)
}

func TestSlotsAndBookingEndpoints(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()

	link := &models.SchedulingLink{
		Owner:           "alice",
		Slug:            "alice-intro",
		DurationMinutes: 30,
		IsActive:        true,
	}
	require.NoError(t, env.p.Scheduling().SaveLink(ctx, link))

	// A window on every weekday so the test is date-agnostic.
	for weekday := 0; weekday < 7; weekday++ {
		require.NoError(t, env.p.Scheduling().SaveAvailabilitySlot(ctx, &models.AvailabilitySlot{
			Owner:     "alice",
			DayOfWeek: weekday,
			StartTime: "09:00",
			EndTime:   "10:00",
			IsActive:  true,
		}))
	}

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")

	resp, body := doJSON(t, env.app, http.MethodGet, "/links/alice-intro/slots?date="+tomorrow, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var slotsResp struct {
		Slots []models.TimeSlot `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(body, &slotsResp))
	require.Len(t, slotsResp.Slots, 2)

	start := slotsResp.Slots[0].Start.Format(time.RFC3339)
	booking := `{"start":"` + start + `","name":"Ada","email":"ada@example.com"}`

	resp, body = doJSON(t, env.app, http.MethodPost, "/links/alice-intro/bookings", booking)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	// Booking the same slot again conflicts.
	resp, body = doJSON(t, env.app, http.MethodPost, "/links/alice-intro/bookings", booking)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "slot already taken")

	// Unknown slug is 404.
	resp, _ = doJSON(t, env.app, http.MethodGet, "/links/nobody/slots?date="+tomorrow, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Missing date is 400.
	resp, _ = doJSON(t, env.app, http.MethodGet, "/links/alice-intro/slots", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotificationsEndpoints(t *testing.T) {
	env := setupTestApp(t)
	ctx := context.Background()

	notification := &models.Notification{Owner: "alice", Title: "Heads up"}
	require.NoError(t, env.p.Notifications().CreateNotification(ctx, notification))

	resp, body := doJSON(t, env.app, http.MethodGet, "/notifications?owner=alice", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []models.Notification
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)

	resp, _ = doJSON(t, env.app, http.MethodPost, "/notifications/"+notification.ID+"/read", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, env.app, http.MethodGet, "/notifications", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
