package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/cmd"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/log"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence/memory"
)

// A published mutation must reach the workflow engine without a separate
// dispatcher process when the API runs on the in-memory channel.
func TestInProcessDispatchRunsWorkflow(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPersistence()
	logger := log.WithModule("api-test")

	eventBus, err := cmd.NewEventBus("gochannel", logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, eventBus.Close())
	})

	registry := cmd.NewRegistry(logger, p)

	api := NewAPI(logger, p, registry, eventBus, "gochannel", time.Hour)
	require.NoError(t, api.attachInProcessDispatch(ctx))

	require.NoError(t, p.Workflows().SaveWorkflow(ctx, &models.Workflow{
		Owner:       "alice",
		Name:        "welcome new contacts",
		TriggerType: models.WorkflowTriggerContactCreated,
		Actions: []models.WorkflowAction{
			{Kind: "create_task", Config: map[string]any{"title": "Welcome {{contact_name}}"}},
		},
		IsActive: true,
	}))

	app := api.App()

	body := `{"type":"contact.created","owner":"alice","entity_id":"contact-1","data":{"contact_name":"Ada"}}`
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	assert.Eventually(t, func() bool {
		tasks, err := p.Tasks().TasksByOwner(ctx, "alice")

		return err == nil && len(tasks) == 1 && tasks[0].Title == "Welcome Ada"
	}, 5*time.Second, 10*time.Millisecond)
}
