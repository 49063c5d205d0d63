package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/flowgate/pkg/cmd"
	"github.com/dukex/flowgate/pkg/events"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineWriter hands every Write to the test goroutine.
type lineWriter chan string

func (w lineWriter) Write(p []byte) (int, error) {
	w <- string(p)

	return len(p), nil
}

func TestTailEvents_FiltersByWorkflow(t *testing.T) {
	bus, err := cmd.NewEventBus("gochannel", "", "test", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	lines := make(lineWriter, 8)
	require.NoError(t, tailEvents(ctx, bus, lines, "wf-1"))

	publish := func(workflowID string, action models.DeploymentAction) {
		workflow := &models.Workflow{ID: workflowID, OwnerID: "owner-1", RemoteWorkflowID: "R1", Status: models.StatusDeployed}
		record := models.DeploymentRecord{Action: action, Timestamp: time.Now().UTC(), Success: true}

		require.NoError(t, bus.Publish(ctx, workflowID, events.NewWorkflowLifecycle("evt-"+workflowID+string(action), workflow, record)))
	}

	publish("wf-1", models.DeploymentActionDeployed)
	publish("wf-2", models.DeploymentActionDeployed)
	publish("wf-1", models.DeploymentActionDeleted)

	seen := map[events.EventType]bool{}

	for range 2 {
		select {
		case line := <-lines:
			var event events.WorkflowLifecycle
			require.NoError(t, json.Unmarshal([]byte(line), &event))
			assert.Equal(t, "wf-1", event.WorkflowID)

			seen[event.Type] = true
		case <-time.After(2 * time.Second):
			t.Fatal("event was not printed")
		}
	}

	assert.True(t, seen[events.WorkflowDeployedEvent])
	assert.True(t, seen[events.WorkflowDeletedEvent])

	select {
	case line := <-lines:
		t.Fatalf("unexpected event printed: %s", line)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewCommand_HasSubcommands(t *testing.T) {
	command := newCommand()

	names := make([]string, 0, len(command.Commands))
	for _, sub := range command.Commands {
		names = append(names, sub.Name)
	}

	assert.ElementsMatch(t, []string{"analyze", "events"}, names)
}
