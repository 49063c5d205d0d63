package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flowgate/pkg/channels/gochannel"
	"github.com/dukex/flowgate/pkg/eventbus"
	"github.com/dukex/flowgate/pkg/events"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan *events.WorkflowLifecycle, 1)

	require.NoError(t, bus.Handle(events.WorkflowDeployedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.WorkflowLifecycle)

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, bus.Subscribe(ctx))

	workflow := &models.Workflow{ID: "wf-1", OwnerID: "o-1", RemoteWorkflowID: "R1", Status: models.StatusDeployed}
	record := models.DeploymentRecord{Action: models.DeploymentActionDeployed, Timestamp: time.Now().UTC(), Success: true}

	require.NoError(t, bus.Publish(ctx, workflow.ID, events.NewWorkflowLifecycle("evt-1", workflow, record)))

	select {
	case event := <-received:
		assert.Equal(t, "wf-1", event.WorkflowID)
		assert.Equal(t, "R1", event.RemoteWorkflowID)
		assert.True(t, event.Record.Success)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}
