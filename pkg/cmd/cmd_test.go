package cmd

import (
	"log/slog"
	"testing"

	"github.com/dukex/flowgate/pkg/locker"
	"github.com/dukex/flowgate/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersistenceProvider(t *testing.T) {
	assert.Equal(t, "postgres", parsePersistenceProvider("postgres://u:p@localhost/db"))
	assert.Equal(t, "postgresql", parsePersistenceProvider("postgresql://localhost/db"))
	assert.Equal(t, "file", parsePersistenceProvider("file:///tmp/data"))
	assert.Equal(t, "file", parsePersistenceProvider("./data"))
	assert.Equal(t, "file", parsePersistenceProvider("mongodb://localhost"))
}

func TestNewPersistence_File(t *testing.T) {
	store, err := NewPersistence(t.Context(), slog.Default(), "file://"+t.TempDir())

	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, store)
	require.NoError(t, store.HealthCheck(t.Context()))
}

func TestNewEventBus(t *testing.T) {
	bus, err := NewEventBus("gochannel", "", "test", slog.Default())
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	_, err = NewEventBus("kafka", "", "test", slog.Default())
	require.Error(t, err)

	_, err = NewEventBus("rabbitmq", "", "test", slog.Default())
	require.Error(t, err)
}

func TestNewLocker_Memory(t *testing.T) {
	lock, closeLocker, err := NewLocker(t.Context(), slog.Default(), "")

	require.NoError(t, err)
	assert.IsType(t, &locker.Memory{}, lock)
	require.NoError(t, closeLocker())
}
