package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writer-studio/internal/logger"
)

func TestManager_BroadcastReachesOnlyItsWorkspace(t *testing.T) {
	m := NewManager(logger.Discard())
	a := m.AddClient("ws-a")
	b := m.AddClient("ws-b")

	m.Broadcast("ws-a", EventNotice, map[string]string{"message": "Saved"})

	select {
	case raw := <-a:
		var event struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, EventNotice, event.Type)
		assert.Equal(t, "Saved", event.Data["message"])
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	select {
	case <-b:
		t.Fatal("event leaked to another workspace")
	default:
	}
}

func TestManager_RemoveClient(t *testing.T) {
	m := NewManager(logger.Discard())
	ch := m.AddClient("ws")
	assert.True(t, m.HasClient("ws"))

	m.RemoveClient("ws", ch)
	assert.False(t, m.HasClient("ws"))
	_, open := <-ch
	assert.False(t, open)

	// Removing twice is harmless.
	m.RemoveClient("ws", ch)
}

func TestManager_SlowClientKeepsNewestFrames(t *testing.T) {
	m := NewManager(logger.Discard())
	ch := m.AddClient("ws")

	start := time.Now()
	for i := 0; i < 25; i++ {
		m.Broadcast("ws", EventCollection, i)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond, "broadcast never waits on a reader")

	require.Len(t, ch, clientBuffer)
	var last map[string]any
	for len(ch) > 0 {
		require.NoError(t, json.Unmarshal(<-ch, &last))
	}
	assert.Equal(t, float64(24), last["data"])
}

func TestManager_Close(t *testing.T) {
	m := NewManager(logger.Discard())
	ch := m.AddClient("ws")
	m.Close()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, m.ClientCount("ws"))
}
