package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHub_PublishFileEvent_OwnerOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	owner := NewClient(hub, nil, 1)
	other := NewClient(hub, nil, 2)
	hub.Register <- owner
	hub.Register <- other

	event := FileEvent{Type: EventFileUploaded, FileID: 42, FileName: "notes.txt"}
	hub.PublishFileEvent(1, event)

	select {
	case payload := <-owner.send:
		var got FileEvent
		require.NoError(t, json.Unmarshal(payload, &got))
		require.Equal(t, event, got)
	default:
		t.Fatal("owner client did not receive the event")
	}

	select {
	case <-other.send:
		t.Fatal("event leaked to another user's client")
	default:
	}
}

func TestHub_PublishFileEvent_NoClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Publishing to a user with no connections must not block or panic.
	hub.PublishFileEvent(99, FileEvent{Type: EventFileDeleted, FileID: 7})
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, 3)
	hub.Register <- client
	hub.Unregister <- client

	select {
	case _, ok := <-client.send:
		require.False(t, ok, "send channel must be closed on unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}

	// The departed client must no longer be a delivery target.
	hub.PublishFileEvent(3, FileEvent{Type: EventFileUploaded, FileID: 8})
}
