package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.broadcast)
}

func TestHub_RegisterClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Send:   make(chan []byte, 256),
	}

	hub.Register(client)

	// Wait for registration to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, exists := hub.clients[client.ID]
	hub.mu.RUnlock()

	assert.True(t, exists)
}

func TestHub_UnregisterClient_ClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Send:   make(chan []byte, 256),
	}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, exists := hub.clients[client.ID]
	hub.mu.RUnlock()
	assert.False(t, exists)

	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHub_BroadcastInsert_ToOwner(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ownerID := uuid.New()
	recordID := uuid.New()

	client := &Client{
		ID:     "client-1",
		UserID: ownerID,
		Send:   make(chan []byte, 256),
	}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastInsert("tools", dto.Item{
		ID:     recordID,
		UserID: ownerID,
		Data:   json.RawMessage(`{"name":"Figma"}`),
	})

	select {
	case msg := <-client.Send:
		var event dto.ChangeEvent
		err := json.Unmarshal(msg, &event)
		require.NoError(t, err)

		assert.Equal(t, dto.ChangeInserted, event.Kind)
		assert.Equal(t, "tools", event.Collection)
		assert.Equal(t, ownerID, event.OwnerID)
		require.NotNil(t, event.Record)
		assert.Equal(t, recordID, event.Record.ID)

	case <-time.After(100 * time.Millisecond):
		t.Fatal("did not receive message")
	}
}

func TestHub_Broadcast_NotToOtherOwner(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		ID:     "client-1",
		UserID: uuid.New(),
		Send:   make(chan []byte, 256),
	}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastDelete("notes", uuid.New(), uuid.New())

	select {
	case <-client.Send:
		t.Fatal("should not have received message")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestHub_Broadcast_ToMultipleClientsOfSameOwner(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ownerID := uuid.New()

	client1 := &Client{ID: "client-1", UserID: ownerID, Send: make(chan []byte, 256)}
	client2 := &Client{ID: "client-2", UserID: ownerID, Send: make(chan []byte, 256)}
	client3 := &Client{ID: "client-3", UserID: uuid.New(), Send: make(chan []byte, 256)}

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastUpdate("videos", dto.Item{ID: uuid.New(), UserID: ownerID})

	receivedCount := 0

	select {
	case <-client1.Send:
		receivedCount++
	case <-time.After(50 * time.Millisecond):
	}

	select {
	case <-client2.Send:
		receivedCount++
	case <-time.After(50 * time.Millisecond):
	}

	select {
	case <-client3.Send:
		t.Fatal("client3 should not receive message")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 2, receivedCount)
}

func TestHub_Broadcast_FullBufferDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ownerID := uuid.New()

	client := &Client{
		ID:     "client-1",
		UserID: ownerID,
		Send:   make(chan []byte, 1),
	}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	// Fill the buffer
	client.Send <- []byte("fill")

	// This should not panic - message should be dropped
	hub.BroadcastDelete("tools", ownerID, uuid.New())
	time.Sleep(10 * time.Millisecond)

	<-client.Send

	select {
	case <-client.Send:
		t.Fatal("should not receive dropped message")
	case <-time.After(50 * time.Millisecond):
		// Expected
	}
}

func TestHub_UnregisterNonexistentClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		ID:     "nonexistent",
		UserID: uuid.New(),
		Send:   make(chan []byte, 256),
	}

	// Should not panic
	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)
}
