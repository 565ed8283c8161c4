package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishWithNoClients(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.ClientCount())

	// Broadcasting into an empty hub is a no-op, not a panic.
	hub.Publish("newOrder", map[string]string{"id": "order-1"})
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_PublishUnmarshalablePayload(t *testing.T) {
	hub := NewHub()

	// A payload that cannot be serialized is dropped silently.
	hub.Publish("newOrder", make(chan int))
	assert.Equal(t, 0, hub.ClientCount())
}
