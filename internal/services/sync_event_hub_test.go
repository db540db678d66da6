package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncEventHub_StopUnblocksClients(t *testing.T) {
	t.Run("register after stop returns and closes the send channel", func(t *testing.T) {
		hub := NewSyncEventHub()
		go hub.Run()
		hub.Stop()

		client := &EventClient{ID: "c1", Send: make(chan []byte, 1)}

		done := make(chan struct{})
		go func() {
			hub.Register(client)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Register blocked after hub stop")
		}

		_, open := <-client.Send
		assert.False(t, open)
	})

	t.Run("unregister after stop returns", func(t *testing.T) {
		hub := NewSyncEventHub()
		go hub.Run()

		client := &EventClient{ID: "c1", Send: make(chan []byte, 1)}
		hub.Register(client)
		hub.Stop()

		done := make(chan struct{})
		go func() {
			hub.Unregister(client)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Unregister blocked after hub stop")
		}
	})
}
