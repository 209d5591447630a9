package telegram

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const updatesJSON = `[
  {"update_id": 10, "message": {
    "message_id": 1, "date": 1715000000, "text": "/list",
    "message_thread_id": 5235, "is_topic_message": true,
    "chat": {"id": -1002162367846, "type": "supergroup"},
    "from": {"id": 7, "is_bot": false, "first_name": "Alice", "username": "alice"}
  }},
  {"update_id": 11, "message": {
    "message_id": 2, "date": 1715000001, "text": "hi",
    "chat": {"id": 99, "type": "private"},
    "from": {"id": 8, "is_bot": false, "first_name": "Bob"}
  }}
]`

func TestPoller_DecodesTopicFields(t *testing.T) {
	api := &fakeRequester{result: json.RawMessage(updatesJSON)}
	p := NewPoller(api, zap.NewNop())

	updates, err := p.fetch(0)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	first := updates[0].Message
	require.NotNil(t, first)
	assert.Equal(t, 5235, first.MessageThreadID)
	assert.True(t, first.IsTopicMessage)
	assert.Equal(t, "/list", first.Text)
	assert.Equal(t, "alice", first.From.UserName)
	assert.Equal(t, int64(-1002162367846), first.Chat.ID)

	assert.Zero(t, updates[1].Message.MessageThreadID)

	call := api.calls[0]
	assert.Equal(t, "getUpdates", call.endpoint)
	assert.Equal(t, "30", call.params["timeout"])
	assert.Equal(t, `["message"]`, call.params["allowed_updates"])
}

func TestPoller_RunAdvancesOffset(t *testing.T) {
	api := &fakeRequester{result: json.RawMessage(updatesJSON)}
	p := NewPoller(api, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Update)
	done := make(chan struct{})
	go func() {
		p.Run(ctx, out)
		close(done)
	}()

	got := []int{(<-out).UpdateID, (<-out).UpdateID}
	assert.Equal(t, []int{10, 11}, got)

	// The next poll must ask for updates after the last one seen.
	<-out
	assert.Equal(t, "12", api.calls[1].params["offset"])

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
