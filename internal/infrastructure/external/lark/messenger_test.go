package lark

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

type sentMessage struct {
	receiveIDType string
	receiveID     string
	msgType       string
	content       string
}

type fakeAPI struct {
	sent      []sentMessage
	reactions map[string]string
	nameCalls int

	CreateMessageFunc func(receiveIDType, receiveID string) error
	GetUserNameFunc   func(openID string) (string, error)
}

func (f *fakeAPI) CreateMessage(_ context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	if f.CreateMessageFunc != nil {
		if err := f.CreateMessageFunc(receiveIDType, receiveID); err != nil {
			return "", err
		}
	}
	f.sent = append(f.sent, sentMessage{receiveIDType, receiveID, msgType, content})
	return "om_sent", nil
}

func (f *fakeAPI) CreateReaction(_ context.Context, messageID, emojiType string) error {
	if f.reactions == nil {
		f.reactions = make(map[string]string)
	}
	f.reactions[messageID] = emojiType
	return nil
}

func (f *fakeAPI) GetUserName(_ context.Context, openID string) (string, error) {
	f.nameCalls++
	if f.GetUserNameFunc != nil {
		return f.GetUserNameFunc(openID)
	}
	return "Alice", nil
}

func newTestMessenger(api *fakeAPI) *Messenger {
	return newMessenger(api, Config{ChannelID: "oc_purchase"}, zap.NewNop())
}

func TestSendDirectMessage(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(api)

	require.NoError(t, m.SendDirectMessage(context.Background(), "ou_alice", "ID: 1 approved"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "open_id", api.sent[0].receiveIDType)
	assert.Equal(t, "ou_alice", api.sent[0].receiveID)
	assert.Equal(t, "text", api.sent[0].msgType)
	assert.JSONEq(t, `{"text":"ID: 1 approved"}`, api.sent[0].content)

	assert.Error(t, m.SendDirectMessage(context.Background(), "", "hi"))
}

func TestPostChannelMessage_PlainText(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(api)

	require.NoError(t, m.PostChannelMessage(context.Background(), "hello", nil))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "chat_id", api.sent[0].receiveIDType)
	assert.Equal(t, "oc_purchase", api.sent[0].receiveID)
	assert.Equal(t, "text", api.sent[0].msgType)
}

func TestPostChannelMessage_Card(t *testing.T) {
	tests := []struct {
		color    port.Color
		template string
	}{
		{port.ColorGood, "green"},
		{port.ColorDanger, "red"},
	}

	for _, tt := range tests {
		t.Run(string(tt.color), func(t *testing.T) {
			api := &fakeAPI{}
			m := newTestMessenger(api)

			att := &port.Attachment{Color: tt.color, Text: "The purchase request above was approved"}
			require.NoError(t, m.PostChannelMessage(context.Background(), "Alice: USB cable x2", att))
			require.Len(t, api.sent, 1)
			assert.Equal(t, "interactive", api.sent[0].msgType)

			var c card
			require.NoError(t, json.Unmarshal([]byte(api.sent[0].content), &c))
			assert.Equal(t, tt.template, c.Header.Template)
			assert.Equal(t, att.Text, c.Header.Title.Content)
			require.Len(t, c.Elements, 1)
			assert.Equal(t, "Alice: USB cable x2", c.Elements[0].Text.Content)
		})
	}
}

func TestPostChannelMessage_Error(t *testing.T) {
	api := &fakeAPI{CreateMessageFunc: func(string, string) error {
		return transportError("send message", errors.New("connection reset"))
	}}
	m := newTestMessenger(api)

	err := m.PostChannelMessage(context.Background(), "hello", nil)
	assert.ErrorIs(t, err, entity.ErrGatewayUnavailable)
}

func TestAddReaction(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(api)

	require.NoError(t, m.AddReaction(context.Background(), port.MessageRef{ChannelID: "oc_purchase", MessageID: "om_1"}))
	assert.Equal(t, DefaultReaction, api.reactions["om_1"])

	custom := newMessenger(api, Config{Reaction: "THUMBSUP"}, zap.NewNop())
	require.NoError(t, custom.AddReaction(context.Background(), port.MessageRef{MessageID: "om_2"}))
	assert.Equal(t, "THUMBSUP", api.reactions["om_2"])

	assert.Error(t, m.AddReaction(context.Background(), port.MessageRef{}))
}

func TestResolveDisplayName_Cached(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(api)

	for i := 0; i < 3; i++ {
		name, err := m.ResolveDisplayName(context.Background(), "ou_alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", name)
	}
	assert.Equal(t, 1, api.nameCalls)
}

func TestResolveDisplayName_ErrorNotCached(t *testing.T) {
	api := &fakeAPI{GetUserNameFunc: func(string) (string, error) {
		return "", &APIError{Op: "get user", Code: 41050, Msg: "no user authority"}
	}}
	m := newTestMessenger(api)

	_, err := m.ResolveDisplayName(context.Background(), "ou_alice")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 41050, apiErr.Code)
	assert.NotErrorIs(t, err, entity.ErrGatewayUnavailable)

	_, _ = m.ResolveDisplayName(context.Background(), "ou_alice")
	assert.Equal(t, 2, api.nameCalls)
}
