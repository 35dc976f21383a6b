package lark

import (
	"context"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcontact "github.com/larksuite/oapi-sdk-go/v3/service/contact/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

// APIError is a well-formed failure response of the Lark open platform
type APIError struct {
	Op   string
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lark %s: code=%d, msg=%s", e.Op, e.Code, e.Msg)
}

// transportError marks failures to reach the Lark API at all
func transportError(op string, err error) error {
	return fmt.Errorf("lark %s: %w: %w", op, entity.ErrGatewayUnavailable, err)
}

// imAPI is the subset of the Lark open platform used by the messenger
type imAPI interface {
	CreateMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error)
	CreateReaction(ctx context.Context, messageID, emojiType string) error
	GetUserName(ctx context.Context, openID string) (string, error)
}

// sdkAPI implements imAPI with the Lark SDK
type sdkAPI struct {
	client *lark.Client
}

func (a *sdkAPI) CreateMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(receiveID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := a.client.Im.Message.Create(ctx, req)
	if err != nil {
		return "", transportError("send message", err)
	}
	if !resp.Success() {
		return "", &APIError{Op: "send message", Code: resp.Code, Msg: resp.Msg}
	}

	if resp.Data == nil {
		return "", nil
	}
	return derefString(resp.Data.MessageId), nil
}

func (a *sdkAPI) CreateReaction(ctx context.Context, messageID, emojiType string) error {
	req := larkim.NewCreateMessageReactionReqBuilder().
		MessageId(messageID).
		Body(larkim.NewCreateMessageReactionReqBodyBuilder().
			ReactionType(larkim.NewEmojiBuilder().EmojiType(emojiType).Build()).
			Build()).
		Build()

	resp, err := a.client.Im.MessageReaction.Create(ctx, req)
	if err != nil {
		return transportError("add reaction", err)
	}
	if !resp.Success() {
		return &APIError{Op: "add reaction", Code: resp.Code, Msg: resp.Msg}
	}
	return nil
}

func (a *sdkAPI) GetUserName(ctx context.Context, openID string) (string, error) {
	req := larkcontact.NewGetUserReqBuilder().
		UserId(openID).
		UserIdType("open_id").
		Build()

	resp, err := a.client.Contact.User.Get(ctx, req)
	if err != nil {
		return "", transportError("get user", err)
	}
	if !resp.Success() {
		return "", &APIError{Op: "get user", Code: resp.Code, Msg: resp.Msg}
	}
	if resp.Data == nil || resp.Data.User == nil {
		return "", &APIError{Op: "get user", Msg: "empty user in response"}
	}
	return derefString(resp.Data.User.Name), nil
}
