package lark

import (
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
)

// DefaultReaction is the emoji added to accepted purchase requests
const DefaultReaction = "OK"

// Config holds Lark app credentials and bot settings
type Config struct {
	AppID     string
	AppSecret string
	// ChannelID is the chat_id of the purchase channel
	ChannelID string
	// Reaction is the emoji_type added to accepted requests
	Reaction string
	// APITimeout bounds every REST call
	APITimeout time.Duration
	Debug      bool
}

// NewSDKClient creates the Lark REST client with tenant token caching
func NewSDKClient(cfg Config) *lark.Client {
	level := larkcore.LogLevelInfo
	if cfg.Debug {
		level = larkcore.LogLevelDebug
	}

	opts := []lark.ClientOptionFunc{
		lark.WithLogLevel(level),
		lark.WithEnableTokenCache(true),
	}
	if cfg.APITimeout > 0 {
		opts = append(opts, lark.WithReqTimeout(cfg.APITimeout))
	}
	return lark.NewClient(cfg.AppID, cfg.AppSecret, opts...)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
