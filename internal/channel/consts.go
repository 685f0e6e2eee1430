package channel

import (
	"errors"
	"fmt"
)

// ErrUnsupportedAction is wrapped by dispatch failures for action kinds a
// channel does not handle. The closed dispatch set has no default branch.
var ErrUnsupportedAction = errors.New("channel action is not supported")

// ErrNoAccounts is returned when a dispatch reaches a channel with no
// enabled accounts. Capability listing never returns it.
var ErrNoAccounts = errors.New("channel has no enabled accounts")

type Type string

const (
	Telegram Type = "telegram"

	Lark Type = "lark"
)

var SupportedChannels = []Type{
	Telegram,
	Lark,
}

// ActionKind names one canonical operation a channel adapter can perform.
type ActionKind string

const (
	ActionSend          ActionKind = "send"
	ActionReact         ActionKind = "react"
	ActionDelete        ActionKind = "delete"
	ActionEdit          ActionKind = "edit"
	ActionSticker       ActionKind = "sticker"
	ActionStickerSearch ActionKind = "sticker-search"
	ActionPoll          ActionKind = "poll"
	ActionTopicCreate   ActionKind = "topic-create"
)

// UnsupportedActionError builds the dispatch failure for an action kind
// outside a channel's closed set, naming both the action and the channel.
func UnsupportedActionError(kind ActionKind, channelID string) error {
	return fmt.Errorf("%w: action %q is not supported for channel %q", ErrUnsupportedAction, string(kind), channelID)
}
