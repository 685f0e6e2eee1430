package lark

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/gg/gconv"
	"github.com/bytedance/sonic"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/heraldbot/herald/internal/channel"
	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/params"
	"github.com/heraldbot/herald/internal/pkg/logs"
)

// maxPostContentSize is the upper bound for a Lark post message content (30 KB).
const maxPostContentSize = 30 * 1024

// gateEntries for lark. The surface is smaller than telegram's: reactions
// and message deletion, both on by default. send is implicit.
var gateEntries = []channel.GateEntry{
	{Key: "reactions", Default: true, Kinds: []channel.ActionKind{channel.ActionReact}},
	{Key: "deleteMessage", Default: true, Kinds: []channel.ActionKind{channel.ActionDelete}},
}

var _ channel.Actions = (*Lark)(nil)

// Lark executes canonical channel actions through the Lark Open API on
// behalf of one configured channel and its accounts.
type Lark struct {
	id       string
	config   Config
	accounts []*account
}

// account pairs one enabled account's settings with its API client.
type account struct {
	cfg    AccountConfig
	client *lark.Client
}

func (a *account) ID() string {
	return a.cfg.ID
}

func (a *account) ActionEnabled(key string, def bool) bool {
	if v, ok := a.cfg.Actions[key]; ok {
		return v
	}
	return def
}

// SupportsButtons is always false: lark post messages carry no inline
// keyboards.
func (a *account) SupportsButtons() bool {
	return false
}

func NewChannel(chanID string, chCfg *config.ChannelConfig) (channel.Actions, error) {
	cfg, err := ParseConfig(chCfg.Config)
	if err != nil {
		return nil, fmt.Errorf("parse lark config: %w", err)
	}

	l := &Lark{
		id:     chanID,
		config: *cfg,
	}

	for _, ac := range cfg.EnabledAccounts() {
		l.accounts = append(l.accounts, &account{
			cfg:    ac,
			client: lark.NewClient(ac.AppID, ac.AppSecret),
		})
	}

	return l, nil
}

func (l *Lark) ID() string {
	return l.id
}

func (l *Lark) Type() channel.Type {
	return channel.Lark
}

func (l *Lark) ListActions() []channel.ActionKind {
	return channel.EnabledActions(l.gateAccounts(), gateEntries)
}

func (l *Lark) SupportsButtons() bool {
	return channel.AnyButtons(l.gateAccounts())
}

func (l *Lark) Close(_ context.Context) error {
	return nil
}

func (l *Lark) HandleAction(ctx context.Context, kind channel.ActionKind, args params.Bag, opts *channel.DispatchOpts) (*channel.ActionResult, error) {
	acct, err := l.pickAccount(kind, opts.Account())
	if err != nil {
		return nil, err
	}

	switch kind {
	case channel.ActionSend:
		req, err := channel.BuildSend(args)
		if err != nil {
			return nil, err
		}
		return l.sendMessage(ctx, acct, req)
	case channel.ActionReact:
		req, err := channel.BuildReact(args)
		if err != nil {
			return nil, err
		}
		return l.reactMessage(ctx, acct, req)
	case channel.ActionDelete:
		// Lark message ids are strings (om_...), so delete takes the
		// relaxed id reader instead of the integer one.
		messageID, err := params.StringOrNumber(args, "messageId", params.Opt{Required: true})
		if err != nil {
			return nil, err
		}
		return l.deleteMessage(ctx, acct, messageIDString(messageID))
	default:
		return nil, channel.UnsupportedActionError(kind, l.id)
	}
}

func (l *Lark) gateAccounts() []channel.Account {
	out := make([]channel.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, a)
	}
	return out
}

func (l *Lark) pickAccount(kind channel.ActionKind, id string) (*account, error) {
	picked, ok := channel.PickAccount(l.gateAccounts(), gateEntries, kind, id)
	if !ok {
		if id != "" {
			return nil, fmt.Errorf("%w: account %q not found on channel %q", params.ErrInvalid, id, l.id)
		}
		return nil, fmt.Errorf("%w: %s", channel.ErrNoAccounts, l.id)
	}
	return picked.(*account), nil
}

func (l *Lark) sendMessage(ctx context.Context, a *account, req *channel.SendRequest) (*channel.ActionResult, error) {
	if req.MediaURL != "" && !strings.HasPrefix(req.MediaURL, "http://") && !strings.HasPrefix(req.MediaURL, "https://") {
		return nil, fmt.Errorf("%w: local media is not supported on lark", params.ErrInvalid)
	}
	if len(req.Buttons) > 0 {
		logs.CtxWarn(ctx, "[channel:lark] inline buttons are not supported, ignoring")
	}

	msgType, body, err := buildPostContent(req.Content, req.MediaURL)
	if err != nil {
		return nil, fmt.Errorf("build lark post content: %w", err)
	}

	resp, err := a.client.Im.Message.Create(ctx,
		larkim.NewCreateMessageReqBuilder().
			ReceiveIdType(larkim.ReceiveIdTypeChatId).
			Body(larkim.NewCreateMessageReqBodyBuilder().
				MsgType(msgType).
				ReceiveId(gconv.To[string](req.To)).
				Content(body).
				Build()).
			Build())
	if err != nil {
		return nil, fmt.Errorf("lark send message: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("lark send message failed: code=%d msg=%s", resp.Code, resp.Msg)
	}

	res := &channel.ActionResult{}
	if resp.Data != nil && resp.Data.MessageId != nil {
		res.MessageID = *resp.Data.MessageId
	}
	return res, nil
}

func (l *Lark) reactMessage(ctx context.Context, a *account, req *channel.ReactRequest) (*channel.ActionResult, error) {
	if req.Remove {
		return nil, fmt.Errorf("%w: reaction removal is not supported on lark", params.ErrInvalid)
	}
	if req.Emoji == "" {
		return nil, params.Missing("emoji")
	}

	resp, err := a.client.Im.MessageReaction.Create(ctx,
		larkim.NewCreateMessageReactionReqBuilder().
			MessageId(messageIDString(req.MessageID)).
			Body(larkim.NewCreateMessageReactionReqBodyBuilder().
				ReactionType(larkim.NewEmojiBuilder().EmojiType(req.Emoji).Build()).
				Build()).
			Build())
	if err != nil {
		return nil, fmt.Errorf("lark react message: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("lark react message failed: code=%d msg=%s", resp.Code, resp.Msg)
	}
	return &channel.ActionResult{Extra: map[string]interface{}{"ok": true}}, nil
}

func (l *Lark) deleteMessage(ctx context.Context, a *account, messageID string) (*channel.ActionResult, error) {
	resp, err := a.client.Im.Message.Delete(ctx,
		larkim.NewDeleteMessageReqBuilder().
			MessageId(messageID).
			Build())
	if err != nil {
		return nil, fmt.Errorf("lark delete message: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("lark delete message failed: code=%d msg=%s", resp.Code, resp.Msg)
	}
	return &channel.ActionResult{Extra: map[string]interface{}{"ok": true}}, nil
}

func messageIDString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return gconv.To[string](v)
}

// buildPostContent converts markdown into a Lark post message, appending
// the media reference as a trailing link. If the rendered post exceeds
// maxPostContentSize it truncates paragraphs, then falls back to plain
// text.
func buildPostContent(md, mediaURL string) (msgType string, body string, err error) {
	paragraphs := markdownToPost(md)
	if mediaURL != "" {
		paragraphs = append(paragraphs, []postElement{
			{"tag": "a", "text": mediaURL, "href": mediaURL},
		})
	}

	serialize := func(content [][]postElement) (string, error) {
		return sonic.MarshalString(map[string]interface{}{
			"zh_cn": map[string]interface{}{"content": content},
		})
	}

	serialized, err := serialize(paragraphs)
	if err != nil {
		return "", "", err
	}
	if len(serialized) <= maxPostContentSize {
		return larkim.MsgTypePost, serialized, nil
	}

	// Post too large: drop trailing paragraphs until it fits.
	for len(paragraphs) > 1 {
		paragraphs = paragraphs[:len(paragraphs)-1]
		withMarker := append(append([][]postElement{}, paragraphs...), []postElement{
			{"tag": "text", "text": "… [truncated]"},
		})
		serialized, err = serialize(withMarker)
		if err != nil {
			return "", "", err
		}
		if len(serialized) <= maxPostContentSize {
			return larkim.MsgTypePost, serialized, nil
		}
	}

	// Still too large: plain text, truncated.
	text := md
	if len(text) > maxPostContentSize-20 {
		text = text[:maxPostContentSize-20] + "… [truncated]"
	}
	plain, err := sonic.MarshalString(map[string]string{"text": text})
	if err != nil {
		return "", "", err
	}
	return larkim.MsgTypeText, plain, nil
}
