package telegram

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/heraldbot/herald/internal/channel"
	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/params"
	"github.com/heraldbot/herald/internal/pkg/logs"
)

var _ channel.Actions = (*Telegram)(nil)

// Telegram executes canonical channel actions against the Telegram Bot
// API on behalf of one configured channel and its accounts.
type Telegram struct {
	id         string
	config     Config
	accounts   []*account
	mediaRoots []string
}

// account pairs one enabled account's settings with its bot client.
type account struct {
	cfg AccountConfig
	bot *bot.Bot
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

func (a *account) SupportsButtons() bool {
	if a.cfg.Buttons != nil {
		return *a.cfg.Buttons
	}
	return true
}

func NewChannel(chanID string, chCfg *config.ChannelConfig) (channel.Actions, error) {
	cfg, err := ParseConfig(chCfg.Config)
	if err != nil {
		return nil, fmt.Errorf("parse telegram config: %w", err)
	}

	tg := &Telegram{
		id:         chanID,
		config:     *cfg,
		mediaRoots: chCfg.MediaRoots,
	}

	for _, ac := range cfg.EnabledAccounts() {
		b, err := bot.New(ac.Token, bot.WithSkipGetMe())
		if err != nil {
			return nil, fmt.Errorf("telegram account %q: create bot: %w", ac.ID, err)
		}
		tg.accounts = append(tg.accounts, &account{cfg: ac, bot: b})
	}

	return tg, nil
}

func (c *Telegram) ID() string {
	return c.id
}

func (c *Telegram) Type() channel.Type {
	return channel.Telegram
}

func (c *Telegram) ListActions() []channel.ActionKind {
	return channel.EnabledActions(c.gateAccounts(), gateEntries)
}

func (c *Telegram) SupportsButtons() bool {
	return channel.AnyButtons(c.gateAccounts())
}

func (c *Telegram) Close(ctx context.Context) error {
	for _, a := range c.accounts {
		if _, err := a.bot.Close(ctx); err != nil {
			logs.CtxWarn(ctx, "[channel:telegram] close account %s: %v", a.ID(), err)
		}
	}
	return nil
}

// HandleAction resolves kind plus the raw parameter bag into exactly one
// Bot API call. The request is fully built and validated before the call,
// so a failing bag produces no provider effect.
func (c *Telegram) HandleAction(ctx context.Context, kind channel.ActionKind, args params.Bag, opts *channel.DispatchOpts) (*channel.ActionResult, error) {
	acct, err := c.pickAccount(kind, opts.Account())
	if err != nil {
		return nil, err
	}

	switch kind {
	case channel.ActionSend:
		req, err := channel.BuildSend(args)
		if err != nil {
			return nil, err
		}
		return c.sendMessage(ctx, acct, req, opts.Roots())
	case channel.ActionReact:
		req, err := channel.BuildReact(args)
		if err != nil {
			return nil, err
		}
		return c.reactMessage(ctx, acct, req)
	case channel.ActionDelete:
		req, err := channel.BuildDelete(args)
		if err != nil {
			return nil, err
		}
		return c.deleteMessage(ctx, acct, req)
	case channel.ActionEdit:
		req, err := channel.BuildEdit(args)
		if err != nil {
			return nil, err
		}
		return c.editMessage(ctx, acct, req)
	case channel.ActionSticker:
		req, err := channel.BuildSticker(args)
		if err != nil {
			return nil, err
		}
		return c.sendSticker(ctx, acct, req)
	case channel.ActionStickerSearch:
		req, err := channel.BuildStickerSearch(args)
		if err != nil {
			return nil, err
		}
		return c.searchStickers(ctx, acct, req)
	case channel.ActionPoll:
		req, err := channel.BuildPoll(args)
		if err != nil {
			return nil, err
		}
		return c.sendPoll(ctx, acct, req)
	case channel.ActionTopicCreate:
		req, err := channel.BuildTopicCreate(args)
		if err != nil {
			return nil, err
		}
		return c.createTopic(ctx, acct, req)
	default:
		return nil, channel.UnsupportedActionError(kind, c.id)
	}
}

func (c *Telegram) gateAccounts() []channel.Account {
	out := make([]channel.Account, 0, len(c.accounts))
	for _, a := range c.accounts {
		out = append(out, a)
	}
	return out
}

func (c *Telegram) pickAccount(kind channel.ActionKind, id string) (*account, error) {
	picked, ok := channel.PickAccount(c.gateAccounts(), gateEntries, kind, id)
	if !ok {
		if id != "" {
			return nil, fmt.Errorf("%w: account %q not found on channel %q", params.ErrInvalid, id, c.id)
		}
		return nil, fmt.Errorf("%w: %s", channel.ErrNoAccounts, c.id)
	}
	return picked.(*account), nil
}

func (c *Telegram) sendMessage(ctx context.Context, a *account, req *channel.SendRequest, extraRoots []string) (*channel.ActionResult, error) {
	if req.MediaURL != "" {
		return c.sendMedia(ctx, a, req, extraRoots)
	}

	entityText, entities := toEntities(req.Content)
	if entityText == "" {
		entityText = req.Content
	}

	p := &bot.SendMessageParams{
		ChatID:              chatID(req.To),
		Text:                entityText,
		Entities:            entities,
		DisableNotification: req.Silent,
		ReplyMarkup:         inlineKeyboard(req.Buttons),
		ReplyParameters:     replyParams(req.ReplyToMessageID, req.QuoteText),
	}
	if req.MessageThreadID != nil {
		p.MessageThreadID = *req.MessageThreadID
	}

	msg, err := a.bot.SendMessage(ctx, p)
	if err != nil && len(entities) > 0 {
		logs.CtxWarn(ctx, "[channel:telegram] entity send failed, falling back to plain text: %v", err)
		p.Text = req.Content
		p.Entities = nil
		msg, err = a.bot.SendMessage(ctx, p)
	}
	if err != nil {
		return nil, fmt.Errorf("telegram send message: %w", err)
	}
	return messageResult(msg), nil
}

func (c *Telegram) reactMessage(ctx context.Context, a *account, req *channel.ReactRequest) (*channel.ActionResult, error) {
	messageID, err := messageIDInt(req.MessageID)
	if err != nil {
		return nil, err
	}

	p := &bot.SetMessageReactionParams{
		ChatID:    chatID(req.To),
		MessageID: messageID,
	}
	if req.Emoji != "" && !req.Remove {
		p.Reaction = []models.ReactionType{
			{
				Type: models.ReactionTypeTypeEmoji,
				ReactionTypeEmoji: &models.ReactionTypeEmoji{
					Emoji: req.Emoji,
				},
			},
		}
	} else {
		// An empty reaction list clears the bot's previous reaction.
		p.Reaction = []models.ReactionType{}
	}

	ok, err := a.bot.SetMessageReaction(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("telegram set reaction: %w", err)
	}
	if !ok {
		return nil, errors.New("telegram set reaction failed")
	}
	return okResult(), nil
}

func (c *Telegram) deleteMessage(ctx context.Context, a *account, req *channel.DeleteRequest) (*channel.ActionResult, error) {
	ok, err := a.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID(req.To),
		MessageID: req.MessageID,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram delete message: %w", err)
	}
	if !ok {
		return nil, errors.New("telegram delete message failed")
	}
	return okResult(), nil
}

func (c *Telegram) editMessage(ctx context.Context, a *account, req *channel.EditRequest) (*channel.ActionResult, error) {
	entityText, entities := toEntities(req.Content)
	if entityText == "" {
		entityText = req.Content
	}

	p := &bot.EditMessageTextParams{
		ChatID:      chatID(req.To),
		MessageID:   req.MessageID,
		Text:        entityText,
		Entities:    entities,
		ReplyMarkup: inlineKeyboard(req.Buttons),
	}

	msg, err := a.bot.EditMessageText(ctx, p)
	if err != nil && len(entities) > 0 {
		logs.CtxWarn(ctx, "[channel:telegram] entity edit failed, falling back to plain text: %v", err)
		p.Text = req.Content
		p.Entities = nil
		msg, err = a.bot.EditMessageText(ctx, p)
	}
	if err != nil {
		return nil, fmt.Errorf("telegram edit message: %w", err)
	}
	return messageResult(msg), nil
}

func (c *Telegram) sendSticker(ctx context.Context, a *account, req *channel.StickerRequest) (*channel.ActionResult, error) {
	p := &bot.SendStickerParams{
		ChatID:          chatID(req.To),
		Sticker:         &models.InputFileString{Data: req.FileID},
		ReplyParameters: replyParams(req.ReplyToMessageID, ""),
	}
	if req.MessageThreadID != nil {
		p.MessageThreadID = *req.MessageThreadID
	}

	msg, err := a.bot.SendSticker(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("telegram send sticker: %w", err)
	}
	return messageResult(msg), nil
}

func (c *Telegram) searchStickers(ctx context.Context, a *account, req *channel.StickerSearchRequest) (*channel.ActionResult, error) {
	query := strings.ToLower(req.Query)
	matches := make([]map[string]interface{}, 0, req.Limit)

	for _, setName := range c.config.StickerSets {
		set, err := a.bot.GetStickerSet(ctx, &bot.GetStickerSetParams{Name: setName})
		if err != nil {
			logs.CtxWarn(ctx, "[channel:telegram] get sticker set %s: %v", setName, err)
			continue
		}
		for _, s := range set.Stickers {
			if len(matches) >= req.Limit {
				break
			}
			if !stickerMatches(query, set.Title, setName, s.Emoji) {
				continue
			}
			matches = append(matches, map[string]interface{}{
				"fileId": s.FileID,
				"emoji":  s.Emoji,
				"set":    setName,
			})
		}
		if len(matches) >= req.Limit {
			break
		}
	}

	return &channel.ActionResult{Extra: map[string]interface{}{
		"stickers": matches,
		"count":    len(matches),
	}}, nil
}

func (c *Telegram) sendPoll(ctx context.Context, a *account, req *channel.PollRequest) (*channel.ActionResult, error) {
	options := make([]models.InputPollOption, 0, len(req.Options))
	for _, opt := range req.Options {
		options = append(options, models.InputPollOption{Text: opt})
	}

	p := &bot.SendPollParams{
		ChatID:                chatID(req.To),
		Question:              req.Question,
		Options:               options,
		AllowsMultipleAnswers: req.MaxSelections > 1,
		IsAnonymous:           req.Anonymous,
		DisableNotification:   req.Silent,
	}
	if req.DurationSec > 0 {
		p.OpenPeriod = req.DurationSec
	}
	if req.ThreadID != "" {
		threadID, err := strconv.Atoi(req.ThreadID)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q must be an integer", params.ErrInvalid, "messageThreadId")
		}
		p.MessageThreadID = threadID
	}

	msg, err := a.bot.SendPoll(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("telegram send poll: %w", err)
	}
	return messageResult(msg), nil
}

func (c *Telegram) createTopic(ctx context.Context, a *account, req *channel.TopicCreateRequest) (*channel.ActionResult, error) {
	p := &bot.CreateForumTopicParams{
		ChatID: chatID(req.To),
		Name:   req.Name,
	}
	if req.IconColor != nil {
		p.IconColor = *req.IconColor
	}
	if req.IconCustomEmojiID != "" {
		p.IconCustomEmojiID = req.IconCustomEmojiID
	}

	topic, err := a.bot.CreateForumTopic(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("telegram create forum topic: %w", err)
	}
	return &channel.ActionResult{Extra: map[string]interface{}{
		"messageThreadId": topic.MessageThreadID,
		"name":            topic.Name,
	}}, nil
}

// chatID normalizes a resolved target for the Bot API, which accepts a
// numeric id or an "@username" string. Integral floats from JSON decoding
// become int64 so the id never picks up a decimal point on the wire.
func chatID(to interface{}) interface{} {
	switch v := to.(type) {
	case float64:
		if v == math.Trunc(v) {
			return int64(v)
		}
		return v
	case float32:
		f := float64(v)
		if f == math.Trunc(f) {
			return int64(f)
		}
		return f
	default:
		return to
	}
}

func messageIDInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("%w: field %q must be an integer", params.ErrInvalid, "messageId")
		}
		return int(t), nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("%w: field %q must be an integer", params.ErrInvalid, "messageId")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: field %q must be an integer", params.ErrInvalid, "messageId")
	}
}

func inlineKeyboard(rows [][]channel.Button) models.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		r := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			r = append(r, models.InlineKeyboardButton{
				Text:         b.Text,
				URL:          b.URL,
				CallbackData: b.CallbackData,
			})
		}
		kb = append(kb, r)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: kb}
}

func replyParams(replyTo *int, quote string) *models.ReplyParameters {
	if replyTo == nil {
		return nil
	}
	p := &models.ReplyParameters{MessageID: *replyTo}
	if quote != "" {
		p.Quote = quote
	}
	return p
}

func messageResult(msg *models.Message) *channel.ActionResult {
	if msg == nil {
		return &channel.ActionResult{}
	}
	res := &channel.ActionResult{MessageID: strconv.Itoa(msg.ID)}
	if msg.Chat.ID != 0 {
		res.Extra = map[string]interface{}{"chatId": msg.Chat.ID}
	}
	return res
}

func okResult() *channel.ActionResult {
	return &channel.ActionResult{Extra: map[string]interface{}{"ok": true}}
}

func stickerMatches(query, setTitle, setName, emoji string) bool {
	if query == "" {
		return true
	}
	if emoji != "" && strings.Contains(query, emoji) {
		return true
	}
	return strings.Contains(strings.ToLower(setTitle), query) ||
		strings.Contains(strings.ToLower(setName), query)
}
