package channel

import (
	"fmt"
	"strings"

	"github.com/bytedance/gg/gconv"

	"github.com/heraldbot/herald/internal/params"
)

const defaultStickerSearchLimit = 10

// resolveTarget picks the destination chat for an action. Layered callers
// supply different names for it: orchestration passes chatId or channelId,
// human shorthand passes target or to. The first present value wins and
// the final to is required.
func resolveTarget(bag params.Bag) (interface{}, error) {
	if v, ok := params.First(bag, "chatId", "channelId", "target"); ok {
		return v, nil
	}
	return params.StringOrNumber(bag, "to", params.Opt{Required: true})
}

// BuildSend normalizes a raw parameter bag into a send request. Content
// falls back from message to caption; a media-only send needs no text at
// all.
func BuildSend(bag params.Bag) (*SendRequest, error) {
	to, err := resolveTarget(bag)
	if err != nil {
		return nil, err
	}
	media, err := params.String(bag, "media", params.Opt{})
	if err != nil {
		return nil, err
	}
	message, err := params.String(bag, "message", params.Opt{Required: media == ""})
	if err != nil {
		return nil, err
	}
	content := message
	if content == "" {
		caption, err := params.String(bag, "caption", params.Opt{})
		if err != nil {
			return nil, err
		}
		content = caption
	}
	replyTo, err := params.Int(bag, "replyToMessageId", params.Opt{})
	if err != nil {
		return nil, err
	}
	threadID, err := params.Int(bag, "messageThreadId", params.Opt{})
	if err != nil {
		return nil, err
	}
	buttons, err := parseButtons(bag)
	if err != nil {
		return nil, err
	}
	quote, err := params.String(bag, "quoteText", params.Opt{})
	if err != nil {
		return nil, err
	}
	return &SendRequest{
		To:               to,
		Content:          content,
		MediaURL:         media,
		ReplyToMessageID: replyTo,
		MessageThreadID:  threadID,
		Buttons:          buttons,
		AsVoice:          params.Bool(bag, "asVoice"),
		Silent:           params.Bool(bag, "silent"),
		QuoteText:        quote,
	}, nil
}

// BuildReact keeps messageId as the string or number it arrived as, since
// providers disagree on the id shape.
func BuildReact(bag params.Bag) (*ReactRequest, error) {
	to, err := resolveTarget(bag)
	if err != nil {
		return nil, err
	}
	messageID, err := params.StringOrNumber(bag, "messageId", params.Opt{Required: true})
	if err != nil {
		return nil, err
	}
	emoji, err := params.String(bag, "emoji", params.Opt{})
	if err != nil {
		return nil, err
	}
	return &ReactRequest{
		To:        to,
		MessageID: messageID,
		Emoji:     emoji,
		Remove:    params.Bool(bag, "remove"),
	}, nil
}

func BuildDelete(bag params.Bag) (*DeleteRequest, error) {
	to, err := resolveTarget(bag)
	if err != nil {
		return nil, err
	}
	messageID, err := params.Int(bag, "messageId", params.Opt{Required: true})
	if err != nil {
		return nil, err
	}
	return &DeleteRequest{To: to, MessageID: *messageID}, nil
}

func BuildEdit(bag params.Bag) (*EditRequest, error) {
	to, err := resolveTarget(bag)
	if err != nil {
		return nil, err
	}
	messageID, err := params.Int(bag, "messageId", params.Opt{Required: true})
	if err != nil {
		return nil, err
	}
	content, err := params.String(bag, "message", params.Opt{Required: true})
	if err != nil {
		return nil, err
	}
	buttons, err := parseButtons(bag)
	if err != nil {
		return nil, err
	}
	return &EditRequest{
		To:        to,
		MessageID: *messageID,
		Content:   content,
		Buttons:   buttons,
	}, nil
}

// BuildSticker prefers the first stickerId element and falls back to a
// required fileId.
func BuildSticker(bag params.Bag) (*StickerRequest, error) {
	to, err := resolveTarget(bag)
	if err != nil {
		return nil, err
	}
	ids, err := params.StringSlice(bag, "stickerId", params.Opt{})
	if err != nil {
		return nil, err
	}
	fileID := ""
	if len(ids) > 0 {
		fileID = ids[0]
	}
	if fileID == "" {
		fileID, err = params.String(bag, "fileId", params.Opt{Required: true})
		if err != nil {
			return nil, err
		}
	}
	replyTo, err := params.Int(bag, "replyToMessageId", params.Opt{})
	if err != nil {
		return nil, err
	}
	threadID, err := params.Int(bag, "messageThreadId", params.Opt{})
	if err != nil {
		return nil, err
	}
	return &StickerRequest{
		To:               to,
		FileID:           fileID,
		ReplyToMessageID: replyTo,
		MessageThreadID:  threadID,
	}, nil
}

func BuildStickerSearch(bag params.Bag) (*StickerSearchRequest, error) {
	query, err := params.String(bag, "query", params.Opt{Required: true})
	if err != nil {
		return nil, err
	}
	limit, err := params.Int(bag, "limit", params.Opt{})
	if err != nil {
		return nil, err
	}
	req := &StickerSearchRequest{Query: query, Limit: defaultStickerSearchLimit}
	if limit != nil && *limit > 0 {
		req.Limit = *limit
	}
	return req, nil
}

func BuildTopicCreate(bag params.Bag) (*TopicCreateRequest, error) {
	to, err := resolveTarget(bag)
	if err != nil {
		return nil, err
	}
	name, err := params.String(bag, "name", params.Opt{Required: true})
	if err != nil {
		return nil, err
	}
	iconColor, err := params.Int(bag, "iconColor", params.Opt{})
	if err != nil {
		return nil, err
	}
	emojiID, err := params.String(bag, "iconCustomEmojiId", params.Opt{})
	if err != nil {
		return nil, err
	}
	return &TopicCreateRequest{
		To:                to,
		Name:              name,
		IconColor:         iconColor,
		IconCustomEmojiID: emojiID,
	}, nil
}

func BuildPoll(bag params.Bag) (*PollRequest, error) {
	// Poll keeps its own target chain rather than sharing resolveTarget.
	to, ok := params.First(bag, "chatId", "channelId", "target")
	if !ok {
		v, err := params.StringOrNumber(bag, "to", params.Opt{Required: true})
		if err != nil {
			return nil, err
		}
		to = v
	}

	question := params.FirstString(bag, "pollQuestion", "question")
	if question == "" {
		return nil, params.Missing("question")
	}

	options, err := params.StringSlice(bag, "pollOptions", params.Opt{})
	if err != nil {
		return nil, err
	}
	if options == nil {
		if raw, ok := params.AnySlice(bag, "options"); ok {
			options = make([]string, 0, len(raw))
			for _, el := range raw {
				options = append(options, strings.TrimSpace(gconv.To[string](el)))
			}
		}
	}

	// Multi-select means no cap beyond the available options.
	maxSelections := 0
	if params.Bool(bag, "pollMulti") {
		maxSelections = len(options)
		if maxSelections == 0 {
			maxSelections = 10
		}
	}

	duration, err := params.Int(bag, "durationSeconds", params.Opt{})
	if err != nil {
		return nil, err
	}

	var anonymous *bool
	if _, ok := bag["anonymous"]; ok {
		v := params.Bool(bag, "anonymous")
		anonymous = &v
	}

	req := &PollRequest{
		To:            to,
		Question:      question,
		Options:       options,
		MaxSelections: maxSelections,
		Anonymous:     anonymous,
		Silent:        params.Bool(bag, "silent"),
	}
	if duration != nil {
		req.DurationSec = *duration
	}

	thread, err := params.StringOrNumber(bag, "messageThreadId", params.Opt{})
	if err != nil {
		return nil, err
	}
	if thread != nil {
		req.ThreadID = gconv.To[string](thread)
	}

	return req, nil
}

// parseButtons reads an inline keyboard layout from the buttons field. The
// value is either an array of rows (each an array of button objects) or a
// flat array of button objects treated as a single row. A button object
// carries text plus a url or callbackData.
func parseButtons(bag params.Bag) ([][]Button, error) {
	raw, ok := params.AnySlice(bag, "buttons")
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	badButtons := func() error {
		return fmt.Errorf("%w: field %q must be an array of button rows", params.ErrInvalid, "buttons")
	}

	var rows [][]interface{}
	if _, nested := raw[0].([]interface{}); nested {
		rows = make([][]interface{}, 0, len(raw))
		for _, r := range raw {
			row, ok := r.([]interface{})
			if !ok {
				return nil, badButtons()
			}
			rows = append(rows, row)
		}
	} else {
		rows = [][]interface{}{raw}
	}

	out := make([][]Button, 0, len(rows))
	for _, row := range rows {
		buttons := make([]Button, 0, len(row))
		for _, b := range row {
			obj, ok := b.(map[string]interface{})
			if !ok {
				return nil, badButtons()
			}
			btn := Button{
				Text:         strings.TrimSpace(gconv.To[string](obj["text"])),
				URL:          strings.TrimSpace(gconv.To[string](obj["url"])),
				CallbackData: strings.TrimSpace(gconv.To[string](obj["callbackData"])),
			}
			if btn.Text == "" {
				return nil, fmt.Errorf("%w: button text cannot be empty", params.ErrInvalid)
			}
			buttons = append(buttons, btn)
		}
		out = append(out, buttons)
	}
	return out, nil
}
