package telegram

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/heraldbot/herald/internal/channel"
	"github.com/heraldbot/herald/internal/params"
	"github.com/heraldbot/herald/internal/pkg/logs"
	"github.com/heraldbot/herald/internal/pkg/utils"
)

// maxUploadSize is the Bot API limit for files uploaded by a bot (50 MB).
const maxUploadSize int64 = 50 * 1024 * 1024

// resolvedMedia is one media reference ready for the Bot API: either a
// remote URL Telegram fetches itself, or a local file read into memory.
type resolvedMedia struct {
	url  string
	name string
	data []byte
}

// input builds a fresh InputFile. Fresh readers make the plain-text
// fallback retry safe for uploads.
func (m *resolvedMedia) input() models.InputFile {
	if m.url != "" {
		return &models.InputFileString{Data: m.url}
	}
	return &models.InputFileUpload{Filename: m.name, Data: bytes.NewReader(m.data)}
}

// resolveMedia validates a media reference. Remote URLs must not point at
// private hosts. Local paths must resolve under one of the allowed roots
// and fit the upload limit.
func resolveMedia(raw string, roots []string) (*resolvedMedia, error) {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			return nil, fmt.Errorf("%w: field %q is not a valid URL", params.ErrInvalid, "media")
		}
		if utils.IsPrivateHost(u.Hostname()) {
			return nil, fmt.Errorf("%w: media host %q is not allowed", params.ErrInvalid, u.Hostname())
		}
		return &resolvedMedia{url: raw}, nil
	}

	abs, err := resolveLocalPath(raw, roots)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: media file %q is not readable", params.ErrInvalid, raw)
	}
	if info.Size() > maxUploadSize {
		return nil, fmt.Errorf("%w: media file %q exceeds the upload limit", params.ErrInvalid, raw)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read media file: %w", err)
	}
	return &resolvedMedia{name: filepath.Base(abs), data: data}, nil
}

func resolveLocalPath(raw string, roots []string) (string, error) {
	if len(roots) == 0 {
		return "", fmt.Errorf("%w: local media paths are not allowed on this channel", params.ErrInvalid)
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid media path %q", params.ErrInvalid, raw)
	}
	abs = filepath.Clean(abs)
	for _, root := range roots {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rootAbs = filepath.Clean(rootAbs)
		if abs == rootAbs || strings.HasPrefix(abs, rootAbs+string(os.PathSeparator)) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: media path %q is outside the allowed roots", params.ErrInvalid, raw)
}

// mediaKind classifies a media reference by extension. asVoice forces a
// voice note regardless of extension.
func mediaKind(raw string, asVoice bool) string {
	if asVoice {
		return "voice"
	}
	ref := raw
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(ref), ".")) {
	case "jpg", "jpeg", "png", "gif", "webp":
		return "photo"
	case "ogg", "oga", "opus":
		return "voice"
	case "mp3", "m4a", "aac", "flac", "wav":
		return "audio"
	default:
		return "document"
	}
}

func (c *Telegram) sendMedia(ctx context.Context, a *account, req *channel.SendRequest, extraRoots []string) (*channel.ActionResult, error) {
	roots := append(append([]string{}, c.mediaRoots...), extraRoots...)
	media, err := resolveMedia(req.MediaURL, roots)
	if err != nil {
		return nil, err
	}

	entityText, entities := toEntities(req.Content)
	if entityText == "" {
		entityText = req.Content
	}
	kind := mediaKind(req.MediaURL, req.AsVoice)

	send := func(caption string, capEntities []models.MessageEntity) (*models.Message, error) {
		threadID := 0
		if req.MessageThreadID != nil {
			threadID = *req.MessageThreadID
		}
		markup := inlineKeyboard(req.Buttons)
		reply := replyParams(req.ReplyToMessageID, req.QuoteText)

		switch kind {
		case "photo":
			return a.bot.SendPhoto(ctx, &bot.SendPhotoParams{
				ChatID:              chatID(req.To),
				MessageThreadID:     threadID,
				Photo:               media.input(),
				Caption:             caption,
				CaptionEntities:     capEntities,
				DisableNotification: req.Silent,
				ReplyMarkup:         markup,
				ReplyParameters:     reply,
			})
		case "voice":
			return a.bot.SendVoice(ctx, &bot.SendVoiceParams{
				ChatID:              chatID(req.To),
				MessageThreadID:     threadID,
				Voice:               media.input(),
				Caption:             caption,
				CaptionEntities:     capEntities,
				DisableNotification: req.Silent,
				ReplyMarkup:         markup,
				ReplyParameters:     reply,
			})
		case "audio":
			return a.bot.SendAudio(ctx, &bot.SendAudioParams{
				ChatID:              chatID(req.To),
				MessageThreadID:     threadID,
				Audio:               media.input(),
				Caption:             caption,
				CaptionEntities:     capEntities,
				DisableNotification: req.Silent,
				ReplyMarkup:         markup,
				ReplyParameters:     reply,
			})
		default:
			return a.bot.SendDocument(ctx, &bot.SendDocumentParams{
				ChatID:              chatID(req.To),
				MessageThreadID:     threadID,
				Document:            media.input(),
				Caption:             caption,
				CaptionEntities:     capEntities,
				DisableNotification: req.Silent,
				ReplyMarkup:         markup,
				ReplyParameters:     reply,
			})
		}
	}

	msg, err := send(entityText, entities)
	if err != nil && len(entities) > 0 {
		logs.CtxWarn(ctx, "[channel:telegram] entity caption failed, falling back to plain text: %v", err)
		msg, err = send(req.Content, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("telegram send %s: %w", kind, err)
	}
	return messageResult(msg), nil
}
