package intent

import (
	"strings"

	"github.com/bytedance/gg/gslice"
	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"

	"github.com/heraldbot/herald/internal/params"
)

// SendIntent is a normalized reading of a send-shaped tool call. Fields
// are best-effort: To may be empty when the caller supplies the chat some
// other way.
type SendIntent struct {
	To       string `json:"to,omitempty"`
	Content  string `json:"content,omitempty"`
	MediaURL string `json:"mediaUrl,omitempty"`
}

// sendToolNames lists the tool names recognized as a send request.
var sendToolNames = []string{"send", "message", "send_message", "sendMessage"}

// ExtractSend reads a send intent out of an agent tool call. Extraction
// never errors: unrecognized tools, undecodable arguments and payloads
// with nothing to deliver all report absent.
func ExtractSend(call *schema.ToolCall) (*SendIntent, bool) {
	if call == nil {
		return nil, false
	}

	args := params.Bag{}
	if raw := call.Function.Arguments; raw != "" {
		if err := sonic.UnmarshalString(raw, &args); err != nil {
			return nil, false
		}
	}
	return ExtractSendArgs(call.Function.Name, args)
}

// ExtractSendArgs is ExtractSend for already-decoded arguments.
func ExtractSendArgs(name string, args params.Bag) (*SendIntent, bool) {
	if !gslice.Contains(sendToolNames, strings.TrimSpace(name)) {
		return nil, false
	}

	out := &SendIntent{
		To:       params.FirstString(args, "to", "chatId", "chat_id", "channelId", "channel_id", "target"),
		Content:  params.FirstString(args, "message", "content", "text"),
		MediaURL: params.FirstString(args, "mediaUrl", "media_url", "media"),
	}
	if out.Content == "" && out.MediaURL == "" {
		return nil, false
	}
	return out, true
}
