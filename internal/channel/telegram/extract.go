package telegram

import (
	"github.com/cloudwego/eino/schema"

	"github.com/heraldbot/herald/internal/intent"
)

// ExtractToolSend reads a normalized send intent from an agent tool call.
// Listing layers use it to preview deliveries; dispatch never does.
func ExtractToolSend(call *schema.ToolCall) (*intent.SendIntent, bool) {
	return intent.ExtractSend(call)
}
