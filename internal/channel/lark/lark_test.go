package lark

import (
	"context"
	"errors"
	"strings"
	"testing"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/heraldbot/herald/internal/channel"
	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/params"
)

func newTestChannel(t *testing.T, cfgMap map[string]interface{}) channel.Actions {
	t.Helper()
	ch, err := NewChannel("lark-test", &config.ChannelConfig{
		ID:     "lark-test",
		Type:   "lark",
		Config: cfgMap,
	})
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}
	return ch
}

func TestParseConfig_Accounts(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"accounts": map[string]interface{}{
			"default": map[string]interface{}{
				"app_id":     "cli_1",
				"app_secret": "s1",
			},
			"alerts": map[string]interface{}{
				"app_id":     "cli_2",
				"app_secret": "s2",
				"enabled":    false,
			},
		},
	})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if len(cfg.Accounts) != 2 || cfg.Accounts[0].ID != DefaultAccountID {
		t.Fatalf("accounts: %+v", cfg.Accounts)
	}
	if enabled := cfg.EnabledAccounts(); len(enabled) != 1 || enabled[0].ID != "default" {
		t.Errorf("EnabledAccounts: %+v", enabled)
	}
}

func TestParseConfig_Shorthand(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"app_id":     "cli_1",
		"app_secret": "s1",
	})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if len(cfg.Accounts) != 1 {
		t.Fatalf("accounts: %+v", cfg.Accounts)
	}
	a := cfg.Accounts[0]
	if a.ID != DefaultAccountID || a.AppID != "cli_1" || a.AppSecret != "s1" || !a.Enabled {
		t.Errorf("shorthand account: %+v", a)
	}
}

func TestParseConfig_MissingSecret(t *testing.T) {
	_, err := ParseConfig(map[string]interface{}{"app_id": "cli_1"})
	if err == nil || !strings.Contains(err.Error(), "app_secret") {
		t.Errorf("expected app_secret error, got %v", err)
	}
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{})
	if err != nil {
		t.Fatalf("empty config should be legal: %v", err)
	}
	if len(cfg.Accounts) != 0 {
		t.Errorf("accounts: %+v", cfg.Accounts)
	}
}

func TestListActions(t *testing.T) {
	ch := newTestChannel(t, map[string]interface{}{
		"app_id":     "cli_1",
		"app_secret": "s1",
	})

	kinds := ch.ListActions()
	want := []channel.ActionKind{channel.ActionSend, channel.ActionReact, channel.ActionDelete}
	if len(kinds) != len(want) {
		t.Fatalf("kinds: got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d]: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestListActions_RespectsOverrides(t *testing.T) {
	ch := newTestChannel(t, map[string]interface{}{
		"accounts": map[string]interface{}{
			"a": map[string]interface{}{
				"app_id":     "cli_1",
				"app_secret": "s1",
				"actions": map[string]interface{}{
					"reactions":     false,
					"deleteMessage": false,
				},
			},
		},
	})

	kinds := ch.ListActions()
	if len(kinds) != 1 || kinds[0] != channel.ActionSend {
		t.Errorf("kinds: got %v, want send only", kinds)
	}
}

func TestSupportsButtons_AlwaysFalse(t *testing.T) {
	ch := newTestChannel(t, map[string]interface{}{
		"app_id":     "cli_1",
		"app_secret": "s1",
	})
	if ch.SupportsButtons() {
		t.Error("lark should never support buttons")
	}
}

func TestHandleAction_UnsupportedKind(t *testing.T) {
	ch := newTestChannel(t, map[string]interface{}{
		"app_id":     "cli_1",
		"app_secret": "s1",
	})

	_, err := ch.HandleAction(context.Background(), channel.ActionEdit,
		params.Bag{"to": "oc_1", "messageId": "1", "message": "x"}, nil)
	if !errors.Is(err, channel.ErrUnsupportedAction) {
		t.Fatalf("expected ErrUnsupportedAction, got %v", err)
	}
	if !strings.Contains(err.Error(), `"edit"`) || !strings.Contains(err.Error(), `"lark-test"`) {
		t.Errorf("error should name the action and the channel: %v", err)
	}
}

func TestHandleAction_ZeroAccounts(t *testing.T) {
	ch := newTestChannel(t, map[string]interface{}{})

	_, err := ch.HandleAction(context.Background(), channel.ActionSend,
		params.Bag{"to": "oc_1", "message": "hi"}, nil)
	if !errors.Is(err, channel.ErrNoAccounts) {
		t.Fatalf("expected ErrNoAccounts, got %v", err)
	}
}

func TestMessageIDString(t *testing.T) {
	if got := messageIDString("om_x"); got != "om_x" {
		t.Errorf("got %q", got)
	}
	if got := messageIDString(float64(17)); got != "17" {
		t.Errorf("got %q, want %q", got, "17")
	}
}

func TestMarkdownToPost(t *testing.T) {
	paragraphs := markdownToPost("**bold** and [docs](https://example.com)")
	if len(paragraphs) != 1 {
		t.Fatalf("paragraphs: %v", paragraphs)
	}
	row := paragraphs[0]
	if len(row) < 3 {
		t.Fatalf("elements: %v", row)
	}

	if row[0]["tag"] != "text" || row[0]["text"] != "bold" {
		t.Errorf("first element: %v", row[0])
	}
	styles, _ := row[0]["style"].([]string)
	if len(styles) != 1 || styles[0] != "bold" {
		t.Errorf("bold style: %v", row[0]["style"])
	}

	last := row[len(row)-1]
	if last["tag"] != "a" || last["href"] != "https://example.com" || last["text"] != "docs" {
		t.Errorf("link element: %v", last)
	}
}

func TestMarkdownToPost_CodeBlock(t *testing.T) {
	paragraphs := markdownToPost("```go\na := 1\n```")
	if len(paragraphs) != 1 || len(paragraphs[0]) != 1 {
		t.Fatalf("paragraphs: %v", paragraphs)
	}
	el := paragraphs[0][0]
	if el["tag"] != "code_block" || el["text"] != "a := 1" || el["language"] != "go" {
		t.Errorf("code block: %v", el)
	}
}

func TestMarkdownToPost_List(t *testing.T) {
	paragraphs := markdownToPost("- one\n- two")
	if len(paragraphs) != 2 {
		t.Fatalf("paragraphs: %v", paragraphs)
	}
	if paragraphs[0][0]["text"] != "• " || paragraphs[0][1]["text"] != "one" {
		t.Errorf("first item: %v", paragraphs[0])
	}
}

func TestBuildPostContent_Post(t *testing.T) {
	msgType, body, err := buildPostContent("hello **world**", "")
	if err != nil {
		t.Fatalf("buildPostContent: %v", err)
	}
	if msgType != larkim.MsgTypePost {
		t.Errorf("msgType: got %q, want %q", msgType, larkim.MsgTypePost)
	}
	if !strings.Contains(body, `"world"`) {
		t.Errorf("body: %s", body)
	}
}

func TestBuildPostContent_MediaLink(t *testing.T) {
	_, body, err := buildPostContent("see this", "https://example.com/a.png")
	if err != nil {
		t.Fatalf("buildPostContent: %v", err)
	}
	if !strings.Contains(body, `"https://example.com/a.png"`) {
		t.Errorf("media link missing from body: %s", body)
	}
}

func TestBuildPostContent_FallsBackToText(t *testing.T) {
	// One huge paragraph cannot be truncated paragraph-wise, so the
	// builder falls back to a plain text message.
	huge := strings.Repeat("word ", 20000)
	msgType, body, err := buildPostContent(huge, "")
	if err != nil {
		t.Fatalf("buildPostContent: %v", err)
	}
	if msgType != larkim.MsgTypeText {
		t.Errorf("msgType: got %q, want %q", msgType, larkim.MsgTypeText)
	}
	if len(body) > maxPostContentSize+1024 {
		t.Errorf("body still too large: %d bytes", len(body))
	}
}
