package channel

// Canonical request shapes, one per ActionKind. Each is built fresh from a
// raw parameter bag by the owning channel's dispatcher, validated before
// any provider call, and discarded when the call returns. Target fields
// hold a string or a number unmodified since providers accept both numeric
// chat ids and "@username" forms.

// Button is one inline keyboard button attached to a sent or edited
// message. Exactly one of URL or CallbackData should be set.
type Button struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callbackData,omitempty"`
}

// SendRequest delivers text and/or one media attachment to a chat.
type SendRequest struct {
	To               interface{}
	Content          string
	MediaURL         string
	ReplyToMessageID *int
	MessageThreadID  *int
	Buttons          [][]Button
	AsVoice          bool
	Silent           bool
	QuoteText        string
}

// ReactRequest adds or retracts an emoji reaction on a message.
type ReactRequest struct {
	To        interface{}
	MessageID interface{}
	Emoji     string
	Remove    bool
}

// DeleteRequest removes a message.
type DeleteRequest struct {
	To        interface{}
	MessageID int
}

// EditRequest replaces the text of a previously sent message.
type EditRequest struct {
	To        interface{}
	MessageID int
	Content   string
	Buttons   [][]Button
}

// StickerRequest sends one sticker by file identifier.
type StickerRequest struct {
	To               interface{}
	FileID           string
	ReplyToMessageID *int
	MessageThreadID  *int
}

// StickerSearchRequest looks up stickers matching a query.
type StickerSearchRequest struct {
	Query string
	Limit int
}

// PollRequest creates a poll in a chat.
type PollRequest struct {
	To            interface{}
	Question      string
	Options       []string
	MaxSelections int
	DurationSec   int
	Anonymous     *bool
	Silent        bool
	ThreadID      string
}

// TopicCreateRequest opens a new forum topic in a supergroup.
type TopicCreateRequest struct {
	To                interface{}
	Name              string
	IconColor         *int
	IconCustomEmojiID string
}

// ActionResult carries the provider's outcome back to the caller
// unchanged. Extra holds provider-specific fields with no canonical slot.
type ActionResult struct {
	MessageID string                 `json:"messageId,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// DispatchOpts carries per-call hints into a dispatch. A nil *DispatchOpts
// is valid and means no account pin and no extra media roots.
type DispatchOpts struct {
	// AccountID pins the dispatch to one configured account. Empty lets
	// the channel pick.
	AccountID string
	// MediaRoots lists local directories media paths may resolve under,
	// in addition to the channel's configured roots.
	MediaRoots []string
}

// Account returns the pinned account id, tolerating a nil receiver.
func (o *DispatchOpts) Account() string {
	if o == nil {
		return ""
	}
	return o.AccountID
}

// Roots returns the per-call media roots, tolerating a nil receiver.
func (o *DispatchOpts) Roots() []string {
	if o == nil {
		return nil
	}
	return o.MediaRoots
}
