package telegram

import "github.com/heraldbot/herald/internal/channel"

// gateEntries binds account configuration keys to the action kinds they
// enable. One account enabling a key is enough to expose the kind on the
// channel. Most keys default to enabled; sticker support is opt-in and its
// single key gates both sticker kinds. send is not listed here because it
// is always available when any account exists.
var gateEntries = []channel.GateEntry{
	{Key: "reactions", Default: true, Kinds: []channel.ActionKind{channel.ActionReact}},
	{Key: "deleteMessage", Default: true, Kinds: []channel.ActionKind{channel.ActionDelete}},
	{Key: "editMessage", Default: true, Kinds: []channel.ActionKind{channel.ActionEdit}},
	{Key: "sticker", Default: false, Kinds: []channel.ActionKind{channel.ActionSticker, channel.ActionStickerSearch}},
	{Key: "sendPoll", Default: true, Kinds: []channel.ActionKind{channel.ActionPoll}},
	{Key: "createForumTopic", Default: true, Kinds: []channel.ActionKind{channel.ActionTopicCreate}},
}
