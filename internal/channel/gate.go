package channel

import (
	"github.com/bytedance/gg/gslice"
)

// Account is one configured provider credential with its own action
// enablement settings. The configuration subsystem implements it; channel
// code only reads it.
type Account interface {
	ID() string

	// ActionEnabled reports the account's setting for a gate key, falling
	// back to def when the key is unset.
	ActionEnabled(key string, def bool) bool

	// SupportsButtons reports whether the account can attach inline
	// keyboard buttons to messages.
	SupportsButtons() bool
}

// GateEntry binds one configuration key to the action kinds it enables.
// One key may gate several kinds at once.
type GateEntry struct {
	Key     string
	Default bool
	Kinds   []ActionKind
}

// EnabledActions computes the action kinds usable across the given
// accounts as a union: a kind is included when at least one account
// enables its key. A multi-account channel exposes the superset of what
// any account can do; which account handles a given dispatch is decided
// later by the executor. send is always first when at least one account
// exists. Zero accounts yield an empty set without error.
func EnabledActions(accounts []Account, entries []GateEntry) []ActionKind {
	if len(accounts) == 0 {
		return nil
	}
	kinds := []ActionKind{ActionSend}
	for _, e := range entries {
		if anyEnables(accounts, e.Key, e.Default) {
			kinds = append(kinds, e.Kinds...)
		}
	}
	return kinds
}

// AnyButtons reports whether any account supports inline buttons. Zero
// accounts report false without error.
func AnyButtons(accounts []Account) bool {
	for _, a := range accounts {
		if a.SupportsButtons() {
			return true
		}
	}
	return false
}

func anyEnables(accounts []Account, key string, def bool) bool {
	for _, a := range accounts {
		if a.ActionEnabled(key, def) {
			return true
		}
	}
	return false
}

// PickAccount chooses the account that executes a dispatch. An explicit id
// wins when configured. Otherwise the first account enabling the kind's
// gate key is chosen, falling back to the first account for ungated kinds
// or when none enables it.
func PickAccount(accounts []Account, entries []GateEntry, kind ActionKind, id string) (Account, bool) {
	if len(accounts) == 0 {
		return nil, false
	}
	if id != "" {
		for _, a := range accounts {
			if a.ID() == id {
				return a, true
			}
		}
		return nil, false
	}
	for _, e := range entries {
		if !gslice.Contains(e.Kinds, kind) {
			continue
		}
		for _, a := range accounts {
			if a.ActionEnabled(e.Key, e.Default) {
				return a, true
			}
		}
		break
	}
	return accounts[0], true
}
