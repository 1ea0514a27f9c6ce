package app

import "github.com/nhle/taskboard/internal/keys"

// KeyMap is the application's key bindings, shared with the list and
// help views.
type KeyMap = keys.KeyMap

// DefaultKeyMap delegates to keys.DefaultKeyMap.
func DefaultKeyMap() *KeyMap {
	return keys.DefaultKeyMap()
}
