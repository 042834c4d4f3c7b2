package store

import (
	"context"
	"errors"
)

// Slot keys shared with the embedded UI.
const (
	// HistoryKey holds the serialized history array.
	HistoryKey = "graphql-tester-history"
	// StateKey holds the serialized current draft.
	StateKey = "graphql-tester-state"
)

// ErrSlotNotFound indicates the slot has never been written or was deleted.
var ErrSlotNotFound = errors.New("store: slot not found")

// Slots persists versionless JSON text under (owner, key).
type Slots interface {
	Load(ctx context.Context, owner, key string) (string, error)
	Save(ctx context.Context, owner, key, value string) error
	Delete(ctx context.Context, owner, key string) error
}
