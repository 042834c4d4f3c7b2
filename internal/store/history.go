package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/router-for-me/GraphQLTester/internal/domain"
	log "github.com/sirupsen/logrus"
)

// MaxHistory is the number of entries kept, most recent first.
const MaxHistory = 20

// History is the bounded submission log of one owner.
type History struct {
	mu       sync.Mutex
	slots    Slots
	owner    string
	entries  []domain.HistoryEntry
	hydrated bool
}

// NewHistory constructs an empty History; call Hydrate before use.
func NewHistory(slots Slots, owner string) *History {
	return &History{slots: slots, owner: owner}
}

// Hydrate loads the persisted list once. Missing or unparsable data leaves
// the history empty; only backend failures are returned.
func (h *History) Hydrate(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hydrated {
		return nil
	}
	h.hydrated = true

	entries, errLoad := h.loadLocked(ctx)
	if errLoad != nil {
		return errLoad
	}
	h.entries = entries
	return nil
}

// Record prepends entry to the persisted list, drops anything past
// MaxHistory and saves the result. The slot is re-read first so entries
// written by other processes sharing the store are kept; when that read
// fails the in-memory list is used. Memory is updated even when saving fails.
func (h *History) Record(ctx context.Context, entry domain.HistoryEntry) ([]domain.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	base := h.entries
	if persisted, errLoad := h.loadLocked(ctx); errLoad == nil {
		base = persisted
	} else {
		log.WithError(errLoad).WithField("owner", h.owner).Warn("reload history failed, using cached list")
	}

	next := make([]domain.HistoryEntry, 0, len(base)+1)
	next = append(next, entry)
	next = append(next, base...)
	h.entries = truncate(next)

	if errSave := h.persistLocked(ctx); errSave != nil {
		return cloneEntries(h.entries), errSave
	}
	return cloneEntries(h.entries), nil
}

// Clear empties the history in memory and in storage.
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	return h.slots.Delete(ctx, h.owner, HistoryKey)
}

// Entries returns a copy of the current list.
func (h *History) Entries() []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneEntries(h.entries)
}

// Select returns the entry at index without modifying the history.
func (h *History) Select(index int) (domain.Draft, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.entries) {
		return domain.Draft{}, false
	}
	return h.entries[index], true
}

// loadLocked reads the slot, truncated. A missing or unparsable slot is an
// empty list.
func (h *History) loadLocked(ctx context.Context) ([]domain.HistoryEntry, error) {
	raw, errLoad := h.slots.Load(ctx, h.owner, HistoryKey)
	if errLoad != nil {
		if errors.Is(errLoad, ErrSlotNotFound) {
			return nil, nil
		}
		return nil, errLoad
	}
	var entries []domain.HistoryEntry
	if errUnmarshal := json.Unmarshal([]byte(raw), &entries); errUnmarshal != nil {
		log.WithField("owner", h.owner).Debug("discarding unparsable history slot")
		return nil, nil
	}
	return truncate(entries), nil
}

// persistLocked writes the list when it is non-empty.
func (h *History) persistLocked(ctx context.Context) error {
	if len(h.entries) == 0 {
		return nil
	}
	data, errMarshal := json.Marshal(truncate(h.entries))
	if errMarshal != nil {
		return fmt.Errorf("store: marshal history: %w", errMarshal)
	}
	return h.slots.Save(ctx, h.owner, HistoryKey, string(data))
}

func truncate(entries []domain.HistoryEntry) []domain.HistoryEntry {
	if len(entries) > MaxHistory {
		return entries[:MaxHistory]
	}
	return entries
}

func cloneEntries(entries []domain.HistoryEntry) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}
