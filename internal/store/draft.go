package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/router-for-me/GraphQLTester/internal/domain"
)

// Drafts persists the current draft of one owner.
type Drafts struct {
	slots Slots
	owner string
}

// NewDrafts constructs a Drafts for owner.
func NewDrafts(slots Slots, owner string) *Drafts {
	return &Drafts{slots: slots, owner: owner}
}

// Load returns the saved draft. A missing or malformed slot yields an empty draft.
func (d *Drafts) Load(ctx context.Context) (domain.Draft, error) {
	raw, errLoad := d.slots.Load(ctx, d.owner, StateKey)
	if errLoad != nil {
		if errors.Is(errLoad, ErrSlotNotFound) {
			return domain.Draft{}, nil
		}
		return domain.Draft{}, errLoad
	}
	var snapshot domain.Draft
	if errUnmarshal := json.Unmarshal([]byte(raw), &snapshot); errUnmarshal != nil {
		return domain.Draft{}, nil
	}
	return snapshot, nil
}

// Save overwrites the stored draft with snapshot.
func (d *Drafts) Save(ctx context.Context, snapshot domain.Draft) error {
	data, errMarshal := json.Marshal(snapshot)
	if errMarshal != nil {
		return fmt.Errorf("store: marshal draft: %w", errMarshal)
	}
	return d.slots.Save(ctx, d.owner, StateKey, string(data))
}

// Clear removes the stored draft.
func (d *Drafts) Clear(ctx context.Context) error {
	return d.slots.Delete(ctx, d.owner, StateKey)
}
