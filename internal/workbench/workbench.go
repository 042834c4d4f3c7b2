// Package workbench holds the per-user form surface: the draft fields, their
// validation state, the submit gate and the request history.
package workbench

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/router-for-me/GraphQLTester/internal/domain"
	"github.com/router-for-me/GraphQLTester/internal/editor"
	"github.com/router-for-me/GraphQLTester/internal/metrics"
	"github.com/router-for-me/GraphQLTester/internal/relay"
	"github.com/router-for-me/GraphQLTester/internal/snippet"
	"github.com/router-for-me/GraphQLTester/internal/store"
	log "github.com/sirupsen/logrus"
)

// State is the form surface as rendered by the UI.
type State struct {
	Draft          domain.Draft `json:"draft"`
	QueryError     string       `json:"query_error,omitempty"`
	VariablesError string       `json:"variables_error,omitempty"`
	CanSubmit      bool         `json:"can_submit"`
	Busy           bool         `json:"busy"`
	Copied         bool         `json:"copied"`
}

// Workbench is the form surface of one owner. It is safe for concurrent use.
type Workbench struct {
	mu          sync.Mutex
	owner       string
	endpoint    string
	query       editor.Field
	variables   editor.Field
	drafts      *store.Drafts
	history     *store.History
	busy        bool
	copiedUntil time.Time
	hydrated    bool
	now         func() time.Time
}

// New constructs an empty workbench for owner. Call Hydrate once before use.
func New(slots store.Slots, owner string) *Workbench {
	return &Workbench{
		owner:     owner,
		query:     editor.NewQueryField(),
		variables: editor.NewVariablesField(),
		drafts:    store.NewDrafts(slots, owner),
		history:   store.NewHistory(slots, owner),
		now:       time.Now,
	}
}

// Hydrate restores the saved draft and history. Only the first call has an effect.
func (w *Workbench) Hydrate(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hydrated {
		return nil
	}
	if errHistory := w.history.Hydrate(ctx); errHistory != nil {
		return errHistory
	}
	saved, errDraft := w.drafts.Load(ctx)
	if errDraft != nil {
		return errDraft
	}
	if saved.Endpoint != "" {
		w.endpoint = saved.Endpoint
	}
	if saved.Query != "" {
		w.query.Replace(saved.Query)
	}
	if saved.Variables != "" {
		w.variables.Replace(saved.Variables)
	}
	w.hydrated = true
	return nil
}

// State returns the current form state.
func (w *Workbench) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

// SetEndpoint changes the endpoint field and persists the draft.
func (w *Workbench) SetEndpoint(ctx context.Context, text string) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.endpoint = text
	return w.persistLocked(ctx)
}

// SetQuery changes and validates the query field, then persists the draft.
func (w *Workbench) SetQuery(ctx context.Context, text string) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query.Set(text)
	return w.persistLocked(ctx)
}

// SetVariables changes and validates the variables field, then persists the draft.
func (w *Workbench) SetVariables(ctx context.Context, text string) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.variables.Set(text)
	return w.persistLocked(ctx)
}

// Update replaces all three fields as one edit.
func (w *Workbench) Update(ctx context.Context, d domain.Draft) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.applyLocked(d)
	return w.persistLocked(ctx)
}

// FormatQuery rewrites the query in canonical form. Unparsable input is left
// untouched and no error is surfaced.
func (w *Workbench) FormatQuery(ctx context.Context) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	formatted, errFormat := editor.FormatQuery(w.query.Text())
	if errFormat != nil {
		return w.stateLocked(), nil
	}
	w.query.Set(formatted)
	return w.persistLocked(ctx)
}

// FormatVariables re-indents the variables with four spaces. Unparsable input
// is left untouched.
func (w *Workbench) FormatVariables(ctx context.Context) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	formatted, errFormat := editor.FormatVariables(w.variables.Text())
	if errFormat != nil {
		return w.stateLocked(), nil
	}
	w.variables.Set(formatted)
	return w.persistLocked(ctx)
}

// ClearDraft empties the fields and removes the saved draft.
func (w *Workbench) ClearDraft(ctx context.Context) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.applyLocked(domain.Draft{})
	if errClear := w.drafts.Clear(ctx); errClear != nil {
		return w.stateLocked(), errClear
	}
	return w.stateLocked(), nil
}

// Submit validates the stored draft and relays it through sender. A second
// call while one is in flight fails with ErrBusy. History is recorded only
// when sender returns without error, whatever the upstream reported.
func (w *Workbench) Submit(ctx context.Context, header http.Header, sender relay.Sender) (json.RawMessage, error) {
	w.mu.Lock()
	return w.submitLocked(ctx, header, sender)
}

// SubmitDraft replaces the fields with d and submits them in one step, so the
// relayed request is exactly d even if earlier edits are still in flight.
// A failure to persist d is logged and does not block the submission.
func (w *Workbench) SubmitDraft(ctx context.Context, header http.Header, d domain.Draft, sender relay.Sender) (json.RawMessage, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	w.applyLocked(d)
	if _, errPersist := w.persistLocked(ctx); errPersist != nil {
		log.WithError(errPersist).WithField("owner", w.owner).Warn("persist draft before submit failed")
	}
	return w.submitLocked(ctx, header, sender)
}

// submitLocked runs a submission. It is entered with w.mu held and releases
// it while sender runs.
func (w *Workbench) submitLocked(ctx context.Context, header http.Header, sender relay.Sender) (json.RawMessage, error) {
	if w.busy {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	if invalid := w.validateLocked(); invalid != nil {
		w.mu.Unlock()
		return nil, invalid
	}
	snapshot := w.draftLocked()
	w.busy = true
	w.mu.Unlock()

	response, errSend := sender.Send(ctx, header, snapshot)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if errSend != nil {
		return nil, errSend
	}
	if _, errRecord := w.history.Record(ctx, snapshot); errRecord != nil {
		log.WithError(errRecord).WithField("owner", w.owner).Warn("persist history failed")
	}
	metrics.ObserveHistoryRecord()
	return response, nil
}

// Busy reports whether a submission is in flight.
func (w *Workbench) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// History returns the recorded entries, most recent first.
func (w *Workbench) History() []domain.HistoryEntry {
	return w.history.Entries()
}

// ClearHistory removes every history entry.
func (w *Workbench) ClearHistory(ctx context.Context) error {
	return w.history.Clear(ctx)
}

// SelectHistory copies the entry at index into the draft.
func (w *Workbench) SelectHistory(ctx context.Context, index int) (State, bool, error) {
	picked, ok := w.history.Select(index)
	if !ok {
		return w.State(), false, nil
	}
	state, errUpdate := w.Update(ctx, picked)
	return state, true, errUpdate
}

// MarkCopied starts the "copied" indicator.
func (w *Workbench) MarkCopied() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.copiedUntil = w.now().Add(snippet.CopiedFlash)
	return w.stateLocked()
}

// Draft returns the current field values.
func (w *Workbench) Draft() domain.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draftLocked()
}

func (w *Workbench) applyLocked(d domain.Draft) {
	w.endpoint = d.Endpoint
	w.query.Set(d.Query)
	w.variables.Set(d.Variables)
}

// validateLocked re-runs both validators and the required-field checks.
func (w *Workbench) validateLocked() *ValidationError {
	invalid := &ValidationError{}
	if strings.TrimSpace(w.endpoint) == "" {
		invalid.Endpoint = "endpoint is required"
	}
	queryResult := w.query.Validate()
	variablesResult := w.variables.Validate()
	switch {
	case !queryResult.Valid:
		invalid.Query = queryResult.Error
	case strings.TrimSpace(w.query.Text()) == "":
		invalid.Query = "query is required"
	}
	if !variablesResult.Valid {
		invalid.Variables = variablesResult.Error
	}
	if invalid.empty() {
		return nil
	}
	return invalid
}

func (w *Workbench) persistLocked(ctx context.Context) (State, error) {
	if errSave := w.drafts.Save(ctx, w.draftLocked()); errSave != nil {
		return w.stateLocked(), errSave
	}
	return w.stateLocked(), nil
}

func (w *Workbench) draftLocked() domain.Draft {
	return domain.Draft{
		Endpoint:  w.endpoint,
		Query:     w.query.Text(),
		Variables: w.variables.Text(),
	}
}

func (w *Workbench) stateLocked() State {
	queryResult := w.query.Result()
	variablesResult := w.variables.Result()
	return State{
		Draft:          w.draftLocked(),
		QueryError:     queryResult.Error,
		VariablesError: variablesResult.Error,
		CanSubmit:      !w.busy && editor.CanSubmit(queryResult, variablesResult),
		Busy:           w.busy,
		Copied:         w.now().Before(w.copiedUntil),
	}
}
