// Package relay forwards editor submissions to the upstream GraphQL API with
// the server-held credential attached.
package relay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/router-for-me/GraphQLTester/internal/domain"
	"github.com/router-for-me/GraphQLTester/internal/metrics"
	"github.com/router-for-me/GraphQLTester/internal/session"
	log "github.com/sirupsen/logrus"
)

// Sender is the proxy action as seen by the form surface.
type Sender interface {
	Send(ctx context.Context, header http.Header, d domain.Draft) (json.RawMessage, error)
}

// Action re-verifies the caller and relays one submission.
type Action struct {
	verifier session.Verifier
	client   *Client
}

// NewAction constructs an Action.
func NewAction(verifier session.Verifier, client *Client) *Action {
	return &Action{verifier: verifier, client: client}
}

// Send verifies the session from header, builds the payload and posts it.
// Session and variables errors are returned; transport failures are folded
// into the returned envelope.
func (a *Action) Send(ctx context.Context, header http.Header, d domain.Draft) (json.RawMessage, error) {
	identity, errVerify := a.verifier.Verify(ctx, header)
	if errVerify != nil {
		metrics.ObserveSend(metrics.OutcomeRejected, 0)
		return nil, errVerify
	}

	payload, errPayload := BuildPayload(d)
	if errPayload != nil {
		metrics.ObserveSend(metrics.OutcomeRejected, 0)
		return nil, errPayload
	}

	submissionID := uuid.NewString()
	log.WithFields(log.Fields{
		"submission": submissionID,
		"user":       identity.UserID,
		"endpoint":   d.Endpoint,
		"variables":  payload.Variables != nil,
	}).Info("relaying graphql request")

	return a.client.Post(ctx, payload), nil
}
