package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/GraphQLTester/internal/domain"
	internalhttp "github.com/router-for-me/GraphQLTester/internal/http"
	"github.com/router-for-me/GraphQLTester/internal/relay"
	"github.com/router-for-me/GraphQLTester/internal/session"
	"github.com/router-for-me/GraphQLTester/internal/workbench"
	log "github.com/sirupsen/logrus"
)

// SendHandler submits the caller's draft through the relay.
type SendHandler struct {
	registry *workbench.Registry
	sender   relay.Sender
}

// NewSendHandler constructs a SendHandler.
func NewSendHandler(registry *workbench.Registry, sender relay.Sender) *SendHandler {
	return &SendHandler{registry: registry, sender: sender}
}

// sendRequest is the form as the user last saw it.
type sendRequest struct {
	Endpoint  string `json:"endpoint"`
	Query     string `json:"query"`
	Variables string `json:"variables"`
}

// Send validates and relays the draft. A request body replaces the stored
// draft before validation; an empty body submits the stored draft. The
// upstream body, or the transport error envelope, is written verbatim with
// status 200.
func (h *SendHandler) Send(c *gin.Context) {
	var body *sendRequest
	if c.Request.ContentLength != 0 {
		body = &sendRequest{}
		if errBind := c.ShouldBindJSON(body); errBind != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}

	var response []byte
	var errSubmit error
	if body != nil {
		draft := domain.Draft{Endpoint: body.Endpoint, Query: body.Query, Variables: body.Variables}
		response, errSubmit = wb.SubmitDraft(c.Request.Context(), c.Request.Header, draft, h.sender)
	} else {
		response, errSubmit = wb.Submit(c.Request.Context(), c.Request.Header, h.sender)
	}
	if errSubmit != nil {
		writeSubmitError(c, errSubmit)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", response)
}

// writeSubmitError maps a submission error to a status and message.
func writeSubmitError(c *gin.Context, err error) {
	var invalid *workbench.ValidationError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft", "fields": invalid})
	case errors.Is(err, relay.ErrInvalidVariables):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, workbench.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "submission in progress"})
	case errors.Is(err, session.ErrMissingToken), errors.Is(err, session.ErrInvalidToken), errors.Is(err, session.ErrExpiredToken):
		status, message := internalhttp.SessionErrorStatus(err)
		c.JSON(status, gin.H{"error": message})
	default:
		log.WithError(err).WithField("user_id", getUserID(c)).Error("send failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "send failed"})
	}
}
