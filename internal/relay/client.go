package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/router-for-me/GraphQLTester/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// graphqlPath prefixes the endpoint in the upstream URL.
const graphqlPath = "/api/graphql/"

// maxResponseBytes caps how much of an upstream body is buffered.
const maxResponseBytes = 32 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the upstream origin, e.g. "https://api.example.com".
	BaseURL string
	// APIKey is injected as the bearer credential. It never leaves the server.
	APIKey string
	// HTTPClient overrides the default client; used by tests.
	HTTPClient *http.Client
}

// Client posts payloads to the upstream GraphQL API.
type Client struct {
	base   *url.URL
	apiKey string
	http   *http.Client
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base, errParse := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if errParse != nil {
		return nil, fmt.Errorf("relay: invalid base url: %w", errParse)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("relay: base url must be http or https, got %q", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("relay: base url has no host")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No overall timeout: one shot per submit, bounded only by the caller's context.
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Client{base: base, apiKey: cfg.APIKey, http: httpClient}, nil
}

// EndpointURL returns the upstream URL for an endpoint name. The name is
// escaped but otherwise used as typed, matching operationName.
func (c *Client) EndpointURL(endpoint string) string {
	return c.base.String() + graphqlPath + url.PathEscape(endpoint)
}

// BaseURL returns the configured upstream origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Post sends payload upstream once. It never fails: transport problems,
// including a body that is not JSON, come back as {"error": "..."}.
func (c *Client) Post(ctx context.Context, payload Payload) json.RawMessage {
	started := time.Now()
	body, errPost := c.post(ctx, payload)
	elapsed := time.Since(started)
	if errPost != nil {
		metrics.ObserveSend(metrics.OutcomeTransport, elapsed)
		log.WithError(errPost).WithField("endpoint", payload.OperationName).Warn("relay upstream call failed")
		return ErrorEnvelope(errPost)
	}
	metrics.ObserveSend(metrics.OutcomeOK, elapsed)
	return body
}

func (c *Client) post(ctx context.Context, payload Payload) (json.RawMessage, error) {
	encoded, errEncode := EncodePayload(payload)
	if errEncode != nil {
		return nil, errEncode
	}
	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.EndpointURL(payload.OperationName), bytes.NewReader(encoded))
	if errReq != nil {
		return nil, errReq
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, errDo := c.http.Do(req)
	if errDo != nil {
		return nil, unwrapURLError(errDo)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Debug("relay: close upstream body")
		}
	}()

	data, errRead := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if errRead != nil {
		return nil, errRead
	}
	var decoded any
	if errUnmarshal := json.Unmarshal(data, &decoded); errUnmarshal != nil {
		return nil, errUnmarshal
	}
	log.WithFields(log.Fields{
		"endpoint": payload.OperationName,
		"status":   resp.StatusCode,
		"bytes":    len(data),
	}).Debug("relay upstream responded")
	return json.RawMessage(bytes.TrimSpace(data)), nil
}

// ErrorEnvelope renders err as {"error": "<message>"}.
func ErrorEnvelope(err error) json.RawMessage {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	data, _ := json.Marshal(map[string]string{"error": message})
	return data
}

// unwrapURLError drops the "Post <url>:" prefix net/http adds.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

// EncodePayload renders payload as compact JSON without HTML escaping.
func EncodePayload(payload Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if errEncode := enc.Encode(payload); errEncode != nil {
		return nil, errEncode
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
