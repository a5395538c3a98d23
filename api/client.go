// Package api is the request/response transport for the generation service.
//
// It covers the unary submit call (whose response body becomes the
// request-scoped progress stream) and the plain collaborator endpoints:
// project listing, file retrieval, model listing, and deletion.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stratalab/gensync/config"
	"github.com/stratalab/gensync/errors"
	"github.com/stratalab/gensync/logger"
	"github.com/stratalab/gensync/stream"
	"github.com/stratalab/gensync/wire"
	"go.uber.org/zap"
)

// Client talks to the generation API. Every request attaches the bearer
// credential; a 401 surfaces as errors.ErrUnauthorized and is never retried
// here - session handling belongs to the caller.
type Client struct {
	baseURL string
	token   string

	// unary bounds whole request/response exchanges with the configured
	// deadline. streaming only bounds the wait for response headers: once
	// headers arrive the body is a long-lived event stream and must not be
	// killed by an overall timeout.
	unary     *http.Client
	streaming *http.Client

	log *zap.SugaredLogger
}

// New creates a client from resolved configuration.
func New(cfg *config.Config) *Client {
	timeout := cfg.API.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.API.URL, "/"),
		token:     cfg.Auth.Token,
		unary:     &http.Client{Timeout: timeout, Transport: newTransport(0)},
		streaming: &http.Client{Transport: newTransport(timeout)},
		log:       logger.With("component", "api"),
	}
}

func newTransport(headerTimeout time.Duration) *http.Transport {
	return &http.Transport{
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: headerTimeout,
	}
}

// Submit starts a generation job and returns its live progress stream. The
// first decoded event carries the job id and initial status.
//
// The job specification is validated before any network call: a missing
// company name fails fast with errors.ErrValidation. There is no automatic
// retry; a retry is a user-initiated re-submit.
func (c *Client) Submit(ctx context.Context, req wire.GenerateRequest) (*stream.Stream, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, errors.NewValidationError("companyName is required")
	}
	return c.openStream(ctx, "/generation/generate-stream", req)
}

// Regenerate re-runs generation for an existing project id. Same event
// contract as Submit.
func (c *Client) Regenerate(ctx context.Context, projectID string) (*stream.Stream, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.NewValidationError("project id is required")
	}
	return c.openStream(ctx, "/generation/project/"+projectID+"/regenerate", nil)
}

func (c *Client) openStream(ctx context.Context, path string, body interface{}) (*stream.Stream, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streaming.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrTransport, err.Error())
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, errors.WithStack(errors.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readServerMessage(resp.Body)
		resp.Body.Close()
		c.log.Warnw("Generation submit rejected",
			"path", path,
			"status", resp.StatusCode,
			"message", msg,
		)
		return nil, errors.NewSubmissionError(msg)
	}

	return stream.New(resp.Body), nil
}

// Projects lists the caller's projects.
func (c *Client) Projects(ctx context.Context) ([]wire.Project, error) {
	return doJSON[[]wire.Project](c, ctx, http.MethodGet, "/generation/projects", nil)
}

// Project fetches one project snapshot. Feed the result through
// wire.NormalizeProject to reconcile it into a track.Store.
func (c *Client) Project(ctx context.Context, id string) (wire.Project, error) {
	return doJSON[wire.Project](c, ctx, http.MethodGet, "/generation/project/"+id, nil)
}

// SandpackFiles fetches the pre-formatted file set for the sandbox renderer.
func (c *Client) SandpackFiles(ctx context.Context, id string) (wire.SandpackFiles, error) {
	return doJSON[wire.SandpackFiles](c, ctx, http.MethodGet, "/generation/project/"+id+"/sandpack-files", nil)
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := doJSON[json.RawMessage](c, ctx, http.MethodPost, "/generation/project/"+id+"/delete", nil)
	return err
}

// Models lists the available generation engines.
func (c *Client) Models(ctx context.Context) ([]wire.Model, error) {
	return doJSON[[]wire.Model](c, ctx, http.MethodGet, "/generation/models", nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// doJSON runs a unary exchange and unwraps the standard response envelope.
func doJSON[T any](c *Client, ctx context.Context, method, path string, body interface{}) (T, error) {
	var zero T

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return zero, err
	}

	resp, err := c.unary.Do(req)
	if err != nil {
		return zero, errors.Wrap(errors.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return zero, errors.WithStack(errors.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, errors.NewSubmissionError(readServerMessage(resp.Body))
	}

	var env wire.Envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return zero, errors.Wrapf(errors.ErrDecode, "decoding %s response: %v", path, err)
	}
	if !env.Success {
		return zero, errors.NewSubmissionError(env.Message)
	}
	return env.Data, nil
}

// readServerMessage extracts the server's error message from a non-2xx body,
// falling back to the raw body when it is not the standard envelope.
func readServerMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return ""
	}

	var env wire.Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return strings.TrimSpace(string(body))
}
