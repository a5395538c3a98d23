package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalab/gensync/config"
	"github.com/stratalab/gensync/errors"
	"github.com/stratalab/gensync/track"
	"github.com/stratalab/gensync/wire"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		API:  config.APIConfig{URL: srv.URL, TimeoutSeconds: 2},
		Auth: config.AuthConfig{Token: "test-token"},
	}
	return New(cfg), srv
}

func acmeRequest() wire.GenerateRequest {
	return wire.GenerateRequest{
		CompanyName: "Acme",
		Industry:    "technology",
		CodeType:    "HTML",
	}
}

func TestSubmitValidationFailsFastWithoutNetworkCall(t *testing.T) {
	hit := false
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))

	_, err := client.Submit(context.Background(), wire.GenerateRequest{CompanyName: "   "})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.False(t, hit, "validation failure must not reach the network")
}

func TestSubmitAttachesBearerAndAcceptHeaders(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "/generation/generate-stream", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	s, err := client.Submit(context.Background(), acmeRequest())
	require.NoError(t, err)
	s.Close()
}

func TestSubmitUnauthorized(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Submit(context.Background(), acmeRequest())
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorizedError(err))
}

func TestSubmitServerRejectionCarriesMessage(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"success":false,"message":"unsupported code type"}`)
	}))

	_, err := client.Submit(context.Background(), acmeRequest())
	require.Error(t, err)
	assert.True(t, errors.IsSubmissionError(err))
	assert.Contains(t, err.Error(), "unsupported code type")
}

func TestSubmitStreamEndToEnd(t *testing.T) {
	frames := []string{
		`{"projectId":"j1","status":"processing","progress":10,"message":"analyzing"}`,
		`{"projectId":"j1","status":"processing","progress":55,"message":"generating pages"}`,
		`{"projectId":"j1","status":"completed","progress":100,"files":{"index.html":"<html>Acme</html>"}}`,
	}
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n\n", f)
			flusher.Flush()
		}
	}))

	s, err := client.Submit(context.Background(), acmeRequest())
	require.NoError(t, err)
	defer s.Close()

	// Route the stream through the normalizer into the store, the way a
	// consumer would.
	store := track.NewStore()
	for {
		ev, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		store.Apply(wire.Normalize(ev))
	}

	job, ok := store.Get("j1")
	require.True(t, ok)
	assert.Equal(t, track.StatusSucceeded, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, "<html>Acme</html>", job.Files["index.html"])
}

func TestSubmitMalformedFrameDoesNotBreakStream(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"projectId\":\"j1\",\"status\":\"processing\",\"progress\":10}\n\n")
		fmt.Fprint(w, "data: {oops\n\n")
		fmt.Fprint(w, "data: {\"projectId\":\"j1\",\"status\":\"processing\",\"progress\":20}\n\n")
	}))

	s, err := client.Submit(context.Background(), acmeRequest())
	require.NoError(t, err)
	defer s.Close()

	ev, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 10, ev.Progress)

	ev, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, 20, ev.Progress)
}

func TestSubmitDeadlineLeavesStoreUntouched(t *testing.T) {
	if testing.Short() {
		t.Skip("deadline test sleeps past the header timeout")
	}
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Never send headers within the 2s deadline.
		time.Sleep(4 * time.Second)
	}))

	store := track.NewStore()
	_, err := client.Submit(context.Background(), acmeRequest())
	require.Error(t, err)
	assert.True(t, errors.IsTransportError(err))

	// No partial job is created on a request that never got an id back.
	assert.Empty(t, store.List())
}

func TestRegenerateValidatesID(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, err := client.Regenerate(context.Background(), "")
	assert.True(t, errors.IsValidationError(err))
}

func TestRegenerateHitsProjectRoute(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generation/project/p42/regenerate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	}))

	s, err := client.Regenerate(context.Background(), "p42")
	require.NoError(t, err)
	s.Close()
}

func TestProjects(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generation/projects", r.URL.Path)
		fmt.Fprint(w, `{"success":true,"data":[{"id":"p1","companyName":"Acme","status":"COMPLETED","progress":100}]}`)
	}))

	projects, err := client.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].ID)
	assert.Equal(t, "COMPLETED", projects[0].Status)
}

func TestModels(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[{"id":"GEMINI","name":"Gemini","provider":"google"}]}`)
	}))

	models, err := client.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "GEMINI", models[0].ID)
}

func TestSandpackFiles(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generation/project/p1/sandpack-files", r.URL.Path)
		fmt.Fprint(w, `{"success":true,"data":{"projectId":"p1","codeType":"HTML","files":{"/index.html":"<html></html>"}}}`)
	}))

	files, err := client.SandpackFiles(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", files.ProjectID)
	assert.Equal(t, "<html></html>", files.Files["/index.html"])
}

func TestDeleteProjectEnvelopeFailure(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"message":"project is still generating"}`)
	}))

	err := client.DeleteProject(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, errors.IsSubmissionError(err))
	assert.Contains(t, err.Error(), "still generating")
}
