package tasksapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/example/tasks-app/domain/task"
)

func TestConfig_WithDefaults(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantBaseURL string
		wantTimeout time.Duration
	}{
		{"empty config", Config{}, DefaultBaseURL, DefaultTimeout},
		{"trailing slash trimmed", Config{BaseURL: "http://api.local:9000/"}, "http://api.local:9000", DefaultTimeout},
		{"explicit timeout kept", Config{BaseURL: "http://x", Timeout: time.Second}, "http://x", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.cfg)
			if c.BaseURL() != tt.wantBaseURL {
				t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), tt.wantBaseURL)
			}
			if c.Timeout() != tt.wantTimeout {
				t.Errorf("Timeout() = %v, want %v", c.Timeout(), tt.wantTimeout)
			}
		})
	}
}

func TestClient_CreateTask(t *testing.T) {
	var gotBody map[string]any
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)
		gotRequestID = r.Header.Get("X-Request-ID")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"title":"Buy milk","description":null,"status":"TO_DO",` +
			`"createdAt":"2024-01-01T10:00:00Z","updatedAt":"2024-01-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	created, err := c.CreateTask(context.Background(), domain.CreateTaskPayload{
		Title:  "Buy milk",
		Status: domain.StatusToDo,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Nil(t, created.Description)
	assert.Equal(t, "TO_DO", created.Status)
	assert.Equal(t, "2024-01-01T10:00:00Z", created.CreatedAt)

	assert.Equal(t, "Buy milk", gotBody["title"])
	assert.Equal(t, "to-do", gotBody["status"])
	_, hasDescription := gotBody["description"]
	assert.False(t, hasDescription, "empty description must be omitted from the body")
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_CreateTask_InvalidPayload(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	tests := []struct {
		name    string
		payload domain.CreateTaskPayload
	}{
		{"missing title", domain.CreateTaskPayload{Status: domain.StatusToDo}},
		{"unknown status", domain.CreateTaskPayload{Title: "x", Status: "later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateTask(context.Background(), tt.payload)
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("CreateTask() error = %v, want ErrInvalidPayload", err)
			}
		})
	}
	if calls != 0 {
		t.Errorf("server received %d requests, want 0", calls)
	}
}

func TestClient_GetAllTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":2,"title":"B","description":"desc","status":"DOING","createdAt":"2024-01-02T10:00:00Z","updatedAt":"2024-01-02T10:00:00Z"},
			{"id":1,"title":"A","description":null,"status":"TO_DO","createdAt":"2024-01-01T10:00:00Z","updatedAt":"2024-01-01T10:00:00Z"}
		]`))
	}))
	defer srv.Close()

	tasks, err := NewClient(Config{BaseURL: srv.URL}).GetAllTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(2), tasks[0].ID)
	require.NotNil(t, tasks[0].Description)
	assert.Equal(t, "desc", *tasks[0].Description)
	assert.Equal(t, int64(1), tasks[1].ID)
}

func TestClient_GetAllTasks_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tasks, err := NewClient(Config{BaseURL: srv.URL}).GetAllTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestClient_ServerErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"single message", http.StatusBadRequest, `{"message":"X"}`, "X"},
		{"message list", http.StatusBadRequest, `{"message":["A","B"]}`, "A, B"},
		{"no usable body", http.StatusInternalServerError, `oops`, "Request failed with status code 500"},
		{"empty message", http.StatusConflict, `{"message":""}`, "Request failed with status code 409"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL}).CreateTask(context.Background(),
				domain.CreateTaskPayload{Title: "t", Status: domain.StatusDone})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.False(t, apiErr.IsTransport())
			assert.Equal(t, tt.wantMessage, ErrorMessage(err, "Failed to create task"))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).GetAllTasks(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsTransport())
	assert.Equal(t, "timeout of 50ms exceeded", apiErr.Message("Failed to fetch tasks"))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{BaseURL: url, Timeout: time.Second}).GetAllTasks(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsTransport())
	assert.NotEmpty(t, apiErr.TransportMessage)
}

func TestClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(Config{}).GetAllTasks(ctx)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, context.Canceled.Error(), apiErr.TransportMessage)
}
