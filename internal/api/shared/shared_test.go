package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		p := domain.Principal{ID: uuid.New(), Email: "alice@example.com", Role: domain.RoleUser}
		ctx := WithPrincipal(context.Background(), p)

		got, ok := PrincipalFrom(ctx)
		require.True(t, ok)
		assert.Equal(t, p, got)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()
		_, ok := PrincipalFrom(context.Background())
		assert.False(t, ok)
	})
}

func TestTraceID(t *testing.T) {
	t.Parallel()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()
		ctx := SetTraceID(context.Background())
		traceID := GetTraceID(ctx)
		require.NotEmpty(t, traceID)
		assert.Len(t, traceID, TraceIDLength*2)
	})

	t.Run("unique per context", func(t *testing.T) {
		t.Parallel()
		a := GetTraceID(SetTraceID(context.Background()))
		b := GetTraceID(SetTraceID(context.Background()))
		assert.NotEqual(t, a, b)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, GetTraceID(context.Background()))
	})
}

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithJSON(rec, req, http.StatusCreated, map[string]string{"status": "ok"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	t.Run("includes trace id when present", func(t *testing.T) {
		t.Parallel()
		ctx := SetTraceID(context.Background())
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil).WithContext(ctx)
		rec := httptest.NewRecorder()

		RespondWithError(rec, req, http.StatusNotFound, "Task not found")

		require.Equal(t, http.StatusNotFound, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Task not found", resp.Error)
		assert.Equal(t, GetTraceID(ctx), resp.TraceID)
	})

	t.Run("omits trace id when absent", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		rec := httptest.NewRecorder()

		RespondWithError(rec, req, http.StatusBadRequest, "Invalid request format")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotContains(t, rec.Body.String(), "trace_id")
	})
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	rec := httptest.NewRecorder()

	RespondWithErrorAndLog(rec, req, http.StatusInternalServerError,
		"An unexpected error occurred", assert.AnError)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// The raw error text must never reach the client.
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	t.Run("decodes valid body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/",
			bytes.NewReader([]byte(`{"name": "alpha"}`)))

		var p payload
		require.NoError(t, DecodeJSON(req, &p))
		assert.Equal(t, "alpha", p.Name)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/",
			bytes.NewReader([]byte(`{name:`)))

		var p payload
		assert.Error(t, DecodeJSON(req, &p))
	})
}
