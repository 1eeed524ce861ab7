package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionHandler_List(t *testing.T) {
	s := setupTestStore(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Sessions().Create(&store.Session{
			ID:        fmt.Sprintf("s%d", i),
			EnteredBy: "gesture",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	h := NewSessionHandler(s)

	var body listSessionsResponse

	rec := serve(h, http.MethodGet, "/api/sessions")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Sessions, 3)
	assert.Equal(t, "s2", body.Sessions[0].ID)

	rec = serve(h, http.MethodGet, "/api/sessions?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Sessions, 1)
}

func TestSessionHandler_ListEmpty(t *testing.T) {
	rec := serve(NewSessionHandler(setupTestStore(t)), http.MethodGet, "/api/sessions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":[]}`, rec.Body.String())
}

func TestSessionHandler_BadLimit(t *testing.T) {
	h := NewSessionHandler(setupTestStore(t))
	for _, q := range []string{"abc", "0", "-3"} {
		rec := serve(h, http.MethodGet, "/api/sessions?limit="+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", q)
	}
}

func TestSessionHandler_Get(t *testing.T) {
	s := setupTestStore(t)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Sessions().Create(&store.Session{ID: "abc", EnteredBy: "manual", StartedAt: start}))
	require.NoError(t, s.Sessions().Finish("abc", start.Add(time.Minute), "gesture", 2, 1))
	h := NewSessionHandler(s)

	rec := serve(h, http.MethodGet, "/api/sessions/abc")
	require.Equal(t, http.StatusOK, rec.Code)

	var got store.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, "gesture", got.ExitReason)
	assert.Equal(t, 2, got.Clicks)
	require.NotNil(t, got.EndedAt)

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/sessions/missing").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodDelete, "/api/sessions/abc").Code)
}
