package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
)

type fakeSheet struct {
	mu       sync.Mutex
	appended [][]interface{}
	rows     [][]interface{}
	fail     bool
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		http.Error(w, `{"error":{"code":503,"message":"backend unavailable"}}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.appended = append(f.appended, body.Values...)
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id"}`))
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"range":          "Votes!A2:F",
			"majorDimension": "ROWS",
			"values":         f.rows,
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestMirror(t *testing.T, fake *fakeSheet) *Mirror {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	m, err := New(context.Background(), "sheet-id", "", "Votes",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return m.(*Mirror)
}

func TestAppend(t *testing.T) {
	fake := &fakeSheet{}
	m := newTestMirror(t, fake)

	castAt := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)
	err := m.Append(context.Background(), domain.Vote{
		StudentID: "20552", StudentName: "ทดสอบ ทดลอง", Grade: "3", Room: "1",
		SelectedOption: "2", CastAt: castAt,
	})
	require.NoError(t, err)

	require.Len(t, fake.appended, 1)
	assert.Equal(t, []interface{}{"20552", "ทดสอบ ทดลอง", "3", "1", "2", "2026-10-01T08:30:00Z"}, fake.appended[0])
}

func TestAppendFailure(t *testing.T) {
	m := newTestMirror(t, &fakeSheet{fail: true})
	assert.Error(t, m.Append(context.Background(), domain.Vote{StudentID: "1"}))
}

func TestLoadAll(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{
		{"20552", "ทดสอบ ทดลอง", "3", "1", "2", "2026-10-01T08:30:00Z"},
		{"20553", "short row"},
		{"20554", "สมใจ ใจดี", "3", "2", "1", "not a time"},
	}}
	m := newTestMirror(t, fake)

	votes, err := m.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, votes, 2)

	assert.Equal(t, "20552", votes[0].StudentID)
	assert.Equal(t, "2", votes[0].SelectedOption)
	assert.Equal(t, time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC), votes[0].CastAt)
	assert.True(t, votes[1].CastAt.IsZero())
}

func TestFromRowStableID(t *testing.T) {
	row := []interface{}{"20552", "a", "3", "1", 2, "2026-10-01T08:30:00Z"}

	a, ok := fromRow(row)
	require.True(t, ok)
	b, _ := fromRow(row)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "2", a.SelectedOption)

	_, ok = fromRow([]interface{}{"", "a", "3", "1", "2", ""})
	assert.False(t, ok)
}
