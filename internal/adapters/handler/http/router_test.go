package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/covervote/internal/adapters/broadcast"
	"github.com/vncsmyrnk/covervote/internal/adapters/mirror/noop"
	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/services"
	"github.com/vncsmyrnk/covervote/internal/resilience"
)

const testPassword = "s3cret"

func newTestServer(t *testing.T, adminPassword string) *httptest.Server {
	t.Helper()

	roster, err := domain.NewRoster([]domain.Voter{
		{ID: "20552", Name: "เด็กชายทดสอบ ทดลอง", Grade: "3", Room: "1"},
		{ID: "20553", Name: "นางสาว สมศรี มีสุข", Grade: "3", Room: "1"},
		{ID: "20554", Name: "นาย ก้อง ฟ้าใส", Grade: "2", Room: "4"},
		{ID: "20555", Name: "เด็กหญิง ดาว เรือง", Grade: "1", Room: "3"},
	})
	require.NoError(t, err)

	ledger := services.NewLedger(roster, []string{"1", "2", "3", "4", "5", "6"})
	hub := broadcast.NewHub(ledger.InitialData, nil)
	ledger.OnCommit(func(r domain.Receipt) { hub.Publish(services.VoteUpdate(r)) })

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	sync := services.NewSyncService(noop.New(), time.Second, resilience.DefaultBreakerConfig(), nil)
	auth := services.NewAdminAuthService(adminPassword, "test-jwt-secret")
	origins := []string{"*"}

	handler := NewHandler(Handlers{
		Vote:    NewVoteHandler(services.NewVoteService(roster, ledger, sync, nil)),
		Results: NewResultsHandler(services.NewResultsService(ledger)),
		Live:    NewLiveHandler(hub, origins, nil),
		Auth:    NewAuthHandler(auth, http.SameSiteLaxMode),
		Health:  NewHealthHandler(roster.Len(), ledger, sync),
	}, origins, nil)

	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string, mods ...func(*http.Request)) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for _, mod := range mods {
		mod(req)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func vote(studentID, option string) map[string]string {
	return map[string]string{
		"studentId":   studentID,
		"studentName": "",
		"grade":       "",
		"room":        "",
		"bookCover":   option,
	}
}

func TestVoteOnce(t *testing.T) {
	srv := newTestServer(t, "")

	resp := get(t, srv.URL+"/api/student/20552")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	voter := decode[domain.Voter](t, resp)
	assert.Equal(t, "20552", voter.ID)
	assert.Equal(t, domain.Voter{ID: "20552", Name: "เด็กชายทดสอบ ทดลอง", Grade: "3", Room: "1"}, voter)

	resp = postJSON(t, srv.URL+"/api/vote", vote("20552", "2"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ok := decode[voteResponse](t, resp)
	assert.True(t, ok.Success)
	assert.Equal(t, "Vote recorded successfully", ok.Message)

	resp = postJSON(t, srv.URL+"/api/vote", vote("20552", "4"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Student has already voted", decode[errorResponse](t, resp).Error)

	resp = get(t, srv.URL+"/api/student/20552")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get(t, srv.URL+"/api/results")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := decode[struct {
		TotalVotes int            `json:"totalVotes"`
		Results    map[string]int `json:"results"`
		Voters     []domain.Vote  `json:"voters"`
	}](t, resp)
	assert.Equal(t, 1, results.TotalVotes)
	assert.Equal(t, map[string]int{"2": 1}, results.Results)
	require.Len(t, results.Voters, 1)
	assert.Equal(t, "เด็กชายทดสอบ ทดลอง", results.Voters[0].StudentName)
	assert.Equal(t, "3", results.Voters[0].Grade)
}

func TestUnknownStudent(t *testing.T) {
	srv := newTestServer(t, "")

	resp := get(t, srv.URL+"/api/student/99999")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Student not found", decode[errorResponse](t, resp).Error)

	resp = postJSON(t, srv.URL+"/api/vote", vote("99999", "1"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	results := decode[map[string]any](t, get(t, srv.URL+"/api/results"))
	assert.EqualValues(t, 0, results["totalVotes"])
}

func TestInvalidVotes(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		name string
		body any
	}{
		{"unknown option", vote("20553", "9")},
		{"missing option", vote("20553", "")},
		{"missing student", vote("", "1")},
		{"bad timestamp", map[string]string{"studentId": "20553", "bookCover": "1", "timestamp": "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/vote", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decode[errorResponse](t, resp).Error)
		})
	}

	resp, err := http.Post(srv.URL+"/api/vote", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// rejected attempts leave the student free to vote
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/student/20553").StatusCode)
}

func TestOversizedBodiesRejected(t *testing.T) {
	srv := newTestServer(t, testPassword)

	huge := strings.Repeat("a", maxBodyBytes)
	resp := postJSON(t, srv.URL+"/api/vote", map[string]string{
		"studentId":   "20552",
		"studentName": huge,
		"bookCover":   "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/student/20552/confirm", map[string]string{"name": huge})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/auth/admin", map[string]string{"password": huge})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// the oversized vote was never recorded
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/student/20552").StatusCode)
}

func TestVoteUsesClientTimestamp(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/vote", map[string]string{
		"studentId": "20554",
		"bookCover": "5",
		"timestamp": "2025-02-03T04:05:06.789Z",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	results := decode[struct {
		Voters []domain.Vote `json:"voters"`
	}](t, get(t, srv.URL+"/api/results"))
	require.Len(t, results.Voters, 1)
	assert.True(t, time.Date(2025, 2, 3, 4, 5, 6, 789000000, time.UTC).Equal(results.Voters[0].CastAt))
}

func TestConfirmStudent(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/api/student/20553/confirm", map[string]string{"name": "สมศรี มีสุข"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[confirmResponse](t, resp).Confirmed)

	resp = postJSON(t, srv.URL+"/api/student/20553/confirm", map[string]string{"name": "someone else"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[confirmResponse](t, resp).Confirmed)

	resp = postJSON(t, srv.URL+"/api/student/99999/confirm", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOptions(t *testing.T) {
	srv := newTestServer(t, "")

	resp := get(t, srv.URL+"/api/options")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, decode[optionsResponse](t, resp).Options)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "")
	postJSON(t, srv.URL+"/api/vote", vote("20555", "6"))

	resp := get(t, srv.URL+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	h := decode[healthResponse](t, resp)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 4, h.Voters)
	assert.Equal(t, 1, h.Votes)
	assert.Equal(t, "none", h.Mirror)
	assert.Equal(t, "closed", h.MirrorBreaker)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, "")
	postJSON(t, srv.URL+"/api/vote", vote("20555", "6"))

	resp := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := new(bytes.Buffer)
	_, err := body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "covervote_ledger_votes_cast_total")
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
}

func readLive(t *testing.T, conn *websocket.Conn) liveMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg liveMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestLiveInitialDataThenUpdates(t *testing.T) {
	srv := newTestServer(t, "")

	for _, v := range [][2]string{{"20552", "1"}, {"20553", "1"}, {"20554", "3"}} {
		require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/vote", vote(v[0], v[1])).StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readLive(t, conn)
	assert.Equal(t, domain.EventInitialData, first.Event)
	assert.Equal(t, 3, first.Data.TotalVotes)
	assert.Equal(t, map[string]int{"1": 2, "3": 1}, first.Data.Results)
	assert.Len(t, first.Data.Voters, 3)

	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/vote", vote("20555", "3")).StatusCode)

	next := readLive(t, conn)
	assert.Equal(t, domain.EventVoteUpdate, next.Event)
	assert.Equal(t, 4, next.Data.TotalVotes)
	assert.Equal(t, map[string]int{"1": 2, "3": 2}, next.Data.Results)
	require.NotNil(t, next.Data.LatestVote)
	assert.Equal(t, "20555", next.Data.LatestVote.StudentID)
}

func TestAdminAuth(t *testing.T) {
	srv := newTestServer(t, testPassword)

	assert.Equal(t, http.StatusUnauthorized, get(t, srv.URL+"/api/results").StatusCode)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Equal(t, http.StatusUnauthorized, postJSON(t, srv.URL+"/auth/admin", map[string]string{"password": "nope"}).StatusCode)

	login := postJSON(t, srv.URL+"/auth/admin", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, login.StatusCode)
	var cookie *http.Cookie
	for _, c := range login.Cookies() {
		if c.Name == accessTokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	token := decode[loginResponse](t, login).Token
	assert.Equal(t, cookie.Value, token)

	resp = get(t, srv.URL+"/api/results", func(r *http.Request) { r.AddCookie(cookie) })
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, srv.URL+"/api/results", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) })
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, srv.URL+"/api/results", func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") })
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, domain.EventInitialData, readLive(t, conn).Event)

	// voting stays public
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/student/20552").StatusCode)
}

func TestAdminLoginDisabled(t *testing.T) {
	srv := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/auth/admin", map[string]string{"password": "anything"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/results").StatusCode)
}
