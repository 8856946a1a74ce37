package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
  "event": "2023",
  "owner_id": 1001,
  "members": {
    "1001": {
      "id": 1001,
      "name": "Alice",
      "local_score": 42,
      "stars": 3,
      "global_score": 0,
      "last_star_ts": 1701494000,
      "completion_day_level": {
        "1": {"1": {"star_index": 3, "get_star_ts": 1701407000}, "2": {"star_index": 9, "get_star_ts": 1701408000}},
        "2": {"1": {"star_index": 40, "get_star_ts": 1701494000}}
      }
    },
    "1002": {
      "id": "1002",
      "name": null,
      "local_score": 17,
      "completion_day_level": {}
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient("s3cr3t", "2023", WithBaseURL(srv.URL), WithLogger(logger)), srv
}

func TestFetchLeaderboard(t *testing.T) {
	var gotPath, gotCookie, gotAccept string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleBody)
	})

	raw, err := client.FetchLeaderboard(context.Background(), "4296175")
	require.NoError(t, err)

	assert.Equal(t, "/2023/leaderboard/private/view/4296175.json", gotPath)
	assert.Equal(t, "s3cr3t", gotCookie)
	assert.Equal(t, "application/json", gotAccept)

	require.Len(t, raw.Members, 2)
	alice := raw.Members["1001"]
	require.NotNil(t, alice.ID)
	assert.Equal(t, MemberID("1001"), *alice.ID)
	require.NotNil(t, alice.Name)
	assert.Equal(t, "Alice", *alice.Name)
	require.NotNil(t, alice.LocalScore)
	assert.Equal(t, 42, *alice.LocalScore)
	require.Contains(t, alice.CompletionDayLevel, 1)
	assert.Equal(t, int64(1701408000), alice.CompletionDayLevel[1].Part2.GetStarTS)
	assert.Nil(t, alice.CompletionDayLevel[2].Part2)

	bob := raw.Members["1002"]
	assert.Equal(t, MemberID("1002"), *bob.ID)
	assert.Nil(t, bob.Name)
}

func TestFetchLeaderboardRedirectedToLogin(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, "<!DOCTYPE html>\n<html><body>Log in</body></html>")
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	raw, err := client.FetchLeaderboard(context.Background(), "4296175")
	assert.Nil(t, raw)

	var redirectErr *RedirectError
	require.ErrorAs(t, err, &redirectErr)
	assert.Contains(t, redirectErr.URL, "/login")
	assert.Contains(t, err.Error(), "REDIRECT_ERROR")
}

func TestFetchLeaderboardMemberNameWithMarkup(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"members":{"1":{"id":1,"name":"<!DOCTYPE html> fan","local_score":5,"completion_day_level":{}}}}`)
	})

	raw, err := client.FetchLeaderboard(context.Background(), "4296175")
	require.NoError(t, err)
	require.Contains(t, raw.Members, "1")
	assert.Equal(t, "<!DOCTYPE html> fan", *raw.Members["1"].Name)
}

func TestTransportErrorIncludesCause(t *testing.T) {
	err := &TransportError{StatusCode: http.StatusOK, Message: "failed to read response body", Err: io.ErrUnexpectedEOF}
	assert.Equal(t, "upstream error (HTTP 200): failed to read response body: unexpected EOF", err.Error())

	err = &TransportError{StatusCode: http.StatusBadGateway, Message: "Bad Gateway"}
	assert.Equal(t, "upstream error (HTTP 502): Bad Gateway", err.Error())
}

func TestFetchLeaderboardHTTPError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "<!DOCTYPE html><html>oops</html>")
	})

	_, err := client.FetchLeaderboard(context.Background(), "4296175")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
	assert.Equal(t, "yes", transportErr.Header.Get("X-Upstream"))

	var redirectErr *RedirectError
	assert.False(t, errors.As(err, &redirectErr), "non-2xx must be a transport failure")
}

func TestFetchLeaderboardNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient("s3cr3t", "2023", WithBaseURL(url), WithTimeout(time.Second),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	_, err := client.FetchLeaderboard(context.Background(), "4296175")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 0, transportErr.StatusCode)
	assert.NotNil(t, transportErr.Unwrap())
}

func TestFetchLeaderboardCancelledContext(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleBody)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchLeaderboard(ctx, "4296175")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchLeaderboardMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "this is not json"},
		{"empty body", ""},
		{"members is a list", `{"members": []}`},
		{"member id is a bool", `{"members": {"1": {"id": true, "local_score": 1}}}`},
		{"score is a string", `{"members": {"1": {"id": 1, "local_score": "lots"}}}`},
		{"day key is not a number", `{"members": {"1": {"id": 1, "local_score": 1, "completion_day_level": {"x": {}}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})

			_, err := client.FetchLeaderboard(context.Background(), "4296175")
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML([]byte("<!DOCTYPE html><html></html>")))
	assert.True(t, IsHTML([]byte("\n  <!doctype html>")))
	assert.False(t, IsHTML([]byte(`{"members": {}}`)))
	assert.False(t, IsHTML(nil))
}

func TestMemberIDJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    MemberID
		out     string
		wantErr bool
	}{
		{`1001`, "1001", `1001`, false},
		{`"1001"`, "1001", `1001`, false},
		{`"anon-7"`, "anon-7", `"anon-7"`, false},
		{`"007"`, "007", `"007"`, false},
		{`true`, "", "", true},
		{`{}`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id MemberID
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)

			out, err := json.Marshal(id)
			require.NoError(t, err)
			assert.Equal(t, tt.out, string(out))
		})
	}
}

func TestInMemoryTransport(t *testing.T) {
	transport := NewInMemoryTransport()
	transport.Seed("a", SampleLeaderboard())
	transport.Fail("b", &RedirectError{})

	raw, err := transport.FetchLeaderboard(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, raw.Members, 2)

	_, err = transport.FetchLeaderboard(context.Background(), "b")
	var redirectErr *RedirectError
	assert.ErrorAs(t, err, &redirectErr)

	_, err = transport.FetchLeaderboard(context.Background(), "c")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusNotFound, transportErr.StatusCode)

	assert.Equal(t, 3, transport.RequestsMade())
	assert.Equal(t, 1, transport.RequestsFor("a"))

	transport.Seed("b", SampleLeaderboard())
	_, err = transport.FetchLeaderboard(context.Background(), "b")
	assert.NoError(t, err)

	transport.Reset()
	assert.Equal(t, 0, transport.RequestsMade())
}
