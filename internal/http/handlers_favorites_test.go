package httpx

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyemovie/skyemovie/internal/domain/model"
)

// openStream connects to the favorites stream on a live test server and
// returns a channel of SSE data payloads plus a close func. Callers must
// defer the close func after the server's own Close defer, so the stream
// disconnects first and Close does not wait on the open connection.
func openStream(t *testing.T, server *httptest.Server, jar []*http.Cookie) (<-chan string, func()) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/favorites/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	for _, c := range jar {
		req.AddCookie(c)
	}

	res, err := server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	events := make(chan string, 8)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(res.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				events <- data
			}
		}
	}()
	return events, func() { _ = res.Body.Close() }
}

func waitForEvent(t *testing.T, events <-chan string) string {
	t.Helper()
	select {
	case data, ok := <-events:
		require.True(t, ok, "stream closed before an event arrived")
		return data
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for stream event")
		return ""
	}
}

func TestFavoritesStreamSendsSnapshotOnConnect(t *testing.T) {
	f := newRouterFixture(t)
	server := httptest.NewServer(f.handler)
	defer server.Close()
	jar := f.unlock(t)

	events, closeStream := openStream(t, server, jar)
	defer closeStream()

	snapshot := waitForEvent(t, events)
	assert.Contains(t, snapshot, "No favorites yet")
}

func TestFavoritesStreamPushesAfterChange(t *testing.T) {
	f := newRouterFixture(t)
	server := httptest.NewServer(f.handler)
	defer server.Close()
	jar := f.unlock(t)

	events, closeStream := openStream(t, server, jar)
	defer closeStream()

	waitForEvent(t, events) // initial snapshot

	// Mutate through the router so the change flows end to end.
	csrf := cookieValue(jar, "csrf_token")
	form := url.Values{
		"tmdb_id":    {"7"},
		"media_type": {"movie"},
		"title":      {"Night Train"},
		"poster_url": {model.PlaceholderPosterURL},
	}
	add := httptest.NewRequest(http.MethodPost, "/favorites", formBody(form.Encode()))
	add.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	add.Header.Set("X-Csrf-Token", csrf)
	addRec := f.do(t, add, jar)
	require.Equal(t, http.StatusSeeOther, addRec.Code)

	update := waitForEvent(t, events)
	assert.Contains(t, update, "Night Train")
}
