package graph_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/raffle/internal/graph"
	"github.com/calvinalkan/raffle/internal/raffle"
)

const testToken = "secret-token"

// fakeGraph serves an oEmbed lookup for media "m1" and its comments split
// into pages of pageLen.
type fakeGraph struct {
	total   int
	pageLen int

	commentCalls atomic.Int32
}

func (f *fakeGraph) handler(t *testing.T, base func() string) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /v20.0/instagram_oembed", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != testToken {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`)

			return
		}

		_, _ = fmt.Fprint(w, `{"media_id":"m1"}`)
	})

	mux.HandleFunc("GET /v20.0/m1/comments", func(w http.ResponseWriter, r *http.Request) {
		f.commentCalls.Add(1)

		assert.Equal(t, "id,username,text", r.URL.Query().Get("fields"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		offset := 0
		_, _ = fmt.Sscan(r.URL.Query().Get("after"), &offset)

		var items []string

		for i := offset; i < f.total && i < offset+f.pageLen; i++ {
			items = append(items, fmt.Sprintf(`{"id":"c%d","username":"user%d","text":"comment %d @friend"}`, i, i, i))
		}

		next := ""
		if offset+f.pageLen < f.total {
			next = fmt.Sprintf(`,"paging":{"next":"%s/v20.0/m1/comments?fields=id,username,text&access_token=%s&after=%d"}`,
				base(), testToken, offset+f.pageLen)
		}

		_, _ = fmt.Fprintf(w, `{"data":[%s]%s}`, strings.Join(items, ","), next)
	})

	return mux
}

func newServer(t *testing.T, f *fakeGraph) *httptest.Server {
	t.Helper()

	var srv *httptest.Server

	srv = httptest.NewServer(f.handler(t, func() string { return srv.URL }))
	t.Cleanup(srv.Close)

	return srv
}

func TestFetchPostCommentsFollowsPaging(t *testing.T) {
	t.Parallel()

	f := &fakeGraph{total: 7, pageLen: 3}
	srv := newServer(t, f)

	client := graph.NewClient(graph.WithBaseURL(srv.URL))

	comments, truncated, err := client.FetchPostComments(context.Background(), "https://www.instagram.com/p/abc/", testToken, 0)
	require.NoError(t, err)

	assert.False(t, truncated)
	require.Len(t, comments, 7)
	assert.Equal(t, int32(3), f.commentCalls.Load())
	assert.Equal(t, graph.Comment{ID: "c0", Username: "user0", Text: "comment 0 @friend"}, comments[0])
	assert.Equal(t, "user6", comments[6].Username)
}

func TestFetchCommentsStopsAtCap(t *testing.T) {
	t.Parallel()

	f := &fakeGraph{total: 100, pageLen: 10}
	srv := newServer(t, f)

	client := graph.NewClient(graph.WithBaseURL(srv.URL))

	comments, truncated, err := client.FetchComments(context.Background(), "m1", testToken, 25)
	require.NoError(t, err)

	assert.Len(t, comments, 25)
	assert.True(t, truncated)
	assert.Equal(t, int32(3), f.commentCalls.Load(), "no page requested after the cap is reached")
}

func TestFetchCommentsExactlyAtCapIsNotTruncated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		total         int
		pageLen       int
		limit         int
		wantTruncated bool
	}{
		{name: "last page fills cap", total: 20, pageLen: 10, limit: 20, wantTruncated: false},
		{name: "page boundary with more pages", total: 30, pageLen: 10, limit: 20, wantTruncated: true},
		{name: "single page over cap", total: 10, pageLen: 10, limit: 9, wantTruncated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &fakeGraph{total: tt.total, pageLen: tt.pageLen}
			srv := newServer(t, f)

			client := graph.NewClient(graph.WithBaseURL(srv.URL))

			comments, truncated, err := client.FetchComments(context.Background(), "m1", testToken, tt.limit)
			require.NoError(t, err)

			assert.Len(t, comments, tt.limit)
			assert.Equal(t, tt.wantTruncated, truncated)
		})
	}
}

func TestFetchPostCommentsErrorPayloadAborts(t *testing.T) {
	t.Parallel()

	f := &fakeGraph{total: 3, pageLen: 3}
	srv := newServer(t, f)

	client := graph.NewClient(graph.WithBaseURL(srv.URL))

	comments, _, err := client.FetchPostComments(context.Background(), "https://www.instagram.com/p/abc/", "wrong", 0)
	require.ErrorIs(t, err, raffle.ErrRemoteFetch)
	assert.Nil(t, comments)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
	assert.Equal(t, int32(0), f.commentCalls.Load())
}

func TestFetchCommentsErrorMidPaginationDiscardsPartialResult(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	var srv *httptest.Server

	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = fmt.Fprintf(w, `{"data":[{"id":"1","username":"a","text":"x"}],"paging":{"next":"%s/v20.0/m1/comments?after=1"}}`, srv.URL)

			return
		}

		_, _ = fmt.Fprint(w, `{"error":{"message":"rate limited","code":4}}`)
	}))
	t.Cleanup(srv.Close)

	client := graph.NewClient(graph.WithBaseURL(srv.URL))

	comments, _, err := client.FetchComments(context.Background(), "m1", testToken, 0)
	require.ErrorIs(t, err, raffle.ErrRemoteFetch)
	assert.Nil(t, comments)
	assert.Contains(t, err.Error(), "page 2")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFetchCommentsNonJSONErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client := graph.NewClient(graph.WithBaseURL(srv.URL))

	_, _, err := client.FetchComments(context.Background(), "m1", testToken, 0)
	require.ErrorIs(t, err, raffle.ErrRemoteFetch)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchCommentsRepeatedPagingLinkAborts(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server

	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"data":[],"paging":{"next":"%s/v20.0/m1/comments?after=x"}}`, srv.URL)
	}))
	t.Cleanup(srv.Close)

	client := graph.NewClient(graph.WithBaseURL(srv.URL))

	_, _, err := client.FetchComments(context.Background(), "m1", testToken, 0)
	require.ErrorIs(t, err, raffle.ErrRemoteFetch)
}

func TestResolveMediaIDMissingID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"title":"no id here"}`)
	}))
	t.Cleanup(srv.Close)

	client := graph.NewClient(graph.WithBaseURL(srv.URL))

	_, err := client.ResolveMediaID(context.Background(), "https://www.instagram.com/p/abc/", testToken)
	require.ErrorIs(t, err, raffle.ErrRemoteFetch)
}

func TestTransportErrorDoesNotLeakToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := graph.NewClient(graph.WithBaseURL(url))

	_, err := client.ResolveMediaID(context.Background(), "https://www.instagram.com/p/abc/", testToken)
	require.ErrorIs(t, err, raffle.ErrRemoteFetch)
	assert.NotContains(t, err.Error(), testToken)
}

func TestFetchCommentsHonorsContext(t *testing.T) {
	t.Parallel()

	f := &fakeGraph{total: 3, pageLen: 3}
	srv := newServer(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := graph.NewClient(graph.WithBaseURL(srv.URL))

	_, _, err := client.FetchComments(ctx, "m1", testToken, 0)
	require.ErrorIs(t, err, raffle.ErrRemoteFetch)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAPIVersionOption(t *testing.T) {
	t.Parallel()

	var gotPath atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		_, _ = fmt.Fprint(w, `{"data":[]}`)
	}))
	t.Cleanup(srv.Close)

	client := graph.NewClient(graph.WithBaseURL(srv.URL), graph.WithAPIVersion("v19.0"))

	comments, truncated, err := client.FetchComments(context.Background(), "m1", testToken, 0)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.False(t, truncated)
	assert.Equal(t, "/v19.0/m1/comments", gotPath.Load())
}

func TestRecords(t *testing.T) {
	t.Parallel()

	got := graph.Records([]graph.Comment{{ID: "1", Username: "@Alice", Text: "hi"}})

	assert.Equal(t, []raffle.Record{{ID: "1", Username: "@Alice", Text: "hi"}}, got)
}

func TestTimeoutOptionAppliesInAnyOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}

		_, _ = fmt.Fprint(w, `{"data":[]}`)
	}))
	t.Cleanup(srv.Close)

	shared := &http.Client{}

	orders := map[string][]graph.Option{
		"timeout first": {graph.WithTimeout(20 * time.Millisecond), graph.WithHTTPClient(shared)},
		"timeout last":  {graph.WithHTTPClient(shared), graph.WithTimeout(20 * time.Millisecond)},
	}

	for name, opts := range orders {
		client := graph.NewClient(append(opts, graph.WithBaseURL(srv.URL))...)

		_, _, err := client.FetchComments(context.Background(), "m1", testToken, 0)
		require.ErrorIs(t, err, raffle.ErrRemoteFetch, name)
	}

	assert.Zero(t, shared.Timeout, "caller's client must not be modified")
}
