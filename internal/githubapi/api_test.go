package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-token")
	c.SetBaseURL(srv.URL)
	c.rateLimiter = rate.NewLimiter(rate.Inf, 0)

	slept := &[]time.Duration{}
	c.sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return c, slept
}

func userPage(logins ...string) string {
	out := "["
	for i, l := range logins {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"login":%q}`, l)
	}
	return out + "]"
}

func TestListFollowersPaginatesUntilEmptyPage(t *testing.T) {
	pages := map[string]string{
		"1": userPage("alice", "bob"),
		"2": userPage("carol"),
		"3": userPage(),
	}
	var requests int
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/user/followers", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, mediaType, r.Header.Get("Accept"))
		fmt.Fprint(w, pages[r.URL.Query().Get("page")])
	}))

	got := c.ListFollowers(context.Background())

	assert.Equal(t, map[string]struct{}{
		"alice": {}, "bob": {}, "carol": {},
	}, got)
	assert.Equal(t, 3, requests)
}

func TestFetchReturnsPartialSetOnErrorPage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, userPage("alice"))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	got := c.ListFollowing(context.Background())

	assert.Equal(t, map[string]struct{}{"alice": {}}, got)
}

func TestFetchReturnsPartialSetOnMalformedPage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, userPage("alice"))
			return
		}
		fmt.Fprint(w, "{not json")
	}))

	got := c.ListFollowers(context.Background())

	assert.Equal(t, map[string]struct{}{"alice": {}}, got)
}

func TestCheckRateLimitSleepsUntilReset(t *testing.T) {
	now := time.Now()
	c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rate_limit", r.URL.Path)
		fmt.Fprintf(w, `{"rate":{"remaining":2,"reset":%d}}`, now.Unix()+10)
	}))
	c.now = func() time.Time { return now }

	require.NoError(t, c.CheckRateLimit(context.Background()))

	require.Len(t, *slept, 1)
	assert.Equal(t, 10*time.Second, (*slept)[0])
}

func TestCheckRateLimitNoSleepWithQuota(t *testing.T) {
	c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"rate":{"remaining":4999,"reset":%d}}`, time.Now().Unix()+3600)
	}))

	require.NoError(t, c.CheckRateLimit(context.Background()))
	assert.Empty(t, *slept)
}

func TestCheckRateLimitPastResetDoesNotSleepNegative(t *testing.T) {
	now := time.Now()
	c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"rate":{"remaining":0,"reset":%d}}`, now.Unix()-30)
	}))
	c.now = func() time.Time { return now }

	require.NoError(t, c.CheckRateLimit(context.Background()))
	require.Len(t, *slept, 1)
	assert.Equal(t, time.Duration(0), (*slept)[0])
}

func TestCheckRateLimitFailuresAreFatal(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	assert.Error(t, c.CheckRateLimit(context.Background()))

	c, _ = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{malformed")
	}))
	assert.Error(t, c.CheckRateLimit(context.Background()))
}

func TestFollowAndUnfollowMethods(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	status, err := c.Follow(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/user/following/alice", gotPath)

	status, err = c.Unfollow(context.Background(), "dave")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/user/following/dave", gotPath)
}

func TestMutateReportsNon204Status(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))

	status, err := c.Follow(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
}
