package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	perPage = 100

	// Below this many remaining calls the run waits for the quota reset
	// instead of starting.
	rateLimitFloor = 5
)

// CheckRateLimit inspects the remaining API quota and, if it is nearly
// exhausted, blocks until the reset timestamp before returning. Any
// failure here is returned to the caller: nothing has been mutated yet,
// so aborting the run is the safe response.
func (c *Client) CheckRateLimit(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/rate_limit", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(b))
	}

	var rl rateLimitResponse
	if err := json.NewDecoder(resp.Body).Decode(&rl); err != nil {
		return fmt.Errorf("decode rate limit: %w", err)
	}

	log.Infof("API quota remaining: %d", rl.Rate.Remaining)

	if rl.Rate.Remaining < rateLimitFloor {
		wait := time.Duration(rl.Rate.Reset-c.now().Unix()) * time.Second
		if wait < 0 {
			wait = 0
		}
		log.Warnf("Rate limit low, sleeping %s until reset", wait)
		c.sleep(wait)
	}
	return nil
}

// ListFollowers returns the logins of everyone following the
// authenticated user.
func (c *Client) ListFollowers(ctx context.Context) map[string]struct{} {
	log.Info("Fetching followers...")
	return c.fetchAll(ctx, "/user/followers")
}

// ListFollowing returns the logins the authenticated user follows.
func (c *Client) ListFollowing(ctx context.Context) map[string]struct{} {
	log.Info("Fetching following...")
	return c.fetchAll(ctx, "/user/following")
}

// fetchAll walks a paginated user-list endpoint page by page until an
// empty page. A failed page is logged and ends the walk; whatever was
// accumulated so far comes back, so one bad page does not sink the
// whole run. Callers must treat the result as best-effort.
func (c *Client) fetchAll(ctx context.Context, endpoint string) map[string]struct{} {
	users := make(map[string]struct{})

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))

		resp, err := c.doRequest(ctx, http.MethodGet, endpoint, params)
		if err != nil {
			log.Errorf("Failed to fetch %s page %d: %v", endpoint, page, err)
			return users
		}

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			log.Errorf("Failed to fetch %s page %d: status %d: %s", endpoint, page, resp.StatusCode, string(b))
			return users
		}

		var list []User
		err = json.NewDecoder(resp.Body).Decode(&list)
		resp.Body.Close()
		if err != nil {
			log.Errorf("Failed to decode %s page %d: %v", endpoint, page, err)
			return users
		}

		if len(list) == 0 {
			return users
		}
		for _, u := range list {
			users[u.Login] = struct{}{}
		}
	}
}

// Follow asks GitHub to follow login and reports the response status.
// 204 means the follow took effect (the endpoint is idempotent, so
// "already following" also answers 204).
func (c *Client) Follow(ctx context.Context, login string) (int, error) {
	return c.mutate(ctx, http.MethodPut, "/user/following/"+url.PathEscape(login))
}

// Unfollow mirrors Follow for the unfollow direction.
func (c *Client) Unfollow(ctx context.Context, login string) (int, error) {
	return c.mutate(ctx, http.MethodDelete, "/user/following/"+url.PathEscape(login))
}

func (c *Client) mutate(ctx context.Context, method, endpoint string) (int, error) {
	resp, err := c.doRequest(ctx, method, endpoint, nil)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}
