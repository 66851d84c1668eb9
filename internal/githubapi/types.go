package githubapi

// User is the subset of the GitHub user object this tool reads. The
// follower/following list endpoints return full user objects; only the
// login matters here.
type User struct {
	Login string `json:"login"`
}

type rateLimitResponse struct {
	Rate struct {
		Remaining int   `json:"remaining"`
		Reset     int64 `json:"reset"`
	} `json:"rate"`
}
