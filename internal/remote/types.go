package remote

import "github.com/theirongolddev/subtrack/internal/model"

// listResponse is the body of GET /sub and the echo of POST /sub/sync.
type listResponse struct {
	Subscriptions []model.Subscription `json:"subscriptions"`
}

// syncRequest is the body of POST /sub/sync.
type syncRequest struct {
	Subscriptions []model.Record `json:"subscriptions"`
}

// tokenResponse is the body of POST /sub/new_token.
type tokenResponse struct {
	Token string `json:"token"`
}
