package lichess

import (
	"context"
	"net/http"
	"net/url"
)

func (lc *LichessClient) AcceptChallenge(ctx context.Context, id string) error {
	return lc.doOkRequest(ctx, http.MethodPost, "/api/challenge/"+url.PathEscape(id)+"/accept", nil)
}

// Reason is one of the lichess decline reasons, e.g. "variant" or "generic".
func (lc *LichessClient) DeclineChallenge(ctx context.Context, id string, reason string) error {
	params := url.Values{}
	if reason != "" {
		params.Set("reason", reason)
	}
	return lc.doOkRequest(ctx, http.MethodPost, "/api/challenge/"+url.PathEscape(id)+"/decline", params)
}
