package lichess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultHost = "https://lichess.org/"

var ErrRateLimited = errors.New("api: request was rate limited on each attempt")

// Error is a non-success reply from the API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

type LichessClient struct {
	apiKey string
	host   string
	client *http.Client
	log    zerolog.Logger

	rateLimitCooloff time.Duration
	rateLimitRetries int

	rateLimitMu   sync.Mutex
	rateLimitTime time.Time
}

type OptionT func(*LichessClient)

// WithHost points the client at another server, such as a test server.
func WithHost(host string) OptionT {
	return func(lc *LichessClient) {
		lc.host = strings.TrimRight(host, "/") + "/"
	}
}

func WithRateLimit(cooloff time.Duration, retries int) OptionT {
	return func(lc *LichessClient) {
		lc.rateLimitCooloff = cooloff
		lc.rateLimitRetries = retries
	}
}

// The API key may be empty for public endpoints such as puzzles.
func NewLichessClient(apiKey string, logger zerolog.Logger, opts ...OptionT) *LichessClient {
	lc := &LichessClient{
		apiKey: apiKey,
		host:   DefaultHost,
		client: &http.Client{
			CheckRedirect: redirectPolicyFunc(apiKey),
		},
		log:              logger.With().Str("component", "lichess").Logger(),
		rateLimitCooloff: time.Minute,
		rateLimitRetries: 4,
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// Redirects remove the authorization header and by default redirect using a
// GET request. Lichess has privately moved its API so we need to handle these
// two cases directly.
func redirectPolicyFunc(apiKey string) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}
		req.Method = via[0].Method
		return nil
	}
}

func (lc *LichessClient) newRequest(ctx context.Context, method, apiUrl string, params url.Values) (*http.Request, error) {
	var body io.Reader
	if params != nil {
		body = strings.NewReader(params.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, lc.host+strings.Trim(apiUrl, "/"), body)
	if err != nil {
		return nil, err
	}

	if params != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if lc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+lc.apiKey)
	}
	return req, nil
}

type requestError struct {
	Error string
}

// doRequest builds and sends a fresh request per attempt, since a request
// body cannot be replayed. The caller closes the response body.
func (lc *LichessClient) doRequest(ctx context.Context, method, apiUrl string, params url.Values) (*http.Response, error) {
	for attempts := 0; attempts < lc.rateLimitRetries; attempts++ {
		if cooloff := lc.getRateLimitCooloff(); cooloff > 0 {
			lc.log.Warn().Dur("cooloff", cooloff).Str("url", apiUrl).Msg("rate limited, sleeping")
			select {
			case <-time.After(cooloff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := lc.newRequest(ctx, method, apiUrl, params)
		if err != nil {
			return nil, err
		}
		res, err := lc.client.Do(req)
		if err != nil {
			return nil, err
		}

		// We were rate limited.
		if res.StatusCode == http.StatusTooManyRequests {
			res.Body.Close()
			lc.setRateLimitTime(time.Now())
			continue
		}

		// An error occurred.
		if res.StatusCode != http.StatusOK {
			defer res.Body.Close()
			bytes, err := io.ReadAll(res.Body)
			if err != nil {
				return nil, err
			}
			lc.log.Debug().Int("status", res.StatusCode).Str("url", apiUrl).Bytes("body", bytes).Msg("request failed")

			lichessError := requestError{}
			if json.Unmarshal(bytes, &lichessError) != nil || lichessError.Error == "" {
				lichessError.Error = http.StatusText(res.StatusCode)
			}
			return nil, &Error{StatusCode: res.StatusCode, Message: lichessError.Error}
		}

		return res, nil
	}

	return nil, ErrRateLimited
}

func (lc *LichessClient) doJSONRequest(ctx context.Context, method, apiUrl string, params url.Values, buffer interface{}) error {
	res, err := lc.doRequest(ctx, method, apiUrl, params)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return json.NewDecoder(res.Body).Decode(buffer)
}

// Response carries an ok flag on success.
func (lc *LichessClient) doOkRequest(ctx context.Context, method, apiUrl string, params url.Values) error {
	var res struct {
		Ok bool
	}
	if err := lc.doJSONRequest(ctx, method, apiUrl, params, &res); err != nil {
		return err
	}
	if !res.Ok {
		return &Error{StatusCode: http.StatusOK, Message: "request not acknowledged"}
	}
	return nil
}

// streamNDJSON decodes newline-delimited JSON values onto a channel until the
// body ends, decoding fails or ctx is cancelled. The channel is then closed.
func streamNDJSON[T any](ctx context.Context, lc *LichessClient, apiUrl string) (<-chan T, error) {
	res, err := lc.doRequest(ctx, http.MethodGet, apiUrl, nil)
	if err != nil {
		return nil, err
	}

	ch := make(chan T)
	go func() {
		defer res.Body.Close()
		defer close(ch)
		decoder := json.NewDecoder(res.Body)

		for decoder.More() {
			var msg T
			if err := decoder.Decode(&msg); err != nil {
				if ctx.Err() == nil {
					lc.log.Error().Err(err).Str("url", apiUrl).Msg("stream decode failed")
				}
				return
			}

			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (lc *LichessClient) getRateLimitTime() time.Time {
	lc.rateLimitMu.Lock()
	defer lc.rateLimitMu.Unlock()

	return lc.rateLimitTime
}

func (lc *LichessClient) setRateLimitTime(rateLimitTime time.Time) {
	lc.rateLimitMu.Lock()
	defer lc.rateLimitMu.Unlock()

	lc.rateLimitTime = rateLimitTime
}

// Time left to wait after the last 429, or 0.
func (lc *LichessClient) getRateLimitCooloff() time.Duration {
	rateLimitTime := lc.getRateLimitTime()
	if rateLimitTime.IsZero() {
		return 0
	}

	diff := time.Since(rateLimitTime)
	if diff < lc.rateLimitCooloff {
		return lc.rateLimitCooloff - diff
	}

	return 0
}
