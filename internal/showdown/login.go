package showdown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/tbran/voltbot/internal/rank"
)

// Login failure classes. Rejected and malformed responses are permanent;
// overload and error pages clear up on their own and are worth retrying
// after a delay.
var (
	ErrLoginRejected    = errors.New("login rejected")
	ErrLoginMalformed   = errors.New("malformed login response")
	ErrLoginOverloaded  = errors.New("login server under heavy load")
	ErrLoginServerError = errors.New("login server returned an error page")
)

// IsRetryableLoginError reports whether a later attempt with the same
// credentials can succeed.
func IsRetryableLoginError(err error) bool {
	return errors.Is(err, ErrLoginOverloaded) || errors.Is(err, ErrLoginServerError)
}

// LoginClient talks to the action endpoint that issues login assertions.
type LoginClient struct {
	actionURL string
	http      *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type LoginOption func(*LoginClient)

func WithLoginTimeout(d time.Duration) LoginOption {
	return func(c *LoginClient) { c.defaultTimeout = d }
}

func WithLoginRetry(max int) LoginOption {
	return func(c *LoginClient) { c.retryMax = max }
}

func NewLoginClient(actionURL string, opts ...LoginOption) *LoginClient {
	c := &LoginClient{
		actionURL:      actionURL,
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 4},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAssertion exchanges a challenge for a login assertion. Without a
// password it asks for a plain assertion; with one it performs the full
// login action.
func (c *LoginClient) FetchAssertion(ctx context.Context, nick, pass, keyID, challenge string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	if pass == "" {
		query := url.Values{}
		query.Set("act", "getassertion")
		query.Set("userid", rank.ToID(nick))
		query.Set("challengekeyid", keyID)
		query.Set("challenge", challenge)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.SetRequestURI(c.actionURL + "?" + query.Encode())
	} else {
		form := url.Values{}
		form.Set("act", "login")
		form.Set("name", nick)
		form.Set("pass", pass)
		form.Set("challengekeyid", keyID)
		form.Set("challenge", challenge)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.SetRequestURI(c.actionURL)
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBodyString(form.Encode())
	}

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("login request failed: %w", err)
			if sleepErr := sleepWithContext(ctx, loginBackoff(attempt)); sleepErr != nil {
				return "", lastErr
			}
			continue
		}
		body := make([]byte, len(resp.Body()))
		copy(body, resp.Body())
		return parseLoginResponse(body)
	}
	return "", lastErr
}

type loginResult struct {
	ActionSuccess bool   `json:"actionsuccess"`
	Assertion     string `json:"assertion"`
}

// parseLoginResponse classifies the action endpoint's reply and extracts
// the assertion. The endpoint speaks three dialects: a bare assertion, a
// ]-prefixed JSON object, and a handful of ad hoc failure bodies.
func parseLoginResponse(body []byte) (string, error) {
	data := string(body)
	if data == ";" {
		return "", fmt.Errorf("%w: nick is registered and the password was wrong or missing", ErrLoginRejected)
	}
	if strings.Contains(data, "heavy load") {
		return "", ErrLoginOverloaded
	}
	if strings.HasPrefix(data, "<!DOCTYPE html>") {
		return "", ErrLoginServerError
	}
	if len(data) < 50 {
		return "", fmt.Errorf("%w: %q", ErrLoginMalformed, data)
	}
	if data[0] == ']' {
		var result loginResult
		if err := json.Unmarshal([]byte(data[1:]), &result); err != nil {
			return "", fmt.Errorf("%w: %v", ErrLoginMalformed, err)
		}
		if !result.ActionSuccess || result.Assertion == "" {
			return "", fmt.Errorf("%w: action was not successful", ErrLoginRejected)
		}
		return result.Assertion, nil
	}
	return data, nil
}

func (c *LoginClient) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func loginBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}
