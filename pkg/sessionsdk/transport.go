package sessionsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// refreshCall is a single in-flight refresh shared by every request that hit
// a 401 while it runs. Waiters block on done and read err afterwards.
type refreshCall struct {
	done chan struct{}
	err  error
}

// refreshTokens performs a token refresh, coalescing concurrent callers into
// one network request. Exactly one POST /auth/refresh is issued no matter how
// many requests observed the expired token; the rest wait for its outcome.
func (s *SessionService) refreshTokens(ctx context.Context) error {
	s.refreshMu.Lock()
	if call := s.inflight; call != nil {
		s.refreshMu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	call := &refreshCall{done: make(chan struct{})}
	s.inflight = call
	s.refreshMu.Unlock()

	call.err = s.client.postJSON(ctx, "/auth/refresh", nil, nil)
	if call.err != nil {
		var authErr *AuthError
		if errors.As(call.err, &authErr) && authErr.StatusCode == http.StatusUnauthorized {
			call.err = ErrRefreshFailed
		}
	}

	s.refreshMu.Lock()
	s.inflight = nil
	s.refreshMu.Unlock()
	close(call.done)

	return call.err
}

// DoProtected performs an HTTP request that requires an authenticated
// session. On a 401 it refreshes the tokens (coalesced with any concurrent
// refresh) and replays the request exactly once. A 401 on the replay is
// terminal: the session is torn down and ErrNotAuthenticated returned.
//
// The request body, if any, is buffered so the replay carries it again.
// Callers own the returned response body.
func (s *SessionService) DoProtected(ctx context.Context, req *http.Request) (*http.Response, error) {
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to buffer request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}
	req = req.WithContext(ctx)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, ErrUpstreamUnreachable.WithDetail(err.Error())
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Without a refresh token the 401 cannot be recovered from; surface it.
	if !s.client.hasRefreshCookie() {
		return resp, nil
	}
	resp.Body.Close()

	if err := s.refreshTokens(ctx); err != nil {
		s.setAnonymous()
		return nil, err
	}

	retry := req.Clone(ctx)
	// Do preceded the clone and stamped the jar's cookies onto the header.
	// The jar appends rather than replaces, and servers read the first
	// match, so the stale token must go before the retry is sent.
	retry.Header.Del("Cookie")
	if bodyBytes != nil {
		retry.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	resp, err = s.client.HTTPClient.Do(retry)
	if err != nil {
		return nil, ErrUpstreamUnreachable.WithDetail(err.Error())
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		s.setAnonymous()
		return nil, ErrNotAuthenticated
	}
	return resp, nil
}

// doProtectedJSON wraps DoProtected with JSON encoding and decoding plus the
// shared error envelope parsing.
func (s *SessionService) doProtectedJSON(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.client.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.DoProtected(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := parseErrorResponse(resp, respBody); err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Get performs a protected GET against the gateway and decodes the response.
func (s *SessionService) Get(ctx context.Context, path string, result any) error {
	return s.doProtectedJSON(ctx, http.MethodGet, path, nil, result)
}

// Post performs a protected POST against the gateway with a JSON body.
func (s *SessionService) Post(ctx context.Context, path string, body, result any) error {
	return s.doProtectedJSON(ctx, http.MethodPost, path, body, result)
}
