package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// request describes one call to the account API.
type request struct {
	method string
	path   string
	query  url.Values
	form   url.Values

	// basic sends the client credentials. bearer, when set, wins over it.
	basic  bool
	bearer string

	// want is the expected status; zero means 200.
	want int
}

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// send performs r and decodes a JSON body into out when out is non-nil.
// Any other status than r.want comes back as an *OAuth2Error.
func (c *SDKClient) send(ctx context.Context, r request, out any) error {
	target := c.url(r.path)
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.form != nil {
		body = strings.NewReader(r.form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("authsdk: build %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	switch {
	case r.bearer != "":
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	case r.basic:
		req.SetBasicAuth(c.ClientID, c.ClientSecret)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("authsdk: %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("authsdk: read %s response: %w", r.path, err)
	}

	want := r.want
	if want == 0 {
		want = http.StatusOK
	}
	if resp.StatusCode != want {
		return parseErrorResponse(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("authsdk: decode %s response: %w", r.path, err)
	}
	return nil
}

// send performs r with the session's access token, refreshing it first when
// it is about to expire.
func (s *Session) send(ctx context.Context, r request, out any) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	r.bearer = token
	return s.client.send(ctx, r, out)
}
