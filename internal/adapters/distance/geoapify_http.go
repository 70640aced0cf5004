package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (g *GeoapifyProvider) newRequest(
	ctx context.Context,
	endpoint string,
	params url.Values,
) (*http.Request, error) {
	params.Set("apiKey", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", g.redact(err))
	}

	req.Header.Set("Accept", "application/json")

	return req, nil
}

// do executes req and turns any >= 300 status into *httpStatusError.
// Returned errors never carry the api key.
func (g *GeoapifyProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := g.session.Do(req)
	if err != nil {
		return nil, g.redact(err)
	}
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: g.redactString(strings.TrimSpace(string(b))),
		}
	}
	return resp, nil
}

// redact strips the credential from transport errors, which embed the request URL.
func (g *GeoapifyProvider) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: g.redactString(ue.URL), Err: ue.Err}
	}
	return errors.New(g.redactString(err.Error()))
}

func (g *GeoapifyProvider) redactString(s string) string {
	if g.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, g.apiKey, "REDACTED")
}
