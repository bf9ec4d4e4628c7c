package common

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPResponse carries a provider reply back to the adapter: the HTTP status,
// the body verbatim (persisted for audit) and, when the body is a JSON
// object, its decoded form.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
	JSON       map[string]interface{}
}

// PostJSON sends a JSON POST and returns the response regardless of HTTP
// status; providers report their own result codes in the body. A nil return
// with a non-nil error means no usable response was received at all.
func PostJSON(ctx context.Context, rawURL string, payload interface{}, headers map[string]string, timeout time.Duration) (*HTTPResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return do(req, timeout)
}

// Get sends a GET with the given query parameters appended to the URL.
func Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string, timeout time.Duration) (*HTTPResponse, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return do(req, timeout)
}

func do(req *http.Request, timeout time.Duration) (*HTTPResponse, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	out := &HTTPResponse{StatusCode: resp.StatusCode, Body: body}
	if len(body) > 0 {
		var parsed map[string]interface{}
		if err := json.Unmarshal(body, &parsed); err == nil {
			out.JSON = parsed
		}
	}
	return out, nil
}
