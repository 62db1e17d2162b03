package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bushboy/bookingswap-sub023/pkg/circuitbreaker"
	"github.com/sony/gobreaker"
)

const defaultRequestTimeout = 30 * time.Second

// StatusError is returned for any response with a non-2xx status code.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// IsStatus returns whether err is a *StatusError with the given status code.
func IsStatus(err error, statusCode int) bool {
	e, ok := err.(*StatusError)
	return ok && e.StatusCode == statusCode
}

// JSONClient makes JSON requests to a remote service. All requests go
// through a circuit breaker that counts transport errors and 5xx responses
// as failures.
type JSONClient struct {
	baseUrl string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	header  map[string]string
}

// NewJSONClient returns a client for the service at baseUrl. A zero timeout
// uses the default of 30 seconds.
func NewJSONClient(
	name, baseUrl string, timeout time.Duration, header map[string]string,
) *JSONClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &JSONClient{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		client:  &http.Client{Timeout: timeout},
		cb:      circuitbreaker.NewCircuitBreaker(name),
		header:  header,
	}
}

// Get decodes the body returned by the given path into out.
func (c *JSONClient) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends in as the JSON body and decodes the response into out, if not
// nil.
func (c *JSONClient) Post(
	ctx context.Context, path string, in, out interface{},
) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

// Do makes the request and decodes the response body into out, if not nil.
func (c *JSONClient) Do(
	ctx context.Context, method, path string, in, out interface{},
) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.header {
		req.Header.Set(key, value)
	}

	res, err := c.cb.Execute(func() (interface{}, error) {
		status, resBody, err := c.doRequest(req)
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, &StatusError{status, resBody}
		}
		return &response{status, resBody}, nil
	})
	if err != nil {
		return err
	}

	rs := res.(*response)
	if rs.status < 200 || rs.status >= 300 {
		return &StatusError{rs.status, rs.body}
	}
	if out == nil || len(rs.body) <= 0 {
		return nil
	}
	return json.Unmarshal([]byte(rs.body), out)
}

type response struct {
	status int
	body   string
}

func (c *JSONClient) doRequest(req *http.Request) (int, string, error) {
	rs, err := c.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return -1, "", err
	}
	return rs.StatusCode, strings.TrimSpace(string(bodyBytes)), nil
}
