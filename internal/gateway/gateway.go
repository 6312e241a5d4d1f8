// Package gateway is the single path from the back-office to the Terra Prime
// REST backend. It attaches the session bearer token, serializes bodies and
// turns non-2xx answers into errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// Credentials supplies the bearer token for a call.
type Credentials interface {
	Token() string
}

// File is one part of a multipart upload.
type File struct {
	Param string
	Name  string
	Data  []byte
}

// Request describes a backend call. Files switch the body to multipart and
// Form carries its plain fields; Body is ignored in that case.
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    any
	Form    map[string]string
	Files   []File
	// Timeout overrides the client default for this call.
	Timeout time.Duration
}

// Response is the raw backend answer.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the backend.
type Client struct {
	rc       *resty.Client
	timeout  time.Duration
	logger   *zap.Logger
	validate *validator.Validate
}

// New creates a Client.
func New(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")

	return &Client{
		rc:       rc,
		timeout:  timeout,
		logger:   logger,
		validate: validator.New(),
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.rc.Close()
}

// Send performs req and returns the backend answer whatever its status.
func (c *Client) Send(ctx context.Context, creds Credentials, req Request) (*Response, error) {
	if creds == nil || creds.Token() == "" {
		return nil, ErrUnauthorized
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := c.rc.R().
		SetContext(callCtx).
		SetAuthToken(creds.Token())

	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}

	switch {
	case len(req.Files) > 0:
		if len(req.Form) > 0 {
			r.SetMultipartFormData(req.Form)
		}
		for _, f := range req.Files {
			r.SetFileReader(f.Param, f.Name, bytes.NewReader(f.Data))
		}
	case req.Body != nil:
		if _, isReader := req.Body.(io.Reader); !isReader {
			r.SetHeader("Content-Type", "application/json")
		}
		r.SetBody(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	resp, err := r.Execute(method, req.Path)
	elapsed := time.Since(start)
	if err != nil {
		observeBackendCall(method, "error", elapsed)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			c.logger.Warn("backend call timed out",
				zap.String("method", method),
				zap.String("path", req.Path),
				zap.Duration("timeout", timeout),
			)
			return nil, fmt.Errorf("%w: %s %s after %s", ErrTimeout, method, req.Path, timeout)
		}
		c.logger.Error("backend call failed",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("backend request %s %s: %w", method, req.Path, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnreachable, method, req.Path, err)
	}

	observeBackendCall(method, strconv.Itoa(resp.StatusCode()), elapsed)
	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", elapsed),
	)

	return &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Header:     resp.Header(),
		Body:       resp.Bytes(),
	}, nil
}

// Do performs req and returns the body of a 2xx answer. Any other status is
// returned as *Error.
func (c *Client) Do(ctx context.Context, creds Credentials, req Request) ([]byte, error) {
	resp, err := c.Send(ctx, creds, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := newError(resp.StatusCode, resp.Status, resp.Body)
		c.logger.Warn("backend returned error status",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", gwErr.Message),
		)
		return nil, gwErr
	}
	return resp.Body, nil
}

// Call performs req and decodes the answer into T, validating it against the
// `validate` tags of T.
func Call[T any](ctx context.Context, c *Client, creds Credentials, req Request) (T, error) {
	var out T
	body, err := c.Do(ctx, creds, req)
	if err != nil {
		return out, err
	}
	if err := c.decode(body, &out); err != nil {
		c.logger.Error("backend response rejected",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return out, err
	}
	return out, nil
}

// Exec performs req and discards the answer body.
func Exec(ctx context.Context, c *Client, creds Credentials, req Request) error {
	_, err := c.Do(ctx, creds, req)
	return err
}

func (c *Client) decode(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	if err := c.validate.Struct(v.Interface()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
