package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/servicehub/marketplace-client/internal/core/domain"
)

const (
	maxResponseBytes = 1 << 20
	defaultTimeout   = 15 * time.Second
)

// Field is one text part of a multipart body. Order is preserved.
type Field struct {
	Name  string
	Value string
}

// FilePart is one file part of a multipart body.
type FilePart struct {
	Field      string
	Attachment *domain.Attachment
}

// Client is the REST wrapper for the marketplace API. Every error it
// returns is a *domain.APIError.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a client whose requests pass through rt.
func NewClient(baseURL string, rt http.RoundTripper, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Transport: rt, Timeout: timeout},
		log:     log,
	}, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// JSON sends in (if non-nil) as a JSON body and decodes the response into
// out (if non-nil).
func (c *Client) JSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &domain.APIError{Message: fmt.Sprintf("encode request: %v", err), Kind: domain.ErrValidationRejected}
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

// Multipart sends fields and files as multipart/form-data.
func (c *Client) Multipart(ctx context.Context, method, path string, fields []Field, files []FilePart, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return &domain.APIError{Message: fmt.Sprintf("encode field %s: %v", f.Name, err), Kind: domain.ErrValidationRejected}
		}
	}
	for _, f := range files {
		if f.Attachment == nil {
			continue
		}
		if err := writeFile(w, f); err != nil {
			return &domain.APIError{Message: fmt.Sprintf("encode file %s: %v", f.Field, err), Kind: domain.ErrValidationRejected}
		}
	}
	if err := w.Close(); err != nil {
		return &domain.APIError{Message: fmt.Sprintf("encode multipart: %v", err), Kind: domain.ErrValidationRejected}
	}

	return c.do(ctx, method, path, &buf, w.FormDataContentType(), out)
}

func writeFile(w *multipart.Writer, f FilePart) error {
	contentType := f.Attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Attachment.Filename))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Attachment.Data)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return &domain.APIError{Message: err.Error(), Kind: domain.ErrValidationRejected}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := Normalize(nil, nil, err)
		c.log.Warn().Str("method", method).Str("path", path).Str("error", apiErr.Message).Msg("request failed")
		return apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Normalize(resp, nil, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := Normalize(resp, raw, nil)
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error", apiErr.Message).
			Msg("request rejected")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.APIError{
			Message:  "Invalid response from server",
			Kind:     domain.ErrServerFault,
			Status:   resp.StatusCode,
			Response: resp,
			RawBody:  raw,
		}
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return u.String()
}
