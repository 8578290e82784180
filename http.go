package sexpfmt

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPFormatRequest configures HTTPFormat.
type HTTPFormatRequest struct {
	URL    string
	Client *http.Client
	Writer io.Writer
	Width  int
}

// HTTPFormat fetches an S-expression document over HTTP(S) and writes it
// formatted.
func HTTPFormat(ctx context.Context, req HTTPFormatRequest) error {
	if req.URL == "" {
		return fmt.Errorf("format http: URL is required")
	}
	if req.Writer == nil {
		return fmt.Errorf("format http: Writer is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	client := req.Client
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return fmt.Errorf("format http: build request: %w", err)
	}
	if httpReq.URL.Scheme != "http" && httpReq.URL.Scheme != "https" {
		return fmt.Errorf("format http: unsupported scheme %q", httpReq.URL.Scheme)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("format http: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("format http: status %s", resp.Status)
	}
	return Format(FormatRequest{
		Reader: resp.Body,
		Writer: req.Writer,
		Width:  req.Width,
	})
}
