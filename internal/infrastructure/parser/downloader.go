package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"PBNPublisher/internal/ports"
)

// Downloader fetches remotely hosted workbooks for ingestion.
type Downloader struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

var _ ports.Downloader = (*Downloader)(nil)

// NewDownloader wires an HTTP client; maxBytes caps the accepted body size.
func NewDownloader(client *http.Client, userAgent string, maxBytes int64) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Downloader{client: client, userAgent: userAgent, maxBytes: maxBytes}
}

// Download returns the body of a GET on rawURL.
func (d *Downloader) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request workbook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if d.maxBytes > 0 {
		body = io.LimitReader(resp.Body, d.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("workbook exceeds %d bytes", d.maxBytes)
	}
	return data, nil
}
