package collector

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a rejection body ends up in the error
const maxErrorBody = 512

// LineWriter posts line protocol text to the store's write endpoint
type LineWriter struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *zap.SugaredLogger
}

// writeEndpoint builds the v2 write URL with second precision
func writeEndpoint(config StoreConfig) (string, error) {
	u, err := url.Parse(config.URL)
	if err != nil {
		return "", fmt.Errorf("LineWriter: invalid store url: %v", err)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v2/write"
	q := url.Values{}
	q.Set("org", config.Org)
	q.Set("bucket", config.Bucket)
	q.Set("precision", "s")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// WriteLine sends a single line. A non-2xx response yields a StatusError,
// anything else is a transport failure.
func (w *LineWriter) WriteLine(ctx context.Context, line string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, strings.NewReader(line))
	if err != nil {
		return fmt.Errorf("LineWriter: %v", err)
	}
	req.Header.Set("Authorization", "Token "+w.token)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("LineWriter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	_, _ = io.Copy(ioutil.Discard, resp.Body)

	return nil
}

// NewLineWriter creates a new LineWriter. The client has no timeout; a stuck
// store holds the calling connection handler.
func NewLineWriter(config StoreConfig, client *http.Client, logger *zap.SugaredLogger) (*LineWriter, error) {
	endpoint, err := writeEndpoint(config)
	if err != nil {
		return nil, err
	}

	if client == nil {
		client = &http.Client{}
	}

	logger.Debugf("LineWriter: writing to %s", endpoint)

	return &LineWriter{
		endpoint: endpoint,
		token:    config.Token,
		client:   client,
		logger:   logger,
	}, nil
}
