package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/killallgit/ada/pkg/provider"
)

const (
	readBufferSize = 4096
	errorBodyLimit = 512
)

// streamPost sends body as JSON and emits every read from the response body
// as it arrives. Chunk boundaries are whatever the network delivers.
func streamPost(ctx context.Context, client *http.Client, p provider.Provider, url string, headers map[string]string, body any, emit Emitter) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: failed to encode request: %w", p, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", p, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Debug("dispatching request", "provider", p, "url", url, "bytes", len(payload))

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &StatusError{Provider: p, Code: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	buf := make([]byte, readBufferSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			emit(string(buf[:n]))
		}
		if errors.Is(err, io.EOF) {
			log.Debug("response body ended", "provider", p)
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: failed to read response: %w", p, err)
		}
	}
}
