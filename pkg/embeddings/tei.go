package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sanonone/graphoracle/pkg/metrics"
	"github.com/sanonone/graphoracle/pkg/pooling"
)

// TEI implements the Encoder interface using the /embed_all route of a
// text-embeddings-inference server, which returns one vector per token.
type TEI struct {
	URL    string
	Client *http.Client
}

var _ Encoder = (*TEI)(nil)

// NewTEI creates an encoder for the TEI server at url. A zero timeout means 60s.
func NewTEI(url string, timeout time.Duration) *TEI {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TEI{
		URL:    strings.TrimSuffix(url, "/"),
		Client: &http.Client{Timeout: timeout},
	}
}

// Name returns the backend type.
func (e *TEI) Name() string { return TypeTEI }

// Encode tokenizes and runs the batch server side. Inputs longer than the
// model window are truncated; shorter ones are padded here and masked out.
func (e *TEI) Encode(ctx context.Context, texts []string) (*pooling.Bank, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	payload := map[string]interface{}{
		"inputs":   texts,
		"truncate": true,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL+"/embed_all", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tei request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveEncode(TypeTEI, start)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tei returned status %s: %s", resp.Status, string(body))
	}

	// [batch][token][hidden]
	var states [][][]float32
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return nil, fmt.Errorf("failed to decode tei response: %w", err)
	}
	if len(states) != len(texts) {
		return nil, fmt.Errorf("tei returned %d sequences for %d inputs", len(states), len(texts))
	}

	return pooling.FromSequences(states)
}
