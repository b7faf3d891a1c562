// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/pdiddy/biotextgen/internal/httputil"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// HTTPRecognizer calls a remote named-entity service, such as a scispaCy
// sidecar, that accepts {"text": ...} and answers
// {"entities": [{"text", "start", "end"}]}.
type HTTPRecognizer struct {
	Endpoint  string
	Token     string
	UserAgent string
	Client    *httputil.Client
}

type nerRequest struct {
	Text string `json:"text"`
}

type nerResponse struct {
	Entities []types.Mention `json:"entities"`
}

// Recognize posts text to the service and returns its mentions.
func (h *HTTPRecognizer) Recognize(ctx context.Context, text string) ([]types.Mention, error) {
	body, err := json.Marshal(nerRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = httputil.NewClient(nil, 0, 0, nil)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("calling NER service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("NER service returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var nr nerResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("decoding NER response: %w", err)
	}
	return nr.Entities, nil
}
