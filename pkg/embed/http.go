package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 60 * time.Second

// HTTPOptions configure the HTTP embedding provider.
type HTTPOptions struct {
	Endpoint string
	Model    string
	Device   string
	Timeout  time.Duration
}

// HTTP calls an Ollama-compatible embeddings endpoint. The vector length
// is probed once at construction and enforced on every response.
type HTTP struct {
	opts   HTTPOptions
	client *http.Client
	dim    int
}

// NewHTTP validates the configuration and probes the endpoint once to
// learn the model's vector length. A failed probe is returned to the
// caller; the provider is never retried per item.
func NewHTTP(ctx context.Context, opts HTTPOptions) (*HTTP, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("embedding endpoint not configured")
	}
	if opts.Model == "" {
		return nil, errors.New("embedding model not configured")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	h := &HTTP{opts: opts, client: &http.Client{Timeout: timeout}}

	vecs, err := h.post(ctx, []string{"dimension probe"})
	if err != nil {
		return nil, fmt.Errorf("probe embedding endpoint: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("probe embedding endpoint: %w", ErrShapeMismatch)
	}
	h.dim = len(vecs[0])
	return h, nil
}

// Dimension returns the probed vector length.
func (h *HTTP) Dimension() int {
	return h.dim
}

// Encode embeds the batch in one request.
func (h *HTTP) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := h.post(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d texts, got %d vectors", ErrShapeMismatch, len(texts), len(vecs))
	}
	for _, v := range vecs {
		if len(v) != h.dim {
			return nil, fmt.Errorf("%w: want dimension %d, got %d", ErrShapeMismatch, h.dim, len(v))
		}
	}
	return vecs, nil
}

type embedRequest struct {
	Model  string   `json:"model"`
	Input  []string `json:"input"`
	Device string   `json:"device,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (h *HTTP) post(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: h.opts.Model, Input: texts, Device: h.opts.Device})
	if err != nil {
		return nil, fmt.Errorf("encode embedding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding endpoint returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	return decoded.Embeddings, nil
}
