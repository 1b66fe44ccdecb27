package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteScorer delegates inference to an HTTP sidecar that hosts the
// trained pipeline in its native runtime.
type RemoteScorer struct {
	baseURL string
	client  *http.Client
	info    ModelInfo
}

type remoteMetadata struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
}

type predictRequest struct {
	Instances []FeatureRecord `json:"instances"`
}

type predictResponse struct {
	Probabilities [][]float64 `json:"probabilities"`
}

// NewRemoteScorer fetches the sidecar metadata and checks its feature
// columns before returning.
func NewRemoteScorer(ctx context.Context, baseURL string, timeout time.Duration) (*RemoteScorer, error) {
	if baseURL == "" {
		return nil, ErrRemoteURLRequired
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &RemoteScorer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}

	var meta remoteMetadata
	if err := s.do(ctx, http.MethodGet, "/metadata", nil, &meta); err != nil {
		return nil, fmt.Errorf("fetch model metadata: %w", err)
	}
	if err := checkFeatureSet(meta.Features); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleSchema, err)
	}
	s.info = ModelInfo{
		Type:     TypeRemote,
		Name:     meta.Name,
		Version:  meta.Version,
		Source:   s.baseURL,
		Features: meta.Features,
	}
	return s, nil
}

func (s *RemoteScorer) PredictProba(ctx context.Context, record FeatureRecord) (float64, error) {
	var resp predictResponse
	req := predictRequest{Instances: []FeatureRecord{record}}
	if err := s.do(ctx, http.MethodPost, "/predict_proba", req, &resp); err != nil {
		return 0, err
	}
	if len(resp.Probabilities) != 1 || len(resp.Probabilities[0]) != 2 {
		return 0, fmt.Errorf("unexpected probabilities shape from %s", s.baseURL)
	}
	return resp.Probabilities[0][1], nil
}

func (s *RemoteScorer) Info() ModelInfo { return s.info }

func (s *RemoteScorer) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *RemoteScorer) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("inference service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
