package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"medlit-rag-be/pkg/rerank"
	"medlit-rag-be/pkg/store"
)

// JinaReranker scores (query, document) pairs via the Jina rerank API.
type JinaReranker struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ rerank.Reranker = &JinaReranker{}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewJinaReranker(apiKey, model string) (*JinaReranker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("jina reranker requires an api key")
	}
	if model == "" {
		model = "jina-reranker-v2-base-multilingual"
	}
	return &JinaReranker{
		apiKey:  apiKey,
		baseURL: "https://api.jina.ai/v1/rerank",
		model:   model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Rerank scores every candidate against the query and returns the full set
// sorted by descending relevance score. No truncation happens here; callers
// decide how many results to keep.
func (r *JinaReranker) Rerank(ctx context.Context, query string, candidates []store.Chunk) ([]store.Chunk, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Content
	}

	reqBody := rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
		TopN:      len(documents),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.apiKey))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jina rerank api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var rrResp rerankResponse
	if err := json.Unmarshal(bodyBytes, &rrResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if rrResp.Error != nil {
		return nil, fmt.Errorf("jina rerank api returned error: %s", rrResp.Error.Message)
	}

	reranked := make([]store.Chunk, 0, len(rrResp.Results))
	for _, res := range rrResp.Results {
		if res.Index < 0 || res.Index >= len(candidates) {
			continue
		}
		c := candidates[res.Index]
		c.Score = res.RelevanceScore
		c.HasScore = true
		reranked = append(reranked, c)
	}

	if len(reranked) == 0 {
		return nil, fmt.Errorf("empty results from jina rerank api")
	}

	return reranked, nil
}
