package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adolfohrq/designali-hub-google/internal/config"
)

var ErrSuggestionsDisabled = errors.New("suggestions are not configured")

// SuggestedTool mirrors the structured answer the model is asked for.
type SuggestedTool struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SuggestService asks a Gemini-compatible generateContent endpoint for design
// tool recommendations. The provider is reached over plain HTTP JSON; no SDK.
type SuggestService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewSuggestService(cfg config.GeminiConfig) *SuggestService {
	return &SuggestService{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *SuggestService) SuggestTools(ctx context.Context, topic string, count int) ([]SuggestedTool, error) {
	if s.apiKey == "" {
		return nil, ErrSuggestionsDisabled
	}
	if count <= 0 || count > 10 {
		count = 5
	}

	prompt := fmt.Sprintf(
		"Suggest %d tools for %q that a designer would find useful. "+
			"Answer with a JSON array only; each element has the keys "+
			"name, url, category and description.", count, topic)

	body, err := json.Marshal(generateContentRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggestion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode suggestion response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("suggestion provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("suggestion provider returned no candidates")
	}

	text := parsed.Candidates[0].Content.Parts[0].Text

	var tools []SuggestedTool
	if err := json.Unmarshal([]byte(text), &tools); err != nil {
		return nil, fmt.Errorf("failed to parse suggested tools: %w", err)
	}
	return tools, nil
}
