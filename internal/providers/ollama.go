package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OllamaProvider serves local, keyless embeddings and generation through an
// Ollama daemon. Useful when paper chunks should not leave the machine.
type OllamaProvider struct {
	alias      string
	baseURL    string
	embedModel string
	chatModel  string
	client     *http.Client
}

func NewOllamaProvider(alias string) *OllamaProvider {
	baseURL := strings.TrimSpace(os.Getenv("ARXTRACT_OLLAMA_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	embedModel := strings.TrimSpace(os.Getenv("ARXTRACT_OLLAMA_EMBED_MODEL"))
	if embedModel == "" {
		embedModel = "nomic-embed-text"
	}
	chatModel := strings.TrimSpace(os.Getenv("ARXTRACT_OLLAMA_CHAT_MODEL"))
	if chatModel == "" {
		chatModel = "llama3.1"
	}
	// A provider-list alias like ollama:mistral overrides the chat model.
	if alias != "" {
		chatModel = alias
	}
	return &OllamaProvider{
		alias:      alias,
		baseURL:    strings.TrimRight(baseURL, "/"),
		embedModel: embedModel,
		chatModel:  chatModel,
		client:     &http.Client{Timeout: 90 * time.Second},
	}
}

func (o *OllamaProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	info := ProviderInfo{Name: "ollama", Model: o.embedModel, Key: o.alias}
	if len(req.Inputs) == 0 {
		return nil, info, fmt.Errorf("no embedding inputs")
	}
	// The embeddings endpoint takes one prompt per call.
	out := make([][]float32, 0, len(req.Inputs))
	for _, text := range req.Inputs {
		payload, _ := json.Marshal(map[string]any{
			"model":  o.embedModel,
			"prompt": text,
		})
		body, err := o.post(ctx, "/api/embeddings", payload)
		if err != nil {
			return nil, info, fmt.Errorf("ollama embedding request failed: %w", err)
		}
		var parsed struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, info, fmt.Errorf("decode ollama embedding response: %w", err)
		}
		if len(parsed.Embedding) == 0 {
			return nil, info, fmt.Errorf("ollama returned empty embedding")
		}
		out = append(out, parsed.Embedding)
	}
	return out, info, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "ollama", Model: o.chatModel, Key: o.alias}
	payload, _ := json.Marshal(map[string]any{
		"model":  o.chatModel,
		"prompt": req.Prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": 0,
		},
	})
	body, err := o.post(ctx, "/api/generate", payload)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("ollama %s request failed: %w", req.Operation, err)
	}
	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return GenerateResponse{}, info, fmt.Errorf("decode ollama generate response: %w", err)
	}
	return GenerateResponse{Text: strings.TrimSpace(parsed.Response)}, info, nil
}

func (o *OllamaProvider) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
