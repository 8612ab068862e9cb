package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider serves both generation and embeddings through the OpenAI
// API. Generation runs at temperature 0 so repeated calls over the same
// document stay stable.
type OpenAIProvider struct {
	keyName    string
	client     *openai.Client
	chatModel  string
	embedModel openai.EmbeddingModel
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	var client *openai.Client
	if apiKey := resolveOpenAIKey(keyName); apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	chatModel := os.Getenv("ARXTRACT_OPENAI_CHAT_MODEL")
	if chatModel == "" {
		chatModel = openai.GPT4o
	}
	return &OpenAIProvider{
		keyName:    keyName,
		client:     client,
		chatModel:  chatModel,
		embedModel: openai.SmallEmbedding3,
	}
}

func (o *OpenAIProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: string(o.embedModel), Key: o.keyName}
	if o.client == nil {
		return nil, info, fmt.Errorf("openai key missing for alias %q", o.keyName)
	}
	if len(req.Inputs) == 0 {
		return nil, info, fmt.Errorf("no embedding inputs")
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: o.embedModel,
		Input: req.Inputs,
	})
	if err != nil {
		return nil, info, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) != len(req.Inputs) {
		return nil, info, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(req.Inputs))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, info, fmt.Errorf("openai embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, info, nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.chatModel, Key: o.keyName}
	if o.client == nil {
		return GenerateResponse{}, info, fmt.Errorf("openai key missing for alias %q", o.keyName)
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.chatModel,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("openai %s request failed: %w", req.Operation, err)
	}
	if len(resp.Choices) == 0 {
		return GenerateResponse{}, info, fmt.Errorf("openai returned empty choices")
	}
	return GenerateResponse{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, info, nil
}

func resolveOpenAIKey(alias string) string {
	if alias != "" {
		if k := os.Getenv("ARXTRACT_OPENAI_KEY_" + strings.ToUpper(alias)); k != "" {
			return k
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
