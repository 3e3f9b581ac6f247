// Package llmprovider adapts the internal/llm.LLM client interface
// (Gemini / OpenAI / Ollama) to the small capability.Completer and
// capability.Embedder interfaces the extractor and judge depend on,
// classifying provider errors into claimerr Kinds along the way.
package llmprovider

import (
	"context"
	"fmt"

	"github.com/vnagri/claimfusion/internal/llm"
)

// Classifier maps a raw provider error into a *pkgerrors.Error tagged
// with a claimerr.Kind.
type Classifier func(error) error

// Completer adapts an llm.LLM's Generate method to capability.Completer.
type Completer struct {
	client    llm.LLM
	modelName string
	classify  Classifier
}

// NewCompleter builds a Completer bound to one model name on client.
func NewCompleter(client llm.LLM, modelName string, classify Classifier) *Completer {
	return &Completer{client: client, modelName: modelName, classify: classify}
}

// NewGeminiCompleter builds a Completer classifying errors via Gemini's
// structured API error codes.
func NewGeminiCompleter(client llm.LLM, modelName string) *Completer {
	return NewCompleter(client, modelName, classifyGemini)
}

// NewOpenAICompleter builds a Completer classifying errors via OpenAI's
// structured API error codes.
func NewOpenAICompleter(client llm.LLM, modelName string) *Completer {
	return NewCompleter(client, modelName, classifyOpenAI)
}

// NewOllamaCompleter builds a Completer treating every failure from a
// local Ollama server as transient.
func NewOllamaCompleter(client llm.LLM, modelName string) *Completer {
	return NewCompleter(client, modelName, classifyOllama)
}

// Complete implements capability.Completer.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := &llm.GenerateRequest{
		Context:   ctx,
		ModelName: c.modelName,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: []string{systemPrompt}},
			{Role: llm.RoleUser, Content: []string{userPrompt}},
		},
	}

	resp, err := c.client.Generate(req)
	if err != nil {
		return "", c.classify(err)
	}
	if len(resp.Outputs) == 0 {
		return "", nil
	}
	return resp.Outputs[0], nil
}

// Embedder adapts an llm.LLM's Embed method to capability.Embedder.
type Embedder struct {
	client    llm.LLM
	modelName string
	classify  Classifier
}

// NewEmbedder builds an Embedder bound to one model name on client.
func NewEmbedder(client llm.LLM, modelName string, classify Classifier) *Embedder {
	return &Embedder{client: client, modelName: modelName, classify: classify}
}

// NewGeminiEmbedder builds an Embedder classifying errors via Gemini's
// structured API error codes.
func NewGeminiEmbedder(client llm.LLM, modelName string) *Embedder {
	return NewEmbedder(client, modelName, classifyGemini)
}

// NewOpenAIEmbedder builds an Embedder classifying errors via OpenAI's
// structured API error codes.
func NewOpenAIEmbedder(client llm.LLM, modelName string) *Embedder {
	return NewEmbedder(client, modelName, classifyOpenAI)
}

// NewOllamaEmbedder builds an Embedder treating every failure from a
// local Ollama server as transient.
func NewOllamaEmbedder(client llm.LLM, modelName string) *Embedder {
	return NewEmbedder(client, modelName, classifyOllama)
}

// Embed implements capability.Embedder.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := make([]llm.EmbedInput, len(texts))
	for i, t := range texts {
		inputs[i] = llm.NewSimpleText(t)
	}

	resp, err := e.client.Embed(&llm.EmbedRequest{Ctx: ctx, ModelName: e.modelName, Inputs: inputs})
	if err != nil {
		return nil, e.classify(err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("llmprovider: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb.State == llm.EmbedStateError {
			return nil, fmt.Errorf("llmprovider: embedding %d failed upstream", i)
		}
		out[i] = emb.Values
	}
	return out, nil
}
