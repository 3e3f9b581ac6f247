package llmprovider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vnagri/claimfusion/internal/claimerr"
	"github.com/vnagri/claimfusion/internal/llm"
	"github.com/vnagri/claimfusion/internal/llmprovider"
)

type stubLLM struct {
	genResp *llm.GenerateResponse
	genErr  error
	embResp *llm.EmbedResponse
	embErr  error
}

func (s *stubLLM) Generate(req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return s.genResp, s.genErr
}
func (s *stubLLM) BatchGenerate(req *llm.BatchRequest) (*llm.BatchResponse, error) { return nil, nil }
func (s *stubLLM) BatchRetrieve(req *llm.BatchRetrieveRequest) (*llm.BatchResponse, error) {
	return nil, nil
}
func (s *stubLLM) BatchCancel(req *llm.BatchCancelRequest) error { return nil }
func (s *stubLLM) Embed(req *llm.EmbedRequest) (*llm.EmbedResponse, error) {
	return s.embResp, s.embErr
}
func (s *stubLLM) AddModel(model llm.Model)                                  {}
func (s *stubLLM) SetDefaultModel(modelType llm.ModelType, name string) error { return nil }
func (s *stubLLM) HasModel(name string) bool                                  { return true }
func (s *stubLLM) DefaultModel(modelType llm.ModelType) (llm.Model, bool)     { return nil, false }
func (s *stubLLM) ListModels() []llm.Model                                   { return nil }

func TestCompleteReturnsFirstOutput(t *testing.T) {
	client := &stubLLM{genResp: &llm.GenerateResponse{Outputs: []string{"hello"}}}
	c := llmprovider.NewOllamaCompleter(client, "model")

	out, err := c.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestCompleteClassifiesOllamaErrorAsTransient(t *testing.T) {
	client := &stubLLM{genErr: errors.New("connection refused")}
	c := llmprovider.NewOllamaCompleter(client, "model")

	_, err := c.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	require.Equal(t, claimerr.KindProviderTransient, claimerr.Of(err))
}

func TestEmbedReturnsVectors(t *testing.T) {
	client := &stubLLM{embResp: &llm.EmbedResponse{Embeddings: []llm.Embedding{{Values: []float32{1, 2, 3}}}}}
	e := llmprovider.NewGeminiEmbedder(client, "model")

	vecs, err := e.Embed(context.Background(), []string{"text"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1, 2, 3}}, vecs)
}
