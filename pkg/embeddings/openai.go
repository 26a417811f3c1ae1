package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sanonone/graphoracle/pkg/metrics"
	"github.com/sanonone/graphoracle/pkg/pooling"
)

const openAIMaxBatch = 2048 // OpenAI supports up to 2048 inputs per request

// OpenAI implements Encoder on an OpenAI-compatible /embeddings endpoint.
// The returned bank has one valid position per text, so every pooling mode
// yields the provider's own pooled vector.
type OpenAI struct {
	client *openai.Client
	model  string
	dim    int
}

var _ Encoder = (*OpenAI)(nil)

// NewOpenAI creates an encoder for an OpenAI-compatible API. dim > 0 requests
// shortened embeddings; a zero timeout means 60s.
func NewOpenAI(url, model, apiKey string, dim int, timeout time.Duration) *OpenAI {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if url != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(url, "/")+"/"))
	}
	client := openai.NewClient(opts...)

	return &OpenAI{client: &client, model: model, dim: dim}
}

// Name returns the backend type.
func (o *OpenAI) Name() string { return TypeOpenAI }

// Encode embeds texts, splitting batches larger than the provider limit.
func (o *OpenAI) Encode(ctx context.Context, texts []string) (*pooling.Bank, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	vecs := make([][]float32, len(texts))
	for i := 0; i < len(texts); i += openAIMaxBatch {
		end := min(i+openAIMaxBatch, len(texts))
		batch, err := o.callAPI(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", i, end, err)
		}
		copy(vecs[i:], batch)
	}
	return pooling.FromPooled(vecs)
}

func (o *OpenAI) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model:          openai.EmbeddingModel(o.model),
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if o.dim > 0 {
		params.Dimensions = openai.Int(int64(o.dim))
	}

	start := time.Now()
	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}
	metrics.ObserveEncode(TypeOpenAI, start)

	vecs := make([][]float32, len(texts))
	for _, item := range resp.Data {
		idx := item.Index
		if idx < 0 || idx >= int64(len(texts)) {
			return nil, fmt.Errorf("unexpected embedding index %d for batch size %d", idx, len(texts))
		}
		v := make([]float32, len(item.Embedding))
		for k, x := range item.Embedding {
			v[k] = float32(x)
		}
		vecs[idx] = v
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}
	return vecs, nil
}
