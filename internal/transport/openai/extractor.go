// Package openai implements domain.FeatureExtractor over an OpenAI-compatible embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"slices"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yash-quizizz/image-search/internal/domain"
	"github.com/yash-quizizz/image-search/internal/metrics"
)

const jpegQuality = 90

// Extractor sends images as base64 data URIs to an embeddings endpoint
// serving a multimodal model (CLIP-style) and returns one vector per image.
type Extractor struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	limiter    *rate.Limiter // nil means unthrottled
	logger     *zap.Logger
}

// Config holds the extractor endpoint settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
	// RequestsPerSecond throttles calls to the endpoint. Zero disables throttling.
	RequestsPerSecond float64
	Logger            *zap.Logger
}

// NewExtractor creates an OpenAI-compatible feature extractor.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Extractor{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		limiter:    limiter,
		logger:     logger,
	}
}

// Extract implements domain.FeatureExtractor. Vectors are returned in input order.
// The count is whatever the endpoint produced; callers check it against len(images).
func (e *Extractor) Extract(ctx context.Context, images []image.Image) ([]domain.FeatureVector, error) {
	if len(images) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(images))
	for i, img := range images {
		uri, err := dataURI(img)
		if err != nil {
			e.recordError("encode")
			return nil, fmt.Errorf("encode image %d: %w", i, err)
		}
		inputs[i] = uri
	}

	req := openai.EmbeddingRequest{
		Input:          inputs,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("extraction throttle: %w", err)
		}
	}

	model := string(e.model)
	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		e.recordError("api_error")
		return nil, parseAPIError(err)
	}

	metrics.ExtractionRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.ExtractionDuration.WithLabelValues(model).Observe(duration.Seconds())
	metrics.ExtractionImagesTotal.WithLabelValues(model).Add(float64(len(images)))

	// The API does not guarantee order; restore it by Index.
	data := slices.Clone(resp.Data)
	slices.SortFunc(data, func(a, b openai.Embedding) int { return a.Index - b.Index })

	vectors := make([]domain.FeatureVector, len(data))
	for i, d := range data {
		vectors[i] = d.Embedding
	}

	e.logger.Debug("Extracted features",
		zap.Int("images", len(images)),
		zap.Int("vectors", len(vectors)),
		zap.Duration("duration", duration))

	return vectors, nil
}

func (e *Extractor) recordError(kind string) {
	model := string(e.model)
	metrics.ExtractionRequestsTotal.WithLabelValues(model, "error").Inc()
	metrics.ExtractionErrorsTotal.WithLabelValues(model, kind).Inc()
}

// dataURI re-encodes img as JPEG so the endpoint sees a single, RGB format.
func dataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// parseAPIError wraps every failure with domain.ErrExtractorUnavailable.
func parseAPIError(err error) error {
	wrap := domain.ErrExtractorUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("extraction API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("extraction API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("extraction API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("extraction request failed: %v: %w", err, wrap)
}

// extractDetail reads the "detail" field some OpenAI-compatible servers use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
