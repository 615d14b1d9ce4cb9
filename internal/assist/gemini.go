package assist

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/msalah0e/horizon/internal/vault"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// ErrNoKey means neither the environment nor the vault holds an API key.
var ErrNoKey = errors.New("assist: no API key")

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGemini creates a generator for model authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNoKey
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("assist: create Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, config: generationConfig()}, nil
}

// NewGeminiFromVault resolves keyName from the environment or the vault and
// creates a generator with it. The returned Source says where the key came
// from.
func NewGeminiFromVault(ctx context.Context, v vault.Vault, keyName, model string) (*GeminiGenerator, vault.Source, error) {
	key, src := vault.Resolve(v, keyName)
	if key == "" {
		return nil, src, fmt.Errorf("%w: set %s or run `horizon key set %s`", ErrNoKey, keyName, keyName)
	}
	g, err := NewGemini(ctx, key, model)
	return g, src, err
}

func generationConfig() *genai.GenerateContentConfig {
	safety := make([]*genai.SafetySetting, 0, 4)
	for _, c := range []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	} {
		safety = append(safety, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopP:            genai.Ptr[float32](0.9),
		TopK:            genai.Ptr[float32](40),
		MaxOutputTokens: 2048,
		SafetySettings:  safety,
	}
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string { return g.model }

// Generate sends prompt as a single user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", "", errors.New("gemini: no candidates in response")
	}
	model := g.model
	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return resp.Text(), model, nil
}
