package suggest

import (
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names accepted in configuration
const (
	ProviderNone         = "none"
	ProviderOpenAI       = "openai"
	ProviderGitHubModels = "github_models"
)

// GitHubModelsURL is the OpenAI-compatible GitHub Models endpoint
const GitHubModelsURL = "https://models.inference.ai.azure.com"

// ProviderConfig selects and authenticates a model provider
type ProviderConfig struct {
	Name    string
	Model   string
	Token   string
	Timeout time.Duration
}

// DefaultModel is served by both OpenAI and GitHub Models
const DefaultModel = "gpt-4o-mini"

// NewModel builds the langchaingo client for a provider. ProviderNone (or an
// empty name) yields ErrDisabled.
func NewModel(cfg ProviderConfig) (llms.Model, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	var opts []openai.Option
	switch cfg.Name {
	case "", ProviderNone:
		return nil, ErrDisabled
	case ProviderOpenAI:
		if cfg.Token == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI")
		}
		opts = append(opts, openai.WithToken(cfg.Token), openai.WithModel(model))
	case ProviderGitHubModels:
		if cfg.Token == "" {
			return nil, fmt.Errorf("GITHUB_TOKEN environment variable is required for GitHub Models")
		}
		opts = append(opts,
			openai.WithToken(cfg.Token),
			openai.WithBaseURL(GitHubModelsURL),
			openai.WithModel(model),
		)
	default:
		return nil, fmt.Errorf("unknown suggestion provider: %s", cfg.Name)
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Name, err)
	}
	return client, nil
}

// Services bundles the generator and predictor built from one provider
type Services struct {
	Generator Generator
	Predictor LocationPredictor
}

// NewServices wires both collaborators to the configured provider, falling
// back to Disabled when the provider is none.
func NewServices(cfg ProviderConfig) (Services, error) {
	model, err := NewModel(cfg)
	if errors.Is(err, ErrDisabled) {
		return Services{Generator: Disabled{}, Predictor: Disabled{}}, nil
	}
	if err != nil {
		return Services{}, err
	}
	return Services{
		Generator: NewLLMGenerator(model, cfg.Timeout, llms.WithTemperature(0.4)),
		Predictor: NewLLMPredictor(model, cfg.Timeout, llms.WithTemperature(0.2)),
	}, nil
}
