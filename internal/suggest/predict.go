package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"homebase/internal/apperr"
)

// PredictionInput describes a lost item and its owner's habits
type PredictionInput struct {
	ItemCharacteristics string `json:"itemCharacteristics"`
	UserHabits          string `json:"userHabits"`
	AdditionalContext   string `json:"additionalContext,omitempty"`
	TimeOfDay           string `json:"timeOfDay,omitempty"`
}

// Validate checks the required descriptions are present
func (in PredictionInput) Validate() error {
	if len(strings.TrimSpace(in.ItemCharacteristics)) < 2 {
		return &apperr.ValidationError{Field: "itemCharacteristics", Msg: "must be at least 2 characters"}
	}
	if len(strings.TrimSpace(in.UserHabits)) < 2 {
		return &apperr.ValidationError{Field: "userHabits", Msg: "must be at least 2 characters"}
	}
	return nil
}

// Prediction is the model's best guess at where an item is
type Prediction struct {
	PredictedLocation string  `json:"predictedLocation"`
	Confidence        float64 `json:"confidence"`
	Reasoning         string  `json:"reasoning"`
}

// LocationPredictor guesses where a misplaced item might be
type LocationPredictor interface {
	Predict(ctx context.Context, in PredictionInput) (*Prediction, error)
}

// LLMPredictor implements LocationPredictor with a language model
type LLMPredictor struct {
	model   llms.Model
	timeout time.Duration
	opts    []llms.CallOption
}

// NewLLMPredictor creates a predictor
func NewLLMPredictor(model llms.Model, timeout time.Duration, opts ...llms.CallOption) *LLMPredictor {
	return &LLMPredictor{model: model, timeout: timeout, opts: opts}
}

const predictSystemPrompt = `You help people find misplaced household items.
Given the item and the owner's habits, name the single most likely location.
Respond with JSON only, shaped as
{"predictedLocation":"...","confidence":0.0,"reasoning":"..."} where confidence is between 0 and 1.`

// Predict validates the input and asks the model
func (p *LLMPredictor) Predict(ctx context.Context, in PredictionInput) (*Prediction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Item: %s\n", in.ItemCharacteristics)
	fmt.Fprintf(&b, "Owner habits: %s\n", in.UserHabits)
	if in.AdditionalContext != "" {
		fmt.Fprintf(&b, "Context: %s\n", in.AdditionalContext)
	}
	if in.TimeOfDay != "" {
		fmt.Fprintf(&b, "Time of day: %s\n", in.TimeOfDay)
	}

	text, err := complete(ctx, p.model, predictSystemPrompt, b.String(), p.opts...)
	if err != nil {
		return nil, apperr.Collaborator("predict location", err)
	}
	var out Prediction
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return nil, apperr.Collaborator("predict location", fmt.Errorf("decode response: %w", err))
	}
	if out.PredictedLocation == "" {
		return nil, apperr.Collaborator("predict location", fmt.Errorf("response has no location"))
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	} else if out.Confidence > 1 {
		out.Confidence = 1
	}
	return &out, nil
}
