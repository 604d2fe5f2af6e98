// Package suggest wraps the language model used for reminder text and
// location prediction. Its output is display text only; nothing here mutates
// household state.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"homebase/internal/apperr"
	"homebase/internal/models"
)

// ErrDisabled is returned when no suggestion provider is configured
var ErrDisabled = errors.New("suggestions disabled")

// Reminder is one generated reminder
type Reminder struct {
	Title       string `json:"title"`
	Suggestion  string `json:"suggestion"`
	ProfileName string `json:"profileName"`
}

// Request carries the inputs for one generation call. Task is nil for
// profile-level reminders. A non-empty Profiles asks for reminders across
// the whole household and Profile is then ignored.
type Request struct {
	Profile  models.Profile
	Profiles []models.Profile
	Task     *models.Task
	Items    []models.Item
	Now      time.Time
}

// Household reports whether the request covers every profile
func (r Request) Household() bool {
	return len(r.Profiles) > 0
}

// Generator produces reminders for a profile
type Generator interface {
	Generate(ctx context.Context, req Request) ([]Reminder, error)
}

// LLMGenerator asks a language model for reminders as JSON
type LLMGenerator struct {
	model   llms.Model
	timeout time.Duration
	opts    []llms.CallOption
}

// NewLLMGenerator creates a generator. A zero timeout means no deadline
// beyond the caller's context.
func NewLLMGenerator(model llms.Model, timeout time.Duration, opts ...llms.CallOption) *LLMGenerator {
	return &LLMGenerator{model: model, timeout: timeout, opts: opts}
}

const reminderSystemPrompt = `You help a family keep track of their everyday items.
Write short, friendly reminders. Respond with JSON only, shaped as
{"reminders":[{"title":"...","suggestion":"...","profileName":"..."}]}.`

// Generate calls the model and parses its reminders
func (g *LLMGenerator) Generate(ctx context.Context, req Request) ([]Reminder, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := complete(ctx, g.model, reminderSystemPrompt, reminderPrompt(req), g.opts...)
	if err != nil {
		return nil, apperr.Collaborator("generate reminders", err)
	}

	var out struct {
		Reminders []Reminder `json:"reminders"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return nil, apperr.Collaborator("generate reminders", fmt.Errorf("decode response: %w", err))
	}
	if req.Household() {
		return out.Reminders, nil
	}
	for i := range out.Reminders {
		if out.Reminders[i].ProfileName == "" {
			out.Reminders[i].ProfileName = req.Profile.Name
		}
	}
	return out.Reminders, nil
}

func reminderPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current time: %s\n", req.Now.Format("Monday 15:04"))
	if req.Household() {
		b.WriteString("Household members:\n")
		for _, p := range req.Profiles {
			writeProfile(&b, "- ", p)
		}
	} else {
		writeProfile(&b, "Person: ", req.Profile)
	}
	if req.Task != nil {
		at := "unscheduled"
		if req.Task.ScheduledTime != nil {
			at = req.Task.ScheduledTime.String()
		}
		fmt.Fprintf(&b, "Upcoming task: %q at %s\n", req.Task.Title, at)
		if req.Task.Description != "" {
			fmt.Fprintf(&b, "Task details: %s\n", req.Task.Description)
		}
	}
	if len(req.Items) > 0 {
		b.WriteString("Items:\n")
		for _, it := range req.Items {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", it.Name, it.Location, it.Status)
		}
	}
	switch {
	case req.Task != nil:
		b.WriteString("Write one or two reminders that get the person ready for the task.")
	case req.Household():
		b.WriteString("Write reminders for the household based on the time, routines and item locations. Set profileName to the member each reminder is for.")
	default:
		b.WriteString("Write reminders about the essential items the person should check today.")
	}
	return b.String()
}

func writeProfile(b *strings.Builder, prefix string, p models.Profile) {
	fmt.Fprintf(b, "%s%s (%s)\n", prefix, p.Name, p.Role)
	if p.Routine != "" {
		fmt.Fprintf(b, "  Routine: %s\n", p.Routine)
	}
	if len(p.Essentials) > 0 {
		fmt.Fprintf(b, "  Essential items: %s\n", strings.Join(p.Essentials, ", "))
	}
}

func complete(ctx context.Context, model llms.Model, system, prompt string, opts ...llms.CallOption) (string, error) {
	resp, err := model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}, opts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("empty response from model")
	}
	return resp.Choices[0].Content, nil
}

// stripFences removes a surrounding ``` or ```json block
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Disabled is used when no provider is configured. Every call fails with a
// collaborator error wrapping ErrDisabled.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) ([]Reminder, error) {
	return nil, apperr.Collaborator("generate reminders", ErrDisabled)
}

func (Disabled) Predict(context.Context, PredictionInput) (*Prediction, error) {
	return nil, apperr.Collaborator("predict location", ErrDisabled)
}
