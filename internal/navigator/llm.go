package navigator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultLLMModel = "claude-sonnet-4-20250514"
	llmTimeout      = 60 * time.Second
)

const systemPrompt = "You are a helpful medical assistant for patients and caregivers exploring clinical trials. You explain things in plain language and you do not give medical advice."

// PromptKind selects the instruction template for one model call. The
// caller picks the kind explicitly; nothing is inferred from prompt text.
type PromptKind string

const (
	PromptClarify  PromptKind = "clarify"
	PromptSimplify PromptKind = "simplify"
	PromptGeneral  PromptKind = "general"
)

// LLMCaller is the language-model collaborator boundary: one synchronous
// prompt-in/text-out call. Failures surface as errors here and are
// converted to fallback strings before they reach pipeline state.
type LLMCaller interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicCaller struct {
	messages AnthropicMessager
	model    string
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

func NewAnthropicCallerFromEnv() (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	model := strings.TrimSpace(os.Getenv("NAVIGATOR_LLM_MODEL"))
	if model == "" {
		model = DefaultLLMModel
	}
	return &AnthropicCaller{messages: newAnthropicClient(apiKey), model: model}, nil
}

func (a *AnthropicCaller) ModelName() string { return a.model }

func (a *AnthropicCaller) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   1024,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0.1),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// buildPrompt wraps the stage input in the instruction template for the
// given kind.
func buildPrompt(kind PromptKind, input string) string {
	switch kind {
	case PromptClarify:
		return fmt.Sprintf(
			"The user has entered a disease term that might be too general. "+
				"Ask for clarification in a friendly, professional way.\n\n"+
				"User input: %s\n\n"+
				"Respond with a clear question asking for more specific information about the disease or condition.",
			input)
	case PromptSimplify:
		return fmt.Sprintf(
			"You are simplifying clinical trial eligibility criteria into plain, easy-to-understand language for patients and caregivers.\n\n"+
				"Original criteria: %s\n\n"+
				"Provide a clear, simple explanation of:\n"+
				"1. Who might be eligible (in plain terms)\n"+
				"2. Who might not be eligible (in plain terms)\n"+
				"3. Any important considerations\n\n"+
				"Use simple language that a non-medical person can understand.",
			input)
	default:
		return fmt.Sprintf("Provide a helpful response to: %s", input)
	}
}

// fallbackText is returned when the model call fails. The strings come
// from the hosted app's canned responses.
func fallbackText(kind PromptKind) string {
	switch kind {
	case PromptClarify:
		return "Could you please specify the type of cancer? For example: 'breast cancer', 'lung cancer', 'melanoma', etc."
	case PromptSimplify:
		return "Based on the trial criteria, you may be eligible if you: are 18 years or older, have been diagnosed with the condition, and are in generally good health. You may not be eligible if you: are pregnant, have certain other medical conditions, or are taking specific medications."
	default:
		return "I understand you're looking for clinical trials. Let me help you find relevant information."
	}
}

// generate runs one model call for the pipeline. It never returns an
// error: transport or model failures degrade to the static fallback for
// the prompt kind.
func (p *Pipeline) generate(ctx context.Context, kind PromptKind, input string) string {
	if p.llm == nil {
		return fallbackText(kind)
	}
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()
	started := time.Now()
	out, err := p.llm.Generate(ctx, buildPrompt(kind, input))
	if err != nil {
		log.Printf("navigator llm_call_failed kind=%s model=%s elapsed_ms=%d err=%q",
			kind, p.llm.ModelName(), time.Since(started).Milliseconds(), err.Error())
		return fallbackText(kind)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		log.Printf("navigator llm_call_empty kind=%s model=%s", kind, p.llm.ModelName())
		return fallbackText(kind)
	}
	log.Printf("navigator llm_call_done kind=%s model=%s elapsed_ms=%d response_chars=%d",
		kind, p.llm.ModelName(), time.Since(started).Milliseconds(), len(out))
	return out
}
