// Package oracle answers free-text strategy questions through a
// generative-text model, primed with the syndicate's aggregate numbers.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("oracle not configured")

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("oracle returned an empty response")

// Stats is the snapshot summarised in the system instruction.
type Stats struct {
	Members  int
	Balance  int64
	Warnings int
	Pending  int
}

// Oracle answers a prompt given the current stats.
type Oracle interface {
	Ask(ctx context.Context, prompt string, stats Stats) (string, error)
}

// Disabled always fails with ErrNotConfigured; callers fall back to canned
// text.
type Disabled struct{}

func (Disabled) Ask(context.Context, string, Stats) (string, error) {
	return "", ErrNotConfigured
}

// Config configures the OpenAI-compatible chat completions endpoint.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenAI queries a chat completions endpoint.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI builds a client. A zero Timeout means none.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("oracle model is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

// New returns an OpenAI oracle when a model is configured and Disabled
// otherwise.
func New(cfg Config) (Oracle, error) {
	if cfg.Model == "" && cfg.BaseURL == "" {
		return Disabled{}, nil
	}
	return NewOpenAI(cfg)
}

func (o *OpenAI) Ask(ctx context.Context, prompt string, stats Stats) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemInstruction(stats)),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatMoney renders an amount the way the dashboard shows it, e.g.
// "$ 1.250.000".
func FormatMoney(amount int64) string {
	return printer.Sprintf("$ %d", amount)
}

// SystemInstruction primes the model with the syndicate's numbers.
func SystemInstruction(s Stats) string {
	var b strings.Builder
	b.WriteString("Você é o Oráculo Imperial, conselheiro estratégico do Imperivm, uma família criminosa de roleplay. ")
	b.WriteString("Responda em português, de forma curta e no tom de um consigliere.\n")
	b.WriteString(printer.Sprintf("Membros: %d\n", s.Members))
	b.WriteString("Caixa: " + FormatMoney(s.Balance) + "\n")
	b.WriteString(printer.Sprintf("Advertências: %d\n", s.Warnings))
	b.WriteString(printer.Sprintf("Dossiês pendentes: %d", s.Pending))
	return b.String()
}
