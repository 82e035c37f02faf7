// Package notify announces new recruitment dossiers to an external chat
// webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

// Notifier receives new candidates. Implementations are best effort; callers
// log and ignore the returned error.
type Notifier interface {
	NotifyNewCandidate(ctx context.Context, c schema.Candidate) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) NotifyNewCandidate(context.Context, schema.Candidate) error { return nil }

const (
	embedTitle  = "🩸 NOVO PACTO DE SANGUE"
	embedColor  = 0xd4af37
	embedFooter = "Imperivm High Command"
	notInformed = "Não informado"
)

// EmbedField is one line of a webhook embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type Embed struct {
	Title  string       `json:"title"`
	Color  int          `json:"color"`
	Fields []EmbedField `json:"fields"`
	Footer EmbedFooter  `json:"footer"`
}

// Payload is the webhook request body.
type Payload struct {
	Embeds []Embed `json:"embeds"`
}

// Discord posts a single embed per candidate to a webhook URL.
type Discord struct {
	URL    string
	Client *http.Client
}

// NewDiscord returns a webhook notifier with a request timeout.
func NewDiscord(url string, timeout time.Duration) *Discord {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Discord{URL: url, Client: &http.Client{Timeout: timeout}}
}

// New picks the Discord notifier when url is set and Nop otherwise.
func New(url string, timeout time.Duration) Notifier {
	if url == "" {
		return Nop{}
	}
	return NewDiscord(url, timeout)
}

// Message builds the webhook body for c.
func Message(c schema.Candidate) Payload {
	return Payload{Embeds: []Embed{{
		Title: embedTitle,
		Color: embedColor,
		Fields: []EmbedField{
			{Name: "👤 Nome", Value: orDefault(c.Name), Inline: true},
			{Name: "🎯 Cargo", Value: orDefault(string(c.Profession)), Inline: true},
			{Name: "📞 Discord", Value: orDefault(c.Contact), Inline: true},
		},
		Footer: EmbedFooter{Text: embedFooter},
	}}}
}

func (d *Discord) NotifyNewCandidate(ctx context.Context, c schema.Candidate) error {
	body, err := json.Marshal(Message(c))
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return notInformed
	}
	return s
}
