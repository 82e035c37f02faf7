package syndicate

import (
	"context"
	"strings"

	"github.com/celerix-dev/imperivm/internal/oracle"
	"github.com/celerix-dev/imperivm/pkg/schema"
)

// FallbackAnswer is returned when the oracle is unavailable or fails.
const FallbackAnswer = "O Oráculo está em silêncio. A conexão com a inteligência imperial falhou; tente novamente mais tarde."

// logPreview is how many runes of the answer go into the activity log.
const logPreview = 80

// AskOracle forwards prompt to the oracle with the current stats. Any oracle
// failure yields FallbackAnswer. If ctx ends before the answer arrives the
// answer is dropped and ctx's error returned.
func (c *Controller) AskOracle(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	st := c.Stats()
	answer, err := c.oracle.Ask(ctx, prompt, oracle.Stats{
		Members:  st.Members,
		Balance:  st.Balance,
		Warnings: st.Warnings,
		Pending:  st.PendingCandidates,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		c.logger.Warn("oracle query failed", "error", err)
		answer = FallbackAnswer
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.logLocked(schema.LogAI, "Oráculo consultado: %s → %s", prompt, truncate(answer, logPreview))
	c.persistLocked()
	return answer, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
