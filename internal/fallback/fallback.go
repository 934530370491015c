// Package fallback routes questions the classifier does not handle.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/classifier"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/format"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
)

// DefaultRefusal is returned for questions that are not about the data.
const DefaultRefusal = "I can only answer questions about the database; please ask about data or request a SQL query."

// Sources of a Reply.
const (
	SourceEngine    = "engine"
	SourceResponder = "responder"
	SourceRefusal   = "refusal"
)

// dataWords mark a question as being about the ledger data.
var dataWords = []string{
	"stock", "inventory", "how much", "how many", "quantity", "on hand",
	"in stock", "available", "sku", "select", "from", "table", "amas",
	"imas", "sale", "prch", "prod", "order", "sitm", "tmas", "customers",
}

// IsDataQuestion reports whether text reads like a question about the data.
func IsDataQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range dataWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Responder answers questions the engine could not.
type Responder interface {
	Respond(ctx context.Context, question string) (string, error)
}

// Refusal always answers with a fixed message.
type Refusal struct {
	Message string
}

// Respond returns the refusal message.
func (r Refusal) Respond(context.Context, string) (string, error) {
	if r.Message == "" {
		return DefaultRefusal, nil
	}
	return r.Message, nil
}

// Suggestions answers with the kinds of questions the engine does handle.
type Suggestions struct {
	Intro    string
	Examples []string
}

// NewSuggestions lists one example per rule.
func NewSuggestions(intro string, rules []classifier.RuleInfo) Suggestions {
	examples := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.Example != "" {
			examples = append(examples, r.Example)
		}
	}
	return Suggestions{Intro: intro, Examples: examples}
}

// Respond returns the intro followed by the examples.
func (s Suggestions) Respond(context.Context, string) (string, error) {
	return format.List(s.Intro, s.Examples), nil
}

// Answerer is the engine side of a Chain.
type Answerer interface {
	Answer(ctx context.Context, question string) (*classifier.Answer, error)
}

// Reply is the outcome of a Chain.
type Reply struct {
	Text    string
	Handled bool
	Rule    string
	Source  string
}

// Chain asks the engine first. Unhandled data questions go to the responder,
// everything else is refused.
type Chain struct {
	engine    Answerer
	responder Responder
	refusal   Refusal
	logger    *observability.Logger
}

// NewChain creates a chain. A nil responder refuses every unhandled question.
func NewChain(engine Answerer, responder Responder, refusal Refusal, logger *observability.Logger) *Chain {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Chain{
		engine:    engine,
		responder: responder,
		refusal:   refusal,
		logger:    logger.WithComponent("fallback"),
	}
}

// Ask answers a question.
func (c *Chain) Ask(ctx context.Context, question string) (*Reply, error) {
	answer, err := c.engine.Answer(ctx, question)
	if err == nil {
		return &Reply{Text: answer.Text, Handled: true, Rule: answer.Rule, Source: SourceEngine}, nil
	}
	if !errors.Is(err, classifier.ErrUnhandled) {
		return nil, err
	}

	if c.responder != nil && IsDataQuestion(question) {
		text, err := c.responder.Respond(ctx, question)
		if err != nil {
			return nil, fmt.Errorf("fallback responder: %w", err)
		}
		c.logger.WithContext(ctx).Debug().Msg("Answered by fallback responder")
		return &Reply{Text: text, Source: SourceResponder}, nil
	}

	text, _ := c.refusal.Respond(ctx, question)
	c.logger.WithContext(ctx).Debug().Msg("Question refused")
	return &Reply{Text: text, Source: SourceRefusal}, nil
}
