package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/classifier"
)

type stubEngine struct {
	answer *classifier.Answer
	err    error
}

func (s stubEngine) Answer(context.Context, string) (*classifier.Answer, error) {
	return s.answer, s.err
}

type stubResponder struct {
	text  string
	err   error
	calls int
}

func (s *stubResponder) Respond(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestIsDataQuestion(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"How many customers do we have?", true},
		{"what's IN STOCK", true},
		{"select * from amas", true},
		{"show me orders", true},
		{"what is the weather today", false},
		{"tell me a joke", false},
		{"", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, IsDataQuestion(tc.in), tc.in)
	}
}

func TestRefusal(t *testing.T) {
	text, err := Refusal{}.Respond(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, DefaultRefusal, text)

	text, _ = Refusal{Message: "no"}.Respond(context.Background(), "anything")
	assert.Equal(t, "no", text)
}

func TestChain_Handled(t *testing.T) {
	responder := &stubResponder{text: "llm"}
	chain := NewChain(stubEngine{answer: &classifier.Answer{Rule: "sales-by-month", Text: "October sales by year:"}}, responder, Refusal{}, nil)

	reply, err := chain.Ask(context.Background(), "sales in October")
	require.NoError(t, err)
	assert.True(t, reply.Handled)
	assert.Equal(t, SourceEngine, reply.Source)
	assert.Equal(t, "sales-by-month", reply.Rule)
	assert.Zero(t, responder.calls)
}

func TestChain_DataQuestionGoesToResponder(t *testing.T) {
	responder := &stubResponder{text: "There are 42 customers."}
	chain := NewChain(stubEngine{err: classifier.ErrUnhandled}, responder, Refusal{}, nil)

	reply, err := chain.Ask(context.Background(), "how many customers are there")
	require.NoError(t, err)
	assert.False(t, reply.Handled)
	assert.Equal(t, SourceResponder, reply.Source)
	assert.Equal(t, "There are 42 customers.", reply.Text)
}

func TestChain_OtherQuestionsAreRefused(t *testing.T) {
	responder := &stubResponder{text: "sunny"}
	chain := NewChain(stubEngine{err: classifier.ErrUnhandled}, responder, Refusal{Message: "Data only."}, nil)

	reply, err := chain.Ask(context.Background(), "what is the weather today")
	require.NoError(t, err)
	assert.Equal(t, SourceRefusal, reply.Source)
	assert.Equal(t, "Data only.", reply.Text)
	assert.Zero(t, responder.calls)
}

func TestChain_NoResponderRefuses(t *testing.T) {
	chain := NewChain(stubEngine{err: classifier.ErrUnhandled}, nil, Refusal{}, nil)

	reply, err := chain.Ask(context.Background(), "how many customers")
	require.NoError(t, err)
	assert.Equal(t, SourceRefusal, reply.Source)
	assert.Equal(t, DefaultRefusal, reply.Text)
}

func TestChain_Errors(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewChain(stubEngine{err: boom}, nil, Refusal{}, nil).Ask(context.Background(), "sales in October")
	assert.ErrorIs(t, err, boom)

	responder := &stubResponder{err: errors.New("timeout")}
	_, err = NewChain(stubEngine{err: classifier.ErrUnhandled}, responder, Refusal{}, nil).Ask(context.Background(), "stock?")
	assert.ErrorContains(t, err, "fallback responder")
}

func TestSuggestions(t *testing.T) {
	s := NewSuggestions("Try asking:", []classifier.RuleInfo{
		{Name: "sales-by-month", Example: "sales in October by year"},
		{Name: "unlisted"},
		{Name: "stock-summary", Example: "stock summary"},
	})

	text, err := s.Respond(context.Background(), "how many customers")
	require.NoError(t, err)
	assert.Equal(t, "Try asking:\n- sales in October by year\n- stock summary", text)
}

func TestChain_SuggestionsForDataQuestions(t *testing.T) {
	s := NewSuggestions("Try asking:", []classifier.RuleInfo{{Name: "stock-summary", Example: "stock summary"}})
	chain := NewChain(stubEngine{err: classifier.ErrUnhandled}, s, Refusal{}, nil)

	tests := []struct {
		question string
		source   string
		text     string
	}{
		{"how many customers do we have", SourceResponder, "Try asking:\n- stock summary"},
		{"tell me a joke", SourceRefusal, DefaultRefusal},
	}
	for _, tc := range tests {
		reply, err := chain.Ask(context.Background(), tc.question)
		require.NoError(t, err)
		assert.False(t, reply.Handled)
		assert.Equal(t, tc.source, reply.Source, tc.question)
		assert.Equal(t, tc.text, reply.Text, tc.question)
	}
}
