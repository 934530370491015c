package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/fallback"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage/storagetest"
)

func TestApp_AskHandled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.SQLite.Path = storagetest.NewFile(t, storagetest.Fixture{
		Accounts: []storagetest.Account{{Code: "A", Name: "Acme", State: "Bihar", Balance: "1,000"}},
	})
	cfg.Answers.CurrencySymbol = "Rs."

	a, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, a.CheckStore())

	reply, err := a.Ask(context.Background(), "total outstanding in Bihar")
	require.NoError(t, err)
	assert.True(t, reply.Handled)
	assert.Equal(t, "state-outstanding", reply.Rule)
	assert.Equal(t, "Total outstanding in Bihar (excluding negative balances): Rs.1,000.00", reply.Text)
}

func TestApp_AskRefused(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "missing.db")

	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, a.CheckStore(), storage.ErrNoStore)

	reply, err := a.Ask(context.Background(), "what is the weather today")
	require.NoError(t, err)
	assert.False(t, reply.Handled)
	assert.Equal(t, fallback.SourceRefusal, reply.Source)
	assert.Equal(t, cfg.Fallback.RefusalMessage, reply.Text)
}

func TestApp_DataQuestionGetsExamples(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.SQLite.Path = storagetest.NewFile(t, storagetest.Fixture{})

	a, err := New(cfg, nil)
	require.NoError(t, err)

	reply, err := a.Ask(context.Background(), "how many customers do we have")
	require.NoError(t, err)
	assert.False(t, reply.Handled)
	assert.Equal(t, fallback.SourceResponder, reply.Source)
	assert.True(t, strings.HasPrefix(reply.Text, cfg.Fallback.DataQuestionMessage))
	for _, r := range a.Classifier.Rules() {
		assert.Contains(t, reply.Text, "- "+r.Example)
	}

	cfg.Fallback.DataQuestionMessage = ""
	a, err = New(cfg, nil)
	require.NoError(t, err)

	reply, err = a.Ask(context.Background(), "how many customers do we have")
	require.NoError(t, err)
	assert.Equal(t, fallback.SourceRefusal, reply.Source)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Answers.AgingDays = 90
	cfg.Answers.IncludeNegative = true

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 90, opts.AgingDays)
	assert.True(t, opts.IncludeNegative)
	assert.Equal(t, "₹", opts.CurrencySymbol)
}
