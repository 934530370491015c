package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage/storagetest"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"mixed case", "Acme Traders Pvt. Ltd.", []string{"ACME", "TRADERS", "PVT", "LTD"}},
		{"ampersand kept", "ta & da", []string{"TA", "&", "DA"}},
		{"joined ampersand", "M&M sales", []string{"M&M", "SALES"}},
		{"digits", "PVC pipe 4in", []string{"PVC", "PIPE", "4IN"}},
		{"empty", "", nil},
		{"whitespace", "   \t ", nil},
		{"punctuation only", "?!-.,", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Keywords(tc.in))
		})
	}
}

func TestMatchAll_Clause(t *testing.T) {
	var args storage.Args
	got := MatchAll([]string{"IALIAS", "ICIMAS"}, []string{"PVC", "PIPE"}, &args)

	assert.Equal(t,
		"((UPPER(IALIAS) LIKE $1 OR UPPER(ICIMAS) LIKE $2) AND (UPPER(IALIAS) LIKE $3 OR UPPER(ICIMAS) LIKE $4))",
		got)
	assert.Equal(t, []interface{}{"%PVC%", "%PVC%", "%PIPE%", "%PIPE%"}, args.Values())
}

func TestMatchAny_Clause(t *testing.T) {
	var args storage.Args
	got := MatchAny([]string{"ANAM"}, []string{"TA", "DA"}, &args)
	assert.Equal(t, "((UPPER(ANAM) LIKE $1) OR (UPPER(ANAM) LIKE $2))", got)
	assert.Empty(t, MatchAny([]string{"ANAM"}, nil, &args))
}

func fixture(t *testing.T) storage.Session {
	t.Helper()
	store := storagetest.NewStore(t, storagetest.Fixture{
		Accounts: []storagetest.Account{
			{Code: "A1", Name: "Acme Traders", State: "Bihar"},
			{Code: "A2", Name: "Acme Steel Traders", State: "Bihar West"},
			{Code: "A3", Name: "Bharat Steel", State: "Tamil Nadu"},
			{Code: "", Name: "Acme Orphan"},
		},
		Items: []storagetest.Item{
			{Code: "PVC-4", Alias: "PVC Pipe 4in"},
			{Code: "PVC-6", Alias: "PVC Pipe 6in"},
			{Code: "GI-PIPE", Alias: "Galvanised"},
		},
	})

	s, err := store.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResolver_Keys(t *testing.T) {
	s := fixture(t)
	r := NewResolver(nil)
	ctx := context.Background()

	keys, err := r.Keys(ctx, s, Accounts, "acme traders")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, keys, "empty keys are dropped")

	keys, err = r.Keys(ctx, s, Accounts, "steel")
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "A3"}, keys)

	keys, err = r.Keys(ctx, s, Items, "pipe")
	require.NoError(t, err)
	assert.Equal(t, []string{"GI-PIPE", "PVC-4", "PVC-6"}, keys, "alias or code column matches")

	keys, err = r.Keys(ctx, s, AccountStates, "Bihar")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, keys, "substring state collision is kept")
}

func TestResolver_OrderIndependent(t *testing.T) {
	s := fixture(t)
	r := NewResolver(nil)
	ctx := context.Background()

	phrases := []string{"acme steel traders", "traders acme steel", "steel traders acme", "TRADERS, steel; ACME"}
	var want []string
	for i, p := range phrases {
		keys, err := r.Keys(ctx, s, Accounts, p)
		require.NoError(t, err)
		if i == 0 {
			want = keys
			continue
		}
		assert.Equal(t, want, keys, p)
	}
	assert.Equal(t, []string{"A2"}, want)
}

func TestResolver_MonotonicNarrowing(t *testing.T) {
	s := fixture(t)
	r := NewResolver(nil)
	ctx := context.Background()

	steps := []string{"acme", "acme traders", "acme traders steel", "acme traders steel xyz"}
	var prev []string
	for i, p := range steps {
		keys, err := r.Keys(ctx, s, Accounts, p)
		require.NoError(t, err)
		if i > 0 {
			assert.Subset(t, prev, keys, p)
		}
		prev = keys
	}
	assert.Empty(t, prev)
}

func TestResolver_AnyKeys(t *testing.T) {
	s := fixture(t)
	r := NewResolver(nil)

	keys, err := r.AnyKeys(context.Background(), s, Accounts, "traders bharat")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3"}, keys)
}

type failingSession struct{ calls int }

func (f *failingSession) Select(context.Context, string, ...interface{}) ([]storage.Row, error) {
	f.calls++
	return nil, errors.New("boom")
}

func (f *failingSession) Close() error { return nil }

func TestResolver_NoKeywordsSkipsStore(t *testing.T) {
	s := &failingSession{}
	r := NewResolver(nil)

	keys, err := r.Keys(context.Background(), s, Items, " ?? ")
	require.NoError(t, err)
	assert.Nil(t, keys)
	assert.Zero(t, s.calls)
}

func TestResolver_SelectError(t *testing.T) {
	s := &failingSession{}
	_, err := NewResolver(nil).Keys(context.Background(), s, Items, "pipe")
	assert.ErrorContains(t, err, "resolve IMAS")
}
