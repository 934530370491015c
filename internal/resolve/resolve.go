// Package resolve turns fuzzy entity phrases into exact ledger keys.
//
// A phrase is split into upper-case keywords and a master-table row matches
// when every keyword appears, as a substring, in at least one of the target's
// searchable columns. Adding a keyword can only narrow the result.
package resolve

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

var keywordPattern = regexp.MustCompile(`[A-Z0-9&]+`)

// Keywords upper-cases text and returns its maximal runs of letters, digits
// and '&', in order.
func Keywords(text string) []string {
	return keywordPattern.FindAllString(strings.ToUpper(text), -1)
}

// Target is a master table searched by the resolver.
type Target struct {
	Table     string
	KeyColumn string
	Columns   []string
}

// Predefined targets of the converted ledger.
var (
	Accounts      = Target{Table: "AMAS", KeyColumn: "ACOD", Columns: []string{"ANAM"}}
	Items         = Target{Table: "IMAS", KeyColumn: "ICIMAS", Columns: []string{"IALIAS", "ICIMAS"}}
	Departments   = Target{Table: "DEPT", KeyColumn: "DCDEPT", Columns: []string{"DNDEPT"}}
	AccountStates = Target{Table: "AMAS", KeyColumn: "ACOD", Columns: []string{"STATE"}}
)

// MatchAll builds a WHERE fragment requiring every keyword to be found in at
// least one of columns. It returns "" when keywords is empty.
func MatchAll(columns, keywords []string, args *storage.Args) string {
	return match(columns, keywords, args, " AND ")
}

// MatchAny builds a WHERE fragment requiring at least one keyword to be found
// in at least one of columns. It returns "" when keywords is empty.
func MatchAny(columns, keywords []string, args *storage.Args) string {
	return match(columns, keywords, args, " OR ")
}

func match(columns, keywords []string, args *storage.Args, join string) string {
	if len(keywords) == 0 || len(columns) == 0 {
		return ""
	}

	groups := make([]string, len(keywords))
	for i, kw := range keywords {
		likes := make([]string, len(columns))
		for j, col := range columns {
			likes[j] = fmt.Sprintf("UPPER(%s) LIKE %s", col, args.Add("%"+kw+"%"))
		}
		groups[i] = "(" + strings.Join(likes, " OR ") + ")"
	}
	return "(" + strings.Join(groups, join) + ")"
}

// Resolver looks up keys in master tables.
type Resolver struct {
	logger *observability.Logger
}

// NewResolver creates a resolver.
func NewResolver(logger *observability.Logger) *Resolver {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Resolver{logger: logger.WithComponent("resolver")}
}

// Keys returns the distinct keys of target rows matching every keyword of
// phrase. A phrase without keywords resolves to nothing and does not touch
// the store.
func (r *Resolver) Keys(ctx context.Context, s storage.Session, target Target, phrase string) ([]string, error) {
	return r.keys(ctx, s, target, phrase, MatchAll)
}

// AnyKeys is the looser variant: a row matches when any keyword is found.
func (r *Resolver) AnyKeys(ctx context.Context, s storage.Session, target Target, phrase string) ([]string, error) {
	return r.keys(ctx, s, target, phrase, MatchAny)
}

func (r *Resolver) keys(
	ctx context.Context,
	s storage.Session,
	target Target,
	phrase string,
	build func(columns, keywords []string, args *storage.Args) string,
) ([]string, error) {
	keywords := Keywords(phrase)
	if len(keywords) == 0 {
		r.logger.Debug().Str("table", target.Table).Str("phrase", phrase).Msg("No keywords in phrase")
		return nil, nil
	}

	var args storage.Args
	where := build(target.Columns, keywords, &args)
	query := fmt.Sprintf("SELECT DISTINCT %s AS k FROM %s WHERE %s", target.KeyColumn, target.Table, where)

	rows, err := s.Select(ctx, query, args.Values()...)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", target.Table, err)
	}

	seen := make(map[string]struct{}, len(rows))
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		k := row["k"]
		if strings.TrimSpace(k) == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r.logger.Debug().
		Str("table", target.Table).
		Strs("keywords", keywords).
		Int("keys", len(keys)).
		Msg("Resolved phrase")

	return keys, nil
}
