// Package resolver maps noisy scraped card names to canonical catalog
// records. Resolution is layered: exact snapshot hit, persisted alias,
// in-memory fuzzy match, remote search. Results from the expensive tiers are
// written back to the alias store so repeat runs stay cheap.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/edhtools/deckscope/internal/utils"
	"github.com/edhtools/deckscope/pkg/mtg"
	"github.com/edhtools/deckscope/pkg/storage"
)

// Catalog is the snapshot surface the resolver matches against.
type Catalog interface {
	Lookup(nameLatin string) (*mtg.CanonicalCard, bool)
	ByID(id string) (*mtg.CanonicalCard, bool)
	Snapshot() []mtg.CanonicalCard
	SearchRemote(ctx context.Context, name string) ([]mtg.CanonicalCard, error)
}

// AliasStore persists resolved name variants across runs.
type AliasStore interface {
	LookupAlias(ctx context.Context, alias string) (string, bool, error)
	InsertAlias(ctx context.Context, alias, cardID string) error
}

type Resolver struct {
	catalog Catalog
	aliases AliasStore
	misses  int
}

func New(catalog Catalog, aliases AliasStore) *Resolver {
	return &Resolver{catalog: catalog, aliases: aliases}
}

// Resolve maps a normalized name to its canonical card. A miss after all
// tiers returns (nil, nil) and the caller skips the observation; errors are
// reserved for transport/store failures and contract violations.
func (r *Resolver) Resolve(ctx context.Context, name string) (*mtg.CanonicalCard, error) {
	latin := mtg.Latinize(strings.TrimSpace(name))
	if latin == "" {
		r.misses++
		return nil, nil
	}

	// Tier 1: exact hit in the snapshot index.
	if card, ok := r.catalog.Lookup(latin); ok {
		return card, nil
	}

	// Tier 2: persisted alias from an earlier run.
	id, ok, err := r.aliases.LookupAlias(ctx, latin)
	if err != nil {
		return nil, fmt.Errorf("alias lookup for %q: %w", latin, err)
	}
	staleAlias := false
	if ok {
		if card, found := r.catalog.ByID(id); found {
			return card, nil
		}
		// Alias points at a card the current snapshot no longer carries;
		// fall through to the expensive tiers without re-inserting it.
		staleAlias = true
		utils.Log.Debug("alias for ", latin, " points outside the snapshot")
	}

	// Tier 3: fuzzy scan of the full catalog.
	if card, ok := r.scanCatalog(latin); ok {
		if !staleAlias {
			if err := r.persistAlias(ctx, latin, card.ID); err != nil {
				return nil, err
			}
		}
		return card, nil
	}

	// Tier 4: remote search. Rate limiting and transient retries live in the
	// catalog's remote client.
	results, err := r.catalog.SearchRemote(ctx, latin)
	if err != nil {
		return nil, fmt.Errorf("remote lookup for %q: %w", latin, err)
	}
	if len(results) > 0 {
		card := pickResult(results, latin)
		if !staleAlias {
			if err := r.persistAlias(ctx, latin, card.ID); err != nil {
				return nil, err
			}
		}
		return card, nil
	}

	r.misses++
	utils.Log.Debug("unresolved card name: ", name)
	return nil, nil
}

// Misses reports how many names could not be resolved in this run.
func (r *Resolver) Misses() int {
	return r.misses
}

// scanCatalog tries the fallback predicates in order, each over the whole
// snapshot; the first matching catalog entry wins, with no tie-break beyond
// catalog iteration order.
func (r *Resolver) scanCatalog(latin string) (*mtg.CanonicalCard, bool) {
	predicates := []func(catalogName, input string) bool{
		func(c, in string) bool { return c == in },
		func(c, in string) bool { return stripSpaces(c) == stripSpaces(in) },
		func(c, in string) bool { return unescaped(c) == unescaped(in) },
		func(c, in string) bool { return stripSlashes(c) == stripSlashes(in) },
		func(c, in string) bool { return strings.HasPrefix(c, in) },
	}

	snapshot := r.catalog.Snapshot()
	for _, match := range predicates {
		for i := range snapshot {
			if match(mtg.Latinize(snapshot[i].Name), latin) {
				return &snapshot[i], true
			}
		}
	}
	return nil, false
}

// persistAlias records a tier 3/4 result so future calls hit tier 1/2.
// A duplicate alias means two code paths resolved the same variant
// differently within one run, which is a contract violation.
func (r *Resolver) persistAlias(ctx context.Context, latin, cardID string) error {
	err := r.aliases.InsertAlias(ctx, latin, cardID)
	if errors.Is(err, storage.ErrConstraint) {
		return fmt.Errorf("alias %q already mapped: %w", latin, err)
	}
	if err != nil {
		return fmt.Errorf("persist alias %q: %w", latin, err)
	}
	return nil
}

// pickResult prefers the exact latinized match, else the first result.
func pickResult(results []mtg.CanonicalCard, latin string) *mtg.CanonicalCard {
	for i := range results {
		if mtg.Latinize(results[i].Name) == latin {
			return &results[i]
		}
	}
	return &results[0]
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

func stripSlashes(s string) string {
	return strings.ReplaceAll(s, "/", "")
}

// unescaped folds query-string escaping so "Lim-Dul%27s Vault" and
// "Lim-Dul's Vault" compare equal.
func unescaped(s string) string {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return out
}
