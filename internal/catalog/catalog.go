// Package catalog reads the university catalog on behalf of the counsellor:
// ranked candidate slices, id-to-name resolution and the acceptance-chance
// heuristic shown on the discovery page.
package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"counsellor/internal/config"
	"counsellor/internal/logging"
	"counsellor/internal/store"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Catalog resolves universities through a store session. Names are cached
// across sessions; catalog rows are never renamed once inserted.
type Catalog struct {
	names *lru.Cache[int64, string]
}

// New creates a Catalog with a name cache of cfg.NameCacheSize entries.
func New(cfg config.CatalogConfig) (*Catalog, error) {
	size := cfg.NameCacheSize
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New[int64, string](size)
	if err != nil {
		return nil, fmt.Errorf("create name cache: %w", err)
	}
	return &Catalog{names: cache}, nil
}

// Names resolves ids to university names, preserving input order. Ids that
// are not in the catalog are dropped.
func (c *Catalog) Names(ctx context.Context, sess *store.Session, ids []int64) ([]string, error) {
	var missing []int64
	for _, id := range ids {
		if _, ok := c.names.Get(id); !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		logging.CatalogDebug("Name cache miss for %d of %d ids", len(missing), len(ids))
		found, err := sess.UniversitiesByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		c.remember(found)
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := c.names.Get(id); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Candidates returns up to limit universities in the given countries, best
// ranking first. No countries means the whole catalog.
func (c *Catalog) Candidates(ctx context.Context, sess *store.Session, countries []string, limit int) ([]store.University, error) {
	unis, err := sess.UniversitiesByCountries(ctx, countries, limit)
	if err != nil {
		return nil, err
	}
	c.remember(unis)
	return unis, nil
}

// Backfill returns up to limit ranked universities not already in exclude.
func (c *Catalog) Backfill(ctx context.Context, sess *store.Session, exclude []store.University, limit int) ([]store.University, error) {
	ids := make([]int64, len(exclude))
	for i, u := range exclude {
		ids[i] = u.ID
	}
	unis, err := sess.UniversitiesExcluding(ctx, ids, limit)
	if err != nil {
		return nil, err
	}
	c.remember(unis)
	return unis, nil
}

func (c *Catalog) remember(unis []store.University) {
	for _, u := range unis {
		c.names.Add(u.ID, u.Name)
	}
}

type seedFile struct {
	Universities []store.University `yaml:"universities"`
}

// Seed loads the embedded catalog into an empty universities table. It
// returns the number of rows inserted, zero when the table already had data.
func (c *Catalog) Seed(ctx context.Context, sess *store.Session) (int, error) {
	count, err := sess.CountUniversities(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logging.CatalogDebug("Catalog already has %d universities, skipping seed", count)
		return 0, nil
	}

	var seed seedFile
	if err := yaml.Unmarshal(seedYAML, &seed); err != nil {
		return 0, fmt.Errorf("parse seed catalog: %w", err)
	}

	err = sess.InTx(ctx, func(tx *store.Session) error {
		for i := range seed.Universities {
			if _, err := tx.InsertUniversity(ctx, &seed.Universities[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}

	logging.Catalog("Seeded %d universities", len(seed.Universities))
	return len(seed.Universities), nil
}
