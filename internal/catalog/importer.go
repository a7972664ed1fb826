package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"simpleshop/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Store receives validated products.
type Store interface {
	Upsert(ctx context.Context, products []model.Product) (int, error)
}

// Result summarises one import run.
type Result struct {
	Loaded   int
	Imported int
	Skipped  int
}

// Importer loads feeds concurrently, validates every record and upserts the
// survivors. When several feeds carry the same id the later feed wins.
type Importer struct {
	loader Loader
	store  Store
	logger zerolog.Logger
}

// NewImporter creates a feed importer.
func NewImporter(loader Loader, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import loads every feed in paths. Any feed that cannot be read fails the
// whole run before anything is written.
func (i *Importer) Import(ctx context.Context, paths []string) (Result, error) {
	feeds := make([][]model.Product, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for idx, path := range paths {
		g.Go(func() error {
			products, err := i.loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load feed %s: %w", path, err)
			}
			feeds[idx] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		i.logger.Error().Err(err).Msg("catalog import aborted")
		return Result{}, err
	}

	var res Result
	byID := make(map[string]model.Product)
	for idx, products := range feeds {
		for _, p := range products {
			res.Loaded++

			normalised, err := Validate(p)
			if err != nil {
				res.Skipped++
				i.logger.Warn().
					Err(err).
					Str("feed", paths[idx]).
					Str("product_id", p.ID).
					Msg("skipping invalid product")
				continue
			}
			byID[normalised.ID] = normalised
		}
	}

	valid := make([]model.Product, 0, len(byID))
	for _, p := range byID {
		valid = append(valid, p)
	}
	sort.Slice(valid, func(a, b int) bool { return valid[a].ID < valid[b].ID })

	imported, err := i.store.Upsert(ctx, valid)
	res.Imported = imported
	if err != nil {
		return res, fmt.Errorf("failed to store catalogue: %w", err)
	}

	i.logger.Info().
		Int("feeds", len(paths)).
		Int("loaded", res.Loaded).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Msg("catalog import completed")

	return res, nil
}

// Validation failures for feed records.
var (
	ErrMissingID       = errors.New("product id is required")
	ErrMissingName     = errors.New("product name is required")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrNegativeStock   = errors.New("stock must not be negative")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownBrand    = errors.New("unknown brand")
)

// Validate checks a feed record and returns it with canonical category and
// brand spelling.
func Validate(p model.Product) (model.Product, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)

	switch {
	case p.ID == "":
		return p, ErrMissingID
	case p.Name == "":
		return p, ErrMissingName
	case p.Price.IsNegative():
		return p, ErrNegativePrice
	case p.Stock < 0:
		return p, ErrNegativeStock
	}

	category, ok := model.ParseCategory(string(p.Category))
	if !ok {
		return p, fmt.Errorf("%w: %q", ErrUnknownCategory, p.Category)
	}
	brand, ok := model.ParseBrand(string(p.Brand))
	if !ok {
		return p, fmt.Errorf("%w: %q", ErrUnknownBrand, p.Brand)
	}

	p.Category = category
	p.Brand = brand
	p.Price = p.Price.Round(2)

	return p, nil
}
