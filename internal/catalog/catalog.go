// Package catalog imports product feeds into the catalogue.
//
// A feed is a gzipped file with one JSON product per line. Feeds are read
// from S3 when configured, falling back to the local file system.
package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"simpleshop/internal/model"

	"github.com/rs/zerolog"
)

// Loader defines the interface for loading product feeds.
type Loader interface {
	// Load reads a gzipped JSON-lines feed and returns its products.
	// Malformed lines are logged and skipped.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// decodeFeed reads one JSON product per line from r. source is only used in
// log lines.
func decodeFeed(ctx context.Context, r io.Reader, source string, logger zerolog.Logger) ([]model.Product, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		products  []model.Product
		lineNo    int
		malformed int
	)
	for scanner.Scan() {
		lineNo++

		// Check context cancellation periodically
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Str("source", source).Msg("feed loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.Product
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			malformed++
			logger.Warn().
				Err(err).
				Str("source", source).
				Int("line", lineNo).
				Msg("skipping malformed feed line")
			continue
		}
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Str("source", source).Msg("error reading feed")
		return nil, fmt.Errorf("error reading feed %s: %w", source, err)
	}

	logger.Info().
		Str("source", source).
		Int("products_loaded", len(products)).
		Int("malformed", malformed).
		Msg("feed loaded successfully")

	return products, nil
}
