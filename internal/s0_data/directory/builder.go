package directory

import (
	"context"

	"github.com/wonny/twstrategy/internal/contracts"
	"github.com/wonny/twstrategy/pkg/logger"
)

// ListingSource fetches the directory page of one market
type ListingSource interface {
	FetchListing(ctx context.Context, market contracts.Market) ([]contracts.SecurityRecord, error)
}

// sourceMarkets is the merge order of the directory pages
var sourceMarkets = []contracts.Market{contracts.MarketListed, contracts.MarketOTC}

// Builder merges the listed and OTC listings into one directory
// ⭐ SSOT: 종목 디렉토리 구축은 여기서만
type Builder struct {
	source ListingSource
	logger *logger.Logger
}

// NewBuilder creates a new directory builder
func NewBuilder(source ListingSource, log *logger.Logger) *Builder {
	return &Builder{
		source: source,
		logger: log.WithField("module", "directory"),
	}
}

// Build fetches both listings. A failing source is skipped; the result is
// whatever could be parsed and never an error.
func (b *Builder) Build(ctx context.Context) *contracts.Directory {
	dir := contracts.NewDirectory()

	for _, market := range sourceMarkets {
		records, err := b.source.FetchListing(ctx, market)
		if err != nil {
			b.logger.WithError(err).WithField("market", market).Warn("Listing unavailable, skipping source")
			continue
		}

		for _, rec := range records {
			dir.Add(rec)
		}
	}

	b.logger.WithField("count", dir.Len()).Info("Security directory built")
	return dir
}
