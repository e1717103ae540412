package portfolio

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dkelsall/piefolio/internal/interfaces"
	"github.com/dkelsall/piefolio/internal/models"
)

// instrumentConcurrency caps parallel market-data enrichment within one pie.
// The provider's token-bucket limiter does the actual pacing.
const instrumentConcurrency = 4

// fetchPie fetches one pie's detail document, merges broker holdings with
// catalogue metadata, and enriches each holding with dividend yield and
// trailing performance. Enrichment failures degrade the affected instrument
// only; they never fail the pie.
func (s *Service) fetchPie(ctx context.Context, broker interfaces.BrokerClient, id int64, catalogue models.Catalogue) (*models.PieData, error) {
	detail, err := broker.GetPie(ctx, id)
	if err != nil {
		return nil, err
	}

	pie := &models.PieData{
		ID:                 detail.ID,
		Name:               detail.Name,
		CreationDate:       detail.CreationDate,
		DividendCashAction: detail.DividendCashAction,
		Instruments:        make([]models.PieInstrument, len(detail.Holdings)),
		FetchedAt:          s.now(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(instrumentConcurrency)

	for i, holding := range detail.Holdings {
		inst := models.PieInstrument{
			Ticker:        holding.Ticker,
			OwnedQuantity: holding.OwnedQuantity,
			InvestedValue: holding.PriceAvgInvestedValue,
			CurrentValue:  holding.PriceAvgValue,
			ResultValue:   holding.PriceAvgValue - holding.PriceAvgInvestedValue,
			CurrentShare:  holding.CurrentShare,
			ExpectedShare: holding.ExpectedShare,
		}

		// Catalogue absence for one ticker is tolerated, not an error.
		if meta, ok := catalogue[holding.Ticker]; ok {
			inst.Name = meta.Name
			inst.CurrencyCode = meta.CurrencyCode
			inst.Type = meta.Type
		}

		pie.Instruments[i] = inst

		g.Go(func() error {
			s.enrich(gctx, &pie.Instruments[i])
			return nil
		})
	}

	g.Wait()

	pie.ComputeTotals()
	return pie, nil
}

// enrich fetches dividend yield and one year of daily closes for the
// instrument's normalized symbol. Any failure leaves yield at 0 and
// performance nil for this instrument.
func (s *Service) enrich(ctx context.Context, inst *models.PieInstrument) {
	symbol := NormalizeTicker(inst.Ticker)
	now := s.now()

	quote, err := s.market.GetQuote(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote unavailable, instrument degraded")
		return
	}

	// Extra week before the 1y boundary so a close exists at or before it.
	from := now.AddDate(-1, 0, -7)
	closes, err := s.market.GetDailyHistory(ctx, symbol, from, now)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("History unavailable, instrument degraded")
		return
	}

	// Yield is assigned only once both fetches succeed: a half-enriched
	// instrument would skew the dividend estimate.
	inst.DividendYield = quote.DividendYield
	inst.Performance = ComputePerformance(closes, now)
}

// fetchAllPies fetches the pie list and every pie's detail with bounded
// concurrency. Pies whose detail fetch fails are excluded from the result
// set; the rest aggregate normally. Results keep broker list order.
func (s *Service) fetchAllPies(ctx context.Context, broker interfaces.BrokerClient, catalogue models.Catalogue) ([]models.PieData, *models.OverallSummary, error) {
	refs, err := broker.GetPies(ctx)
	if err != nil {
		return nil, nil, err
	}

	results := make([]*models.PieData, len(refs))

	g := new(errgroup.Group)
	g.SetLimit(s.pieConcurrency)

	for i, ref := range refs {
		g.Go(func() error {
			pie, err := s.fetchPie(ctx, broker, ref.ID, catalogue)
			if err != nil {
				s.logger.Warn().Err(err).Int64("pie", ref.ID).Msg("Pie fetch failed, excluded from this cycle")
				return nil
			}
			results[i] = pie
			return nil
		})
	}

	g.Wait()

	pies := make([]models.PieData, 0, len(results))
	for _, pie := range results {
		if pie != nil {
			pies = append(pies, *pie)
		}
	}

	summary := models.Summarize(pies, s.now())
	return pies, &summary, nil
}
