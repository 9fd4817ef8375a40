package scrape

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/model"
	"github.com/sells-group/directory-cli/internal/processor"
)

// Manager fans a search out across the registered sources and merges the
// results into a single raw record list for the pipeline.
type Manager struct {
	reg     *Registry
	limiter *rate.Limiter

	concurrency  int
	timeout      time.Duration
	fetchDetails bool
	maxReviews   int
}

// NewManager wires a manager from the scrape configuration. The rate
// limiter is shared across sources so the total outbound request rate
// stays under the configured ceiling.
func NewManager(cfg config.ScrapeConfig, reg *Registry) *Manager {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 0.5
	}
	concurrency := cfg.ConcurrentRequests
	if concurrency <= 0 {
		concurrency = 1
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Manager{
		reg:          reg,
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		concurrency:  concurrency,
		timeout:      timeout,
		fetchDetails: cfg.FetchDetails,
		maxReviews:   cfg.MaxReviews,
	}
}

// Search runs the filter against the named sources (all registered sources
// when names is empty) and returns the combined raw records. A failing
// source is logged and contributes nothing; the remaining sources still
// report. Search fails only when every selected source fails.
func (m *Manager) Search(ctx context.Context, filter *model.SearchFilter, sources []string) ([]*model.Business, error) {
	log := zap.L().With(zap.String("component", "scrape.manager"))

	scrapers, err := m.reg.Select(sources)
	if err != nil {
		return nil, err
	}
	if len(scrapers) == 0 {
		log.Info("no sources selected")
		return nil, nil
	}

	var mu sync.Mutex
	combined := make([]*model.Business, 0, 64)
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for _, s := range scrapers {
		g.Go(func() error {
			sLog := log.With(zap.String("source", s.Name()))

			if err := m.limiter.Wait(gctx); err != nil {
				return eris.Wrapf(err, "scrape: rate wait for %s", s.Name())
			}

			searchCtx, cancel := context.WithTimeout(gctx, m.timeout)
			defer cancel()

			start := time.Now()
			records, err := s.Search(searchCtx, filter)
			if err != nil {
				// Isolate the failure: other sources still contribute.
				sLog.Error("search failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
				failed.Add(1)
				return nil
			}

			for _, b := range records {
				b.AddSource(s.Name())
				if b.ScrapedAt.IsZero() {
					b.ScrapedAt = time.Now().UTC()
				}
			}

			if m.fetchDetails {
				m.enrich(gctx, s, records, sLog)
			}

			sLog.Info("search complete",
				zap.Int("records", len(records)),
				zap.Duration("elapsed", time.Since(start)),
			)

			mu.Lock()
			combined = append(combined, records...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if failed.Load() == int64(len(scrapers)) {
		return nil, eris.Errorf("scrape: all %d sources failed", len(scrapers))
	}

	log.Info("combined search results",
		zap.Int("sources", len(scrapers)),
		zap.Int64("failed", failed.Load()),
		zap.Int("records", len(combined)),
	)
	return combined, nil
}

// enrich folds each record's detail page and reviews into the base
// listing. Detail failures degrade to the search-result fields.
func (m *Manager) enrich(ctx context.Context, s Scraper, records []*model.Business, log *zap.Logger) {
	for _, b := range records {
		ref, ok := b.Ref(s.Name())
		if !ok || ref.URL == "" {
			continue
		}

		if err := m.limiter.Wait(ctx); err != nil {
			log.Warn("enrichment aborted", zap.Error(err))
			return
		}

		detail, err := s.FetchDetail(ctx, ref.URL)
		if err != nil {
			log.Warn("detail fetch failed", zap.String("url", ref.URL), zap.Error(err))
			continue
		}
		processor.MergeDetails(b, detail)

		if m.maxReviews <= 0 {
			continue
		}
		if err := m.limiter.Wait(ctx); err != nil {
			log.Warn("enrichment aborted", zap.Error(err))
			return
		}
		reviews, err := s.FetchReviews(ctx, ref.URL, m.maxReviews)
		if err != nil {
			log.Warn("review fetch failed", zap.String("url", ref.URL), zap.Error(err))
			continue
		}
		for _, r := range reviews {
			b.AddReview(r)
		}
	}
}
