// Package crawl drives the fetch→extract→rank→enqueue loop for one
// tournament's site under a page budget.
package crawl

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/refsignal/tourney-enrich/internal/enrich"
	"github.com/refsignal/tourney-enrich/internal/extract"
	"github.com/refsignal/tourney-enrich/internal/linkrank"
	"github.com/refsignal/tourney-enrich/internal/metrics"
)

const (
	// DefaultPageBudget bounds how many pages one job fetches.
	DefaultPageBudget = 8
	// DefaultFrontierSlack bounds frontier growth on link-heavy sites:
	// new links are enqueued only while frontier+seen stays under
	// budget+slack.
	DefaultFrontierSlack = 5
)

// Config controls one orchestrator.
type Config struct {
	PageBudget    int
	FrontierSlack int
}

// Orchestrator crawls one site at a time. Single page failures are swallowed
// and logged; the only fatal condition is a missing seed URL.
type Orchestrator struct {
	fetcher enrich.Fetcher
	blobs   enrich.BlobStore
	hasher  enrich.Hasher
	cfg     Config
	logger  *zap.Logger
}

// New constructs an Orchestrator. The blob store and hasher are optional; when
// both are set, each fetched page's raw HTML is archived for reviewers.
func New(fetcher enrich.Fetcher, blobs enrich.BlobStore, hasher enrich.Hasher, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.PageBudget <= 0 {
		cfg.PageBudget = DefaultPageBudget
	}
	if cfg.FrontierSlack <= 0 {
		cfg.FrontierSlack = DefaultFrontierSlack
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		fetcher: fetcher,
		blobs:   blobs,
		hasher:  hasher,
		cfg:     cfg,
		logger:  logger,
	}
}

// Crawl fetches up to the page budget starting from seedURL and returns the
// union of facts found across all visited pages. No cross-job deduplication
// happens here; that is the candidate store's concern.
func (o *Orchestrator) Crawl(ctx context.Context, tournamentID, seedURL string) (enrich.CrawlSummary, error) {
	if seedURL == "" {
		return enrich.CrawlSummary{}, enrich.ErrNoSourceURL
	}

	var summary enrich.CrawlSummary
	frontier := []string{seedURL}
	seen := make(map[string]struct{})

	for len(frontier) > 0 && summary.PagesFetched < o.cfg.PageBudget {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("crawl canceled: %w", err)
		}
		next := frontier[0]
		frontier = frontier[1:]
		if _, ok := seen[next]; ok {
			continue
		}
		// Failed fetches still count as seen so the crawl never loops on
		// a broken URL, but they do not consume the page budget.
		seen[next] = struct{}{}

		page, err := o.fetcher.Fetch(ctx, next)
		if err != nil || page == nil {
			if err != nil {
				o.logger.Warn("page skipped",
					zap.String("tournament_id", tournamentID),
					zap.String("url", next),
					zap.Error(err),
				)
			}
			continue
		}
		summary.PagesFetched++
		metrics.ObservePage(page.URL, len(page.HTML))

		o.archivePage(ctx, tournamentID, page)

		result := extract.Extract(page.HTML, page.URL)
		o.merge(&summary, tournamentID, result)

		for _, link := range linkrank.Rank(page.HTML, page.URL) {
			if _, ok := seen[link]; ok {
				continue
			}
			if len(frontier)+len(seen) >= o.cfg.PageBudget+o.cfg.FrontierSlack {
				break
			}
			frontier = append(frontier, link)
		}
	}

	o.logger.Info("crawl finished",
		zap.String("tournament_id", tournamentID),
		zap.Int("pages_fetched", summary.PagesFetched),
		zap.Int("contacts", len(summary.Contacts)),
		zap.Int("venues", len(summary.Venues)),
		zap.Int("comps", len(summary.Comps)),
	)
	return summary, nil
}

// merge stamps the tournament on each candidate and folds PDF hints into the
// comp list as low-confidence follow-up markers.
func (o *Orchestrator) merge(summary *enrich.CrawlSummary, tournamentID string, res enrich.PageResult) {
	for i := range res.Contacts {
		res.Contacts[i].TournamentID = tournamentID
	}
	for i := range res.Venues {
		res.Venues[i].TournamentID = tournamentID
	}
	for i := range res.Comps {
		res.Comps[i].TournamentID = tournamentID
	}
	for i := range res.Dates {
		res.Dates[i].TournamentID = tournamentID
	}
	for i := range res.Attributes {
		res.Attributes[i].TournamentID = tournamentID
	}

	summary.Contacts = append(summary.Contacts, res.Contacts...)
	summary.Venues = append(summary.Venues, res.Venues...)
	summary.Comps = append(summary.Comps, res.Comps...)
	summary.Dates = append(summary.Dates, res.Dates...)
	summary.Attributes = append(summary.Attributes, res.Attributes...)

	for _, hint := range res.PDFHints {
		summary.Comps = append(summary.Comps, enrich.CompCandidate{
			TournamentID: tournamentID,
			RateText:     hint.LinkText,
			SourceURL:    hint.SourceURL,
			Evidence:     hint.URL,
			Confidence:   hint.Confidence,
		})
	}
}

func (o *Orchestrator) archivePage(ctx context.Context, tournamentID string, page *enrich.Page) {
	if o.blobs == nil || o.hasher == nil {
		return
	}
	hash, err := o.hasher.Hash([]byte(page.HTML))
	if err != nil {
		o.logger.Warn("hash page failed", zap.String("url", page.URL), zap.Error(err))
		return
	}
	path := fmt.Sprintf("pages/%s/%s.html", tournamentID, hash)
	if _, err := o.blobs.PutObject(ctx, path, "text/html; charset=utf-8", []byte(page.HTML)); err != nil {
		o.logger.Warn("archive page failed", zap.String("url", page.URL), zap.Error(err))
	}
}
