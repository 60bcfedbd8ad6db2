// Package service orchestrates the scrape adapters, the reconciler and
// the persisted store into the operations the CLI exposes.
package service

import (
	"context"
	"sync"
	"time"

	"esports-oracle/internal/classify"
	"esports-oracle/internal/constants"
	"esports-oracle/internal/domain"
	"esports-oracle/internal/reconcile"
	"esports-oracle/internal/repository"
	"esports-oracle/internal/scrape"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SourceResult is one source's contribution to a sync run.
type SourceResult struct {
	Source  string
	New     int
	Updated int
	Skipped int
	Err     error
}

// Summary aggregates a full sync run across sources.
type Summary struct {
	RunID   string
	Sources []SourceResult
}

func (s *Summary) Totals() (created, updated, skipped, failed int) {
	for _, r := range s.Sources {
		created += r.New
		updated += r.Updated
		skipped += r.Skipped
		if r.Err != nil {
			failed++
		}
	}
	return
}

type IngestService struct {
	adapters []scrape.Adapter
	matches  *repository.MatchRepository
	teams    *repository.TeamRepository
	resolver *reconcile.Resolver
	logger   zerolog.Logger
}

func NewIngestService(adapters []scrape.Adapter, matches *repository.MatchRepository, teams *repository.TeamRepository, resolver *reconcile.Resolver, logger zerolog.Logger) *IngestService {
	return &IngestService{adapters: adapters, matches: matches, teams: teams, resolver: resolver, logger: logger}
}

// SyncMatches pulls the match lists from every configured source in
// parallel and merges them into the store. One blocked or broken source
// never aborts the others; its error lands in the summary instead.
func (s *IngestService) SyncMatches(ctx context.Context) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	runID := uuid.New().String()
	logger := s.logger.With().Str("run_id", runID).Logger()
	logger.Info().Int("sources", len(s.adapters)).Msg("starting match sync")

	summary := &Summary{RunID: runID, Sources: make([]SourceResult, len(s.adapters))}
	var mu sync.Mutex
	start := time.Now()

	g, gCtx := errgroup.WithContext(ctx)
	for i, adapter := range s.adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			result := s.syncSource(gCtx, adapter, logger)
			mu.Lock()
			summary.Sources[i] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	elapsed := time.Since(start)
	if elapsed < constants.MinPlausibleSyncDuration {
		logger.Warn().Dur("elapsed", elapsed).Msg("sync finished implausibly fast")
	}

	created, updated, skipped, failed := summary.Totals()
	logger.Info().
		Int("new", created).
		Int("updated", updated).
		Int("skipped", skipped).
		Int("failed_sources", failed).
		Dur("elapsed", elapsed).
		Msg("match sync complete")
	return summary, nil
}

func (s *IngestService) syncSource(ctx context.Context, adapter scrape.Adapter, logger zerolog.Logger) SourceResult {
	result := SourceResult{Source: adapter.Source()}
	logger = logger.With().Str("source", adapter.Source()).Logger()

	raws, err := adapter.ListMatches(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("source listing failed")
		result.Err = err
		return result
	}
	logger.Debug().Int("rows", len(raws)).Msg("source listing fetched")

	for _, raw := range raws {
		match, err := classify.Normalize(raw)
		if err != nil {
			logger.Debug().Err(err).Str("team1", raw.Team1).Str("team2", raw.Team2).Msg("dropping unusable row")
			result.Skipped++
			continue
		}

		if err := s.canonicalize(ctx, &match); err != nil {
			logger.Warn().Err(err).Msg("name reconciliation failed, keeping scraped names")
		}

		_, created, err := s.matches.Upsert(ctx, &match)
		if err != nil {
			logger.Warn().Err(err).Str("team1", match.Team1).Str("team2", match.Team2).Msg("match upsert failed")
			result.Skipped++
			continue
		}
		if created {
			result.New++
		} else {
			result.Updated++
		}
	}
	return result
}

// canonicalize replaces scraped team names with the canonical stored
// names, inserting teams we have never seen before.
func (s *IngestService) canonicalize(ctx context.Context, match *domain.Match) error {
	for _, name := range []*string{&match.Team1, &match.Team2} {
		team, err := s.resolver.ResolveTeam(ctx, *name, match.Game)
		if err != nil {
			return err
		}
		if team != nil {
			*name = team.Name
			continue
		}
		if _, err := s.teams.Upsert(ctx, &domain.Team{
			Name:   *name,
			Game:   match.Game,
			Region: match.Region,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ListMatches is the read side the CLI renders.
func (s *IngestService) ListMatches(ctx context.Context, filter repository.Filter) ([]domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.matches.List(ctx, filter)
}
