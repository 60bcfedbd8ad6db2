package service

import (
	"context"
	"fmt"

	"esports-oracle/internal/classify"
	"esports-oracle/internal/constants"
	"esports-oracle/internal/domain"
	"esports-oracle/internal/reconcile"
	"esports-oracle/internal/repository"
	"esports-oracle/internal/scrape"

	"github.com/rs/zerolog"
)

type DetailService struct {
	adapters map[string]scrape.Adapter
	matches  *repository.MatchRepository
	stats    *repository.StatRepository
	resolver *reconcile.Resolver
	logger   zerolog.Logger
}

func NewDetailService(adapters []scrape.Adapter, matches *repository.MatchRepository, stats *repository.StatRepository, resolver *reconcile.Resolver, logger zerolog.Logger) *DetailService {
	bySource := make(map[string]scrape.Adapter, len(adapters))
	for _, a := range adapters {
		bySource[a.Source()] = a
	}
	return &DetailService{adapters: bySource, matches: matches, stats: stats, resolver: resolver, logger: logger}
}

// SyncDetail pulls the per-map scores and player scoreboards for one
// stored match from every source that knows it. Each source's stat
// lines replace that source's previous lines wholesale.
func (s *DetailService) SyncDetail(ctx context.Context, matchID int64) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if match == nil {
		return fmt.Errorf("match %d not found", matchID)
	}
	if len(match.SourceIDs) == 0 {
		return fmt.Errorf("match %d has no source ids to fetch details from", matchID)
	}

	fetched := 0
	for source, sourceID := range match.SourceIDs {
		adapter, ok := s.adapters[source]
		if !ok {
			continue
		}
		// Source ids are opaque tokens; the adapters fetch by the path
		// the listing row pointed at.
		ref, ok := match.DetailPaths[source]
		if !ok {
			s.logger.Debug().
				Int64("match_id", matchID).
				Str("source", source).
				Msg("no detail path recorded for source")
			continue
		}
		if err := s.syncFromSource(ctx, match, adapter, sourceID, ref); err != nil {
			s.logger.Warn().Err(err).
				Int64("match_id", matchID).
				Str("source", source).
				Msg("detail fetch failed for source")
			continue
		}
		fetched++
	}
	if fetched == 0 {
		return fmt.Errorf("no source delivered details for match %d", matchID)
	}
	return nil
}

func (s *DetailService) syncFromSource(ctx context.Context, match *domain.Match, adapter scrape.Adapter, sourceID, ref string) error {
	detail, err := adapter.MatchDetails(ctx, ref)
	if err != nil {
		return err
	}

	// The detail page usually carries fresher scores and status than the
	// stored listing; fold them in through the same merge path.
	if updated, err := classify.Normalize(detail.Match); err == nil {
		updated.Team1, updated.Team2 = match.Team1, match.Team2
		updated.ScheduledAt = match.ScheduledAt
		if updated.SourceIDs == nil {
			updated.SourceIDs = map[string]string{}
		}
		updated.SourceIDs[adapter.Source()] = sourceID
		if _, _, err := s.matches.Upsert(ctx, &updated); err != nil {
			return err
		}
	}

	maps := make([]domain.MapScore, 0, len(detail.Maps))
	for _, m := range detail.Maps {
		maps = append(maps, domain.MapScore{
			MatchID: match.ID,
			Label:   m.Label,
			Score1:  m.Score1,
			Score2:  m.Score2,
		})
	}

	stats := make([]domain.PlayerStat, 0, len(detail.Players))
	for _, line := range detail.Players {
		nickname := line.Nickname
		if existing, err := s.resolver.ResolvePlayer(ctx, line.Nickname, match.Game); err == nil && existing != nil {
			nickname = existing.Nickname
		}
		stats = append(stats, domain.PlayerStat{
			MatchID:    match.ID,
			PlayerName: nickname,
			MapLabel:   line.MapLabel,
			Source:     adapter.Source(),
			Kills:      line.Kills,
			Deaths:     line.Deaths,
			Assists:    line.Assists,
			ACS:        line.ACS,
		})
	}

	if err := s.stats.ReplaceForMatch(ctx, match.ID, adapter.Source(), maps, stats); err != nil {
		return err
	}
	s.logger.Info().
		Int64("match_id", match.ID).
		Str("source", adapter.Source()).
		Int("maps", len(maps)).
		Int("stat_lines", len(stats)).
		Msg("match details synced")
	return nil
}
