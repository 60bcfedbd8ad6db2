package rating

import (
	"context"
	"time"

	"esports-oracle/internal/constants"
	"esports-oracle/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// HistoryStore is the slice of the persisted store the engine reads.
type HistoryStore interface {
	// CompletedMatchesForTeam returns completed matches involving the
	// team, oldest first.
	CompletedMatchesForTeam(ctx context.Context, team, game string) ([]domain.Match, error)
	// HeadToHead returns the most recent completed matches between the
	// two teams, at most limit.
	HeadToHead(ctx context.Context, team1, team2, game string, limit int) ([]domain.Match, error)
}

type TeamStore interface {
	ListByGame(ctx context.Context, game string) ([]domain.Team, error)
	GetByName(ctx context.Context, name, game string) (*domain.Team, error)
	UpdateRating(ctx context.Context, id int64, rating int, at time.Time) error
}

type Engine struct {
	history  HistoryStore
	teams    TeamStore
	enricher Enricher // optional
	logger   zerolog.Logger
}

func NewEngine(history HistoryStore, teams TeamStore, enricher Enricher, logger zerolog.Logger) *Engine {
	return &Engine{history: history, teams: teams, enricher: enricher, logger: logger}
}

// RatingFromHistory replays the team's full completed-match history.
// Absence of history is not an error: it yields the base rating.
func (e *Engine) RatingFromHistory(ctx context.Context, team, game string) (int, error) {
	matches, err := e.history.CompletedMatchesForTeam(ctx, team, game)
	if err != nil {
		return 0, err
	}

	// Live approximate opponent ratings come from the cached column;
	// unknown opponents replay against the base rating.
	cached := map[string]int{}
	if teams, err := e.teams.ListByGame(ctx, game); err == nil {
		for _, t := range teams {
			cached[t.Name] = t.Rating
		}
	}

	return Replay(matches, team, func(name string) int {
		if r, ok := cached[name]; ok && r != 0 {
			return r
		}
		return domain.BaseRating
	}), nil
}

// Predict returns the percentage chance that team1 beats team2,
// blending ELO with recent head-to-head history and clamping to
// [5, 95]. The formula is symmetric: Predict(A,B) + Predict(B,A) = 100.
func (e *Engine) Predict(ctx context.Context, team1, team2, game string) (float64, error) {
	r1, err := e.cachedOrReplayed(ctx, team1, game)
	if err != nil {
		return 0, err
	}
	r2, err := e.cachedOrReplayed(ctx, team2, game)
	if err != nil {
		return 0, err
	}

	h2h, err := e.history.HeadToHead(ctx, team1, team2, game, H2HWindow)
	if err != nil {
		return 0, err
	}
	wins1, decided := 0, 0
	for i := range h2h {
		switch h2h[i].Winner() {
		case "":
			continue
		case team1:
			wins1++
			decided++
		default:
			decided++
		}
	}

	return blend(WinProbability(r1, r2), wins1, decided), nil
}

func (e *Engine) cachedOrReplayed(ctx context.Context, team, game string) (int, error) {
	if t, err := e.teams.GetByName(ctx, team, game); err == nil && t != nil && t.Rating != 0 {
		return t.Rating, nil
	}
	return e.RatingFromHistory(ctx, team, game)
}

// PredictMatch produces the prediction record for a match, preferring
// the external enrichment service when one is configured and falling
// back to the rating engine on any enrichment failure.
func (e *Engine) PredictMatch(ctx context.Context, match *domain.Match) (*domain.Prediction, error) {
	if e.enricher != nil {
		if p, err := e.enrichedPrediction(ctx, match); err == nil {
			return p, nil
		} else {
			e.logger.Warn().Err(err).
				Str("team1", match.Team1).
				Str("team2", match.Team2).
				Msg("enrichment unavailable, falling back to rating engine")
		}
	}

	pct, err := e.Predict(ctx, match.Team1, match.Team2, match.Game)
	if err != nil {
		return nil, err
	}
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	return &domain.Prediction{
		ID:          id,
		Team1WinPct: pct,
		Source:      domain.PredictionSourceRating,
	}, nil
}

func (e *Engine) enrichedPrediction(ctx context.Context, match *domain.Match) (*domain.Prediction, error) {
	req, err := e.buildEnrichmentRequest(ctx, match)
	if err != nil {
		return nil, err
	}
	resp, err := e.enricher.Enrich(ctx, req)
	if err != nil {
		return nil, err
	}
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	return &domain.Prediction{
		ID:          id,
		Team1WinPct: ClampProbability(resp.Team1WinPct),
		Rationale:   resp.Rationale,
		Source:      domain.PredictionSourceExternal,
	}, nil
}

func (e *Engine) buildEnrichmentRequest(ctx context.Context, match *domain.Match) (EnrichmentRequest, error) {
	req := EnrichmentRequest{
		Team1:      match.Team1,
		Team2:      match.Team2,
		Game:       match.Game,
		Tournament: match.Tournament,
	}

	for _, side := range []struct {
		team string
		form *[]string
	}{
		{match.Team1, &req.RecentForm1},
		{match.Team2, &req.RecentForm2},
	} {
		history, err := e.history.CompletedMatchesForTeam(ctx, side.team, match.Game)
		if err != nil {
			return req, err
		}
		start := len(history) - 5
		if start < 0 {
			start = 0
		}
		for _, m := range history[start:] {
			outcome := "L"
			if m.Winner() == side.team {
				outcome = "W"
			}
			*side.form = append(*side.form, outcome)
		}
	}

	h2h, err := e.history.HeadToHead(ctx, match.Team1, match.Team2, match.Game, H2HWindow)
	if err != nil {
		return req, err
	}
	for i := range h2h {
		if h2h[i].Winner() == match.Team1 {
			req.H2HWins1++
		} else if h2h[i].Winner() == match.Team2 {
			req.H2HWins2++
		}
	}
	return req, nil
}

// RecalculateAll replays history for every known team of a game and
// persists the refreshed ratings. Explicit batch operation; prediction
// reads never trigger it. Teams refreshed within the TTL are skipped
// unless force is set.
func (e *Engine) RecalculateAll(ctx context.Context, game string, force bool) (int, error) {
	teams, err := e.teams.ListByGame(ctx, game)
	if err != nil {
		return 0, err
	}

	updated := 0
	now := time.Now()
	for _, t := range teams {
		if !force && now.Sub(t.RatingUpdatedAt) < constants.RatingRefreshTTL {
			e.logger.Debug().Str("team", t.Name).Msg("rating still fresh, skipping")
			continue
		}
		r, err := e.RatingFromHistory(ctx, t.Name, game)
		if err != nil {
			e.logger.Warn().Err(err).Str("team", t.Name).Msg("rating recalculation failed for team")
			continue
		}
		if err := e.teams.UpdateRating(ctx, t.ID, r, now); err != nil {
			e.logger.Warn().Err(err).Str("team", t.Name).Msg("rating persist failed")
			continue
		}
		updated++
		e.logger.Debug().Str("team", t.Name).Int("rating", r).Msg("rating refreshed")
	}
	e.logger.Info().Str("game", game).Int("teams", updated).Msg("rating recalculation complete")
	return updated, nil
}
