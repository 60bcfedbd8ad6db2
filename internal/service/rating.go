package service

import (
	"context"
	"fmt"

	"esports-oracle/internal/constants"
	"esports-oracle/internal/domain"
	"esports-oracle/internal/rating"
	"esports-oracle/internal/reconcile"
	"esports-oracle/internal/repository"

	"github.com/rs/zerolog"
)

type RatingService struct {
	engine   *rating.Engine
	matches  *repository.MatchRepository
	resolver *reconcile.Resolver
	logger   zerolog.Logger
}

func NewRatingService(engine *rating.Engine, matches *repository.MatchRepository, resolver *reconcile.Resolver, logger zerolog.Logger) *RatingService {
	return &RatingService{engine: engine, matches: matches, resolver: resolver, logger: logger}
}

// Recalculate replays every team's history for a game and persists the
// refreshed ratings. Without force, teams refreshed within the TTL are
// left alone.
func (s *RatingService) Recalculate(ctx context.Context, game string, force bool) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()
	return s.engine.RecalculateAll(ctx, game, force)
}

// Predict answers "what chance does team1 have against team2". Names
// are reconciled first so abbreviations and accent variants hit the
// stored entities.
func (s *RatingService) Predict(ctx context.Context, team1, team2, game string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	name1, err := s.canonicalName(ctx, team1, game)
	if err != nil {
		return 0, err
	}
	name2, err := s.canonicalName(ctx, team2, game)
	if err != nil {
		return 0, err
	}
	return s.engine.Predict(ctx, name1, name2, game)
}

func (s *RatingService) canonicalName(ctx context.Context, name, game string) (string, error) {
	team, err := s.resolver.ResolveTeam(ctx, name, game)
	if err != nil {
		return "", err
	}
	if team == nil {
		// Unknown team: predictions still work, replayed from whatever
		// history the exact name has (usually none, so base rating).
		return name, nil
	}
	return team.Name, nil
}

// PredictUpcoming attaches predictions to every upcoming match of a
// game that does not have one yet.
func (s *RatingService) PredictUpcoming(ctx context.Context, game string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	upcoming, err := s.matches.List(ctx, repository.Filter{Game: game, Status: domain.StatusUpcoming})
	if err != nil {
		return 0, err
	}

	predicted := 0
	for i := range upcoming {
		if upcoming[i].Prediction != nil {
			continue
		}
		p, err := s.engine.PredictMatch(ctx, &upcoming[i])
		if err != nil {
			s.logger.Warn().Err(err).Int64("match_id", upcoming[i].ID).Msg("prediction failed")
			continue
		}
		if err := s.matches.SetPrediction(ctx, upcoming[i].ID, p); err != nil {
			return predicted, fmt.Errorf("persist prediction for match %d: %w", upcoming[i].ID, err)
		}
		predicted++
	}

	s.logger.Info().Str("game", game).Int("predicted", predicted).Msg("upcoming matches predicted")
	return predicted, nil
}
