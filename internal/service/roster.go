package service

import (
	"context"
	"fmt"

	"esports-oracle/internal/constants"
	"esports-oracle/internal/domain"
	"esports-oracle/internal/reconcile"
	"esports-oracle/internal/repository"
	"esports-oracle/internal/scrape"

	"github.com/rs/zerolog"
)

type RosterService struct {
	source   scrape.RosterSource
	game     string
	teams    *repository.TeamRepository
	players  *repository.PlayerRepository
	resolver *reconcile.Resolver
	logger   zerolog.Logger
}

func NewRosterService(source scrape.RosterSource, game string, teams *repository.TeamRepository, players *repository.PlayerRepository, resolver *reconcile.Resolver, logger zerolog.Logger) *RosterService {
	return &RosterService{source: source, game: game, teams: teams, players: players, resolver: resolver, logger: logger}
}

// SyncTeam scrapes one team's profile page and merges the team row and
// its active roster into the store. Scraped names reconcile against
// what we already hold, so "SEN" refreshes Sentinels instead of
// spawning a duplicate.
func (s *RosterService) SyncTeam(ctx context.Context, name string) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	rawTeam, rawPlayers, err := s.source.TeamProfile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetch team profile %q: %w", name, err)
	}

	team := domain.Team{
		Name:        rawTeam.Name,
		Game:        s.game,
		Region:      rawTeam.Region,
		Country:     rawTeam.Country,
		LogoURL:     rawTeam.LogoURL,
		Description: rawTeam.Description,
		ProfileURL:  rawTeam.ProfileURL,
	}
	if existing, err := s.resolver.ResolveTeam(ctx, rawTeam.Name, s.game); err == nil && existing != nil {
		team.Name = existing.Name
	}

	teamID, err := s.teams.Upsert(ctx, &team)
	if err != nil {
		return nil, err
	}
	team.ID = teamID

	synced := 0
	for _, raw := range rawPlayers {
		nickname := raw.Nickname
		if existing, err := s.resolver.ResolvePlayer(ctx, raw.Nickname, s.game); err == nil && existing != nil {
			nickname = existing.Nickname
		}
		_, err := s.players.Upsert(ctx, &domain.Player{
			Nickname: nickname,
			Game:     s.game,
			RealName: raw.RealName,
			TeamID:   &teamID,
			Role:     raw.Role,
			Country:  raw.Country,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("nickname", raw.Nickname).Msg("player upsert failed")
			continue
		}
		synced++
	}

	s.logger.Info().
		Str("team", team.Name).
		Int("players", synced).
		Msg("roster synced")
	return &team, nil
}
