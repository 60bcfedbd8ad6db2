package service

import (
	"context"
	"errors"
	"testing"

	"esports-oracle/internal/domain"
	"esports-oracle/internal/reconcile"
	"esports-oracle/internal/repository"
	"esports-oracle/internal/scrape"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRosterSource struct {
	team    *scrape.RawTeam
	players []scrape.RawPlayer
	err     error
}

func (s *stubRosterSource) TeamProfile(ctx context.Context, name string) (*scrape.RawTeam, []scrape.RawPlayer, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.team, s.players, nil
}

func newRosterFixture(t *testing.T, source scrape.RosterSource) (*RosterService, *repository.TeamRepository, *repository.PlayerRepository) {
	t.Helper()
	db := newTestDB(t)
	teams := repository.NewTeamRepository(db, zerolog.Nop())
	players := repository.NewPlayerRepository(db, zerolog.Nop())
	resolver := reconcile.NewResolver(teams, players, zerolog.Nop())
	return NewRosterService(source, "valorant", teams, players, resolver, zerolog.Nop()), teams, players
}

func TestSyncTeamStoresTeamAndRoster(t *testing.T) {
	source := &stubRosterSource{
		team: &scrape.RawTeam{
			Name:    "Sentinels",
			Region:  domain.RegionAmericas,
			Country: "United States",
			LogoURL: "https://example.com/sen.png",
		},
		players: []scrape.RawPlayer{
			{Nickname: "TenZ", RealName: "Tyson Ngo", Role: "Duelist", Country: "Canada"},
			{Nickname: "zekken", RealName: "Zachary Patrone", Country: "United States"},
		},
	}
	svc, teams, players := newRosterFixture(t, source)

	team, err := svc.SyncTeam(context.Background(), "Sentinels")
	require.NoError(t, err)
	require.NotNil(t, team)
	assert.NotZero(t, team.ID)

	stored, err := teams.GetByName(context.Background(), "Sentinels", "valorant")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.RegionAmericas, stored.Region)

	roster, err := players.ListByTeam(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 2)
}

func TestSyncTeamReconcilesAgainstExistingTeam(t *testing.T) {
	source := &stubRosterSource{
		team: &scrape.RawTeam{Name: "SEN", Region: domain.RegionAmericas},
	}
	svc, teams, _ := newRosterFixture(t, source)

	_, err := teams.Upsert(context.Background(), &domain.Team{Name: "Sentinels", Game: "valorant"})
	require.NoError(t, err)

	team, err := svc.SyncTeam(context.Background(), "SEN")
	require.NoError(t, err)
	assert.Equal(t, "Sentinels", team.Name)

	all, err := teams.ListByGame(context.Background(), "valorant")
	require.NoError(t, err)
	assert.Len(t, all, 1, "the alias refreshes the existing row")
}

func TestSyncTeamPropagatesFetchFailure(t *testing.T) {
	svc, _, _ := newRosterFixture(t, &stubRosterSource{err: errors.New("blocked")})

	_, err := svc.SyncTeam(context.Background(), "Sentinels")
	assert.Error(t, err)
}
