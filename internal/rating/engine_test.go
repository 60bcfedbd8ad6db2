package rating

import (
	"context"
	"errors"
	"testing"
	"time"

	"esports-oracle/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHistory struct {
	byTeam map[string][]domain.Match
	h2h    []domain.Match
}

func (s *stubHistory) CompletedMatchesForTeam(ctx context.Context, team, game string) ([]domain.Match, error) {
	return s.byTeam[team], nil
}

func (s *stubHistory) HeadToHead(ctx context.Context, team1, team2, game string, limit int) ([]domain.Match, error) {
	if len(s.h2h) > limit {
		return s.h2h[:limit], nil
	}
	return s.h2h, nil
}

type stubTeams struct {
	teams   []domain.Team
	updated map[int64]int
}

func (s *stubTeams) ListByGame(ctx context.Context, game string) ([]domain.Team, error) {
	return s.teams, nil
}

func (s *stubTeams) GetByName(ctx context.Context, name, game string) (*domain.Team, error) {
	for i := range s.teams {
		if s.teams[i].Name == name {
			return &s.teams[i], nil
		}
	}
	return nil, nil
}

func (s *stubTeams) UpdateRating(ctx context.Context, id int64, rating int, at time.Time) error {
	if s.updated == nil {
		s.updated = map[int64]int{}
	}
	s.updated[id] = rating
	return nil
}

func newTestEngine(h *stubHistory, t *stubTeams, e Enricher) *Engine {
	return NewEngine(h, t, e, zerolog.Nop())
}

func TestRatingFromHistoryNoHistory(t *testing.T) {
	e := newTestEngine(&stubHistory{byTeam: map[string][]domain.Match{}}, &stubTeams{}, nil)
	r, err := e.RatingFromHistory(context.Background(), "Sentinels", "valorant")
	require.NoError(t, err)
	assert.Equal(t, domain.BaseRating, r)
}

func TestPredictSymmetricUnderTeamSwap(t *testing.T) {
	h := &stubHistory{byTeam: map[string][]domain.Match{
		"Sentinels": {
			completed("Sentinels", "DRX", 2, 0, 1),
			completed("Sentinels", "DRX", 2, 1, 2),
		},
		"Fnatic": {
			completed("Fnatic", "DRX", 0, 2, 1),
		},
	}}
	teams := &stubTeams{teams: []domain.Team{
		{ID: 1, Name: "Sentinels", Game: "valorant", Rating: 1620},
		{ID: 2, Name: "Fnatic", Game: "valorant", Rating: 1480},
	}}
	e := newTestEngine(h, teams, nil)

	p1, err := e.Predict(context.Background(), "Sentinels", "Fnatic", "valorant")
	require.NoError(t, err)
	p2, err := e.Predict(context.Background(), "Fnatic", "Sentinels", "valorant")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, p1+p2, 1e-9)
	assert.Greater(t, p1, 50.0)
}

func TestPredictClampedUnderExtremeSkew(t *testing.T) {
	teams := &stubTeams{teams: []domain.Team{
		{ID: 1, Name: "Goliath", Game: "valorant", Rating: 2400},
		{ID: 2, Name: "David", Game: "valorant", Rating: 1400},
	}}
	e := newTestEngine(&stubHistory{byTeam: map[string][]domain.Match{}}, teams, nil)

	p, err := e.Predict(context.Background(), "Goliath", "David", "valorant")
	require.NoError(t, err)
	assert.Equal(t, 95.0, p)

	p, err = e.Predict(context.Background(), "David", "Goliath", "valorant")
	require.NoError(t, err)
	assert.Equal(t, 5.0, p)
}

type failingEnricher struct{}

func (failingEnricher) Enrich(ctx context.Context, req EnrichmentRequest) (*EnrichmentResponse, error) {
	return nil, errors.New("timeout")
}

type fixedEnricher struct{ pct float64 }

func (f fixedEnricher) Enrich(ctx context.Context, req EnrichmentRequest) (*EnrichmentResponse, error) {
	return &EnrichmentResponse{Team1WinPct: f.pct, Rationale: "because", SourceTag: "llm"}, nil
}

func TestPredictMatchFallsBackWhenEnrichmentFails(t *testing.T) {
	teams := &stubTeams{teams: []domain.Team{
		{ID: 1, Name: "Sentinels", Game: "valorant", Rating: 1500},
		{ID: 2, Name: "Fnatic", Game: "valorant", Rating: 1500},
	}}
	e := newTestEngine(&stubHistory{byTeam: map[string][]domain.Match{}}, teams, failingEnricher{})

	match := &domain.Match{Team1: "Sentinels", Team2: "Fnatic", Game: "valorant"}
	p, err := e.PredictMatch(context.Background(), match)
	require.NoError(t, err)
	assert.Equal(t, domain.PredictionSourceRating, p.Source)
	assert.Equal(t, 50.0, p.Team1WinPct)
	assert.NotEmpty(t, p.ID)
}

func TestPredictMatchUsesEnrichmentWhenAvailable(t *testing.T) {
	teams := &stubTeams{teams: []domain.Team{{ID: 1, Name: "Sentinels", Game: "valorant", Rating: 1500}}}
	e := newTestEngine(&stubHistory{byTeam: map[string][]domain.Match{}}, teams, fixedEnricher{pct: 99})

	match := &domain.Match{Team1: "Sentinels", Team2: "Fnatic", Game: "valorant"}
	p, err := e.PredictMatch(context.Background(), match)
	require.NoError(t, err)
	assert.Equal(t, domain.PredictionSourceExternal, p.Source)
	assert.Equal(t, 95.0, p.Team1WinPct, "even external probabilities get clamped")
	assert.Equal(t, "because", p.Rationale)
}

func TestRecalculateAllPersistsRatings(t *testing.T) {
	h := &stubHistory{byTeam: map[string][]domain.Match{
		"Sentinels": {completed("Sentinels", "Fnatic", 2, 0, 1)},
		"Fnatic":    {completed("Sentinels", "Fnatic", 2, 0, 1)},
	}}
	teams := &stubTeams{teams: []domain.Team{
		{ID: 1, Name: "Sentinels", Game: "valorant"},
		{ID: 2, Name: "Fnatic", Game: "valorant"},
	}}
	e := newTestEngine(h, teams, nil)

	n, err := e.RecalculateAll(context.Background(), "valorant", false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Greater(t, teams.updated[1], domain.BaseRating)
	assert.Less(t, teams.updated[2], domain.BaseRating)
}

func TestRecalculateAllSkipsFreshRatingsUnlessForced(t *testing.T) {
	teams := &stubTeams{teams: []domain.Team{
		{ID: 1, Name: "Sentinels", Game: "valorant", Rating: 1600, RatingUpdatedAt: time.Now()},
	}}
	e := newTestEngine(&stubHistory{byTeam: map[string][]domain.Match{}}, teams, nil)

	n, err := e.RecalculateAll(context.Background(), "valorant", false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = e.RecalculateAll(context.Background(), "valorant", true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
