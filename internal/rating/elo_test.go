package rating

import (
	"testing"
	"time"

	"esports-oracle/internal/domain"

	"github.com/stretchr/testify/assert"
)

func intp(n int) *int { return &n }

func completed(team1, team2 string, s1, s2 int, day int) domain.Match {
	return domain.Match{
		Team1:       team1,
		Team2:       team2,
		Game:        "valorant",
		Status:      domain.StatusCompleted,
		Score1:      intp(s1),
		Score2:      intp(s2),
		ScheduledAt: time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestReplayEmptyHistoryYieldsBaseRating(t *testing.T) {
	assert.Equal(t, domain.BaseRating, Replay(nil, "Sentinels", nil))
	assert.Equal(t, domain.BaseRating, Replay([]domain.Match{}, "Sentinels", nil))
}

func TestReplayWinsRaiseAndLossesLower(t *testing.T) {
	wins := []domain.Match{
		completed("Sentinels", "Fnatic", 2, 0, 1),
		completed("Sentinels", "DRX", 2, 1, 2),
	}
	r := Replay(wins, "Sentinels", nil)
	assert.Greater(t, r, domain.BaseRating)

	losses := []domain.Match{
		completed("Sentinels", "Fnatic", 0, 2, 1),
		completed("DRX", "Sentinels", 2, 0, 2),
	}
	assert.Less(t, Replay(losses, "Sentinels", nil), domain.BaseRating)
}

func TestReplaySkipsDraws(t *testing.T) {
	draws := []domain.Match{
		completed("Sentinels", "Fnatic", 1, 1, 1),
		completed("Sentinels", "DRX", 1, 1, 2),
	}
	assert.Equal(t, domain.BaseRating, Replay(draws, "Sentinels", nil))
}

func TestReplayClampsToBounds(t *testing.T) {
	var many []domain.Match
	for i := 0; i < 200; i++ {
		many = append(many, completed("Sentinels", "Fnatic", 2, 0, 1+i%28))
	}
	assert.Equal(t, domain.MaxRating, Replay(many, "Sentinels", func(string) int { return domain.MaxRating }))

	for i := range many {
		many[i].Score1, many[i].Score2 = intp(0), intp(2)
	}
	assert.Equal(t, domain.MinRating, Replay(many, "Sentinels", func(string) int { return domain.MinRating }))
}

func TestWinProbabilitySymmetry(t *testing.T) {
	for _, pair := range [][2]int{{1500, 1500}, {1800, 1400}, {2400, 800}} {
		pa := WinProbability(pair[0], pair[1])
		pb := WinProbability(pair[1], pair[0])
		assert.InDelta(t, 1.0, pa+pb, 1e-9)
	}
	assert.InDelta(t, 0.5, WinProbability(1500, 1500), 1e-9)
}

func TestClampProbability(t *testing.T) {
	assert.Equal(t, 5.0, ClampProbability(0))
	assert.Equal(t, 5.0, ClampProbability(1.2))
	assert.Equal(t, 95.0, ClampProbability(99.99))
	assert.Equal(t, 50.0, ClampProbability(50))
}

func TestBlendRequiresMinimumH2H(t *testing.T) {
	// Two head-to-head games are below the trust floor; pure ELO wins.
	assert.Equal(t, 50.0, blend(0.5, 2, 2))
	// Three games flip the blend on.
	assert.InDelta(t, 0.7*50+0.3*100, blend(0.5, 3, 3), 1e-9)
}

func TestBlendIsClamped(t *testing.T) {
	assert.Equal(t, 95.0, blend(0.999, 10, 10))
	assert.Equal(t, 5.0, blend(0.001, 0, 10))
}
