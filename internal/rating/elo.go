// Package rating converts persisted match history into team ratings
// and win-probability predictions.
package rating

import (
	"math"

	"esports-oracle/internal/domain"
)

const (
	// KFactor is fixed; esports rosters churn too fast for the
	// provisional/established split classic chess ELO uses.
	KFactor = 32

	// H2HWindow is how many recent head-to-head matches feed the blend;
	// H2HMinMatches is the floor below which head-to-head is noise and
	// the blend falls back to pure ELO.
	H2HWindow     = 10
	H2HMinMatches = 3

	// EloWeight vs head-to-head weight in the final blend.
	EloWeight = 0.7

	MinProbability = 5.0
	MaxProbability = 95.0
)

// expectedScore is the logistic ELO expectation for self against opp.
func expectedScore(self, opp float64) float64 {
	return 1 / (1 + math.Pow(10, (opp-self)/400))
}

func clampRating(r float64) int {
	if r < domain.MinRating {
		return domain.MinRating
	}
	if r > domain.MaxRating {
		return domain.MaxRating
	}
	return int(math.Round(r))
}

// ClampProbability bounds a percentage to [5, 95]: no outcome is ever
// treated as certain, whatever the rating gap says.
func ClampProbability(pct float64) float64 {
	if pct < MinProbability {
		return MinProbability
	}
	if pct > MaxProbability {
		return MaxProbability
	}
	return pct
}

// Replay walks a team's completed matches in chronological order from
// the base rating, applying one ELO update per decided match. Draws
// are skipped. opponentRating supplies the live approximate rating for
// a known opponent, or the base rating otherwise. An empty history
// yields exactly the base rating.
func Replay(matches []domain.Match, team string, opponentRating func(name string) int) int {
	r := float64(domain.BaseRating)
	for i := range matches {
		m := &matches[i]
		winner := m.Winner()
		if winner == "" {
			continue
		}

		opponent := m.Team1
		if opponent == team {
			opponent = m.Team2
		}
		opp := float64(domain.BaseRating)
		if opponentRating != nil {
			opp = float64(opponentRating(opponent))
		}

		actual := 0.0
		if winner == team {
			actual = 1.0
		}
		r += KFactor * (actual - expectedScore(r, opp))
	}
	return clampRating(r)
}

// WinProbability is the ELO-implied chance (0..1) that a rated team
// beats b.
func WinProbability(a, b int) float64 {
	return expectedScore(float64(a), float64(b))
}

// blend mixes the ELO probability with a head-to-head win rate when
// enough head-to-head history exists, then converts to a clamped
// percentage.
func blend(eloProb float64, h2hWins, h2hTotal int) float64 {
	pct := eloProb * 100
	if h2hTotal >= H2HMinMatches {
		h2hPct := float64(h2hWins) / float64(h2hTotal) * 100
		pct = EloWeight*pct + (1-EloWeight)*h2hPct
	}
	return ClampProbability(pct)
}
