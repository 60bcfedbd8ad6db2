// Package classify is the pure raw-record-to-canonical-match step.
// No I/O happens here; everything is a function of its arguments.
package classify

import (
	"errors"
	"time"

	"esports-oracle/internal/domain"
	"esports-oracle/internal/scrape"
)

// ErrNoTeams marks a raw record where neither side resolved to a
// usable team name. Callers skip the record, never the batch.
var ErrNoTeams = errors.New("classify: no team names resolved")

// StatusFromScores is the status heuristic, kept as one named function
// so the policy can be revisited without touching ingestion plumbing:
// an explicit live flag wins; otherwise an extractable score pair means
// completed — except 0-0, which is presumed "not yet played" rather
// than a real result. A genuine 0-0 forfeit is misread as upcoming
// until a later detail scrape corrects it.
func StatusFromScores(score1, score2 *int, live bool) domain.MatchStatus {
	if live {
		return domain.StatusLive
	}
	if score1 != nil && score2 != nil {
		if *score1 == 0 && *score2 == 0 {
			return domain.StatusUpcoming
		}
		return domain.StatusCompleted
	}
	return domain.StatusUpcoming
}

// Normalize turns one raw adapter record into canonical match fields.
// Half-present score pairs are dropped rather than surfaced as errors,
// and the score/status invariant (scores set iff not upcoming) is
// enforced here so nothing downstream needs to re-check it.
func Normalize(raw scrape.RawMatch) (domain.Match, error) {
	team1 := scrape.CleanText(raw.Team1)
	team2 := scrape.CleanText(raw.Team2)
	if team1 == "" || team2 == "" {
		return domain.Match{}, ErrNoTeams
	}

	score1, score2 := raw.Score1, raw.Score2
	if (score1 == nil) != (score2 == nil) {
		score1, score2 = nil, nil
	}
	if score1 != nil && (*score1 < 0 || *score2 < 0) {
		score1, score2 = nil, nil
	}

	status := StatusFromScores(score1, score2, raw.Live)
	if status == domain.StatusUpcoming {
		score1, score2 = nil, nil
	}
	// Scores are non-null iff the match has started: a live row whose
	// listing carries no score cell is a 0-0 in progress.
	if status == domain.StatusLive && score1 == nil {
		zero1, zero2 := 0, 0
		score1, score2 = &zero1, &zero2
	}

	region := raw.Region
	if region == "" {
		region = domain.RegionUnknown
	}

	importance := raw.Importance
	if importance < 0 {
		importance = 0
	}
	if importance > scrape.MaxImportance {
		importance = scrape.MaxImportance
	}

	m := domain.Match{
		Team1:       team1,
		Team2:       team2,
		Game:        raw.Game,
		Tournament:  scrape.CleanText(raw.Tournament),
		Region:      region,
		ScheduledAt: raw.ScheduledAt.UTC().Truncate(time.Minute),
		Score1:      score1,
		Score2:      score2,
		Status:      status,
		BestOf:      raw.BestOf,
		Importance:  importance,
		SourceIDs:   map[string]string{},
	}
	if raw.SourceMatchID != "" {
		m.SourceIDs[raw.Source] = raw.SourceMatchID
	}
	if raw.DetailPath != "" {
		m.DetailPaths = map[string]string{raw.Source: raw.DetailPath}
	}
	return m, nil
}
