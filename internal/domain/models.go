package domain

import (
	"time"
)

type Region string

const (
	RegionAmericas      Region = "americas"
	RegionEMEA          Region = "emea"
	RegionPacific       Region = "pacific"
	RegionInternational Region = "international"
	RegionOther         Region = "other"
	RegionUnknown       Region = "unknown"
)

type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusLive      MatchStatus = "live"
	StatusCompleted MatchStatus = "completed"
)

// StatusRank orders statuses along the only legal transition path
// upcoming -> live -> completed. Transitions never go backward.
func StatusRank(s MatchStatus) int {
	switch s {
	case StatusUpcoming:
		return 0
	case StatusLive:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

const (
	PredictionSourceRating   = "rating-engine"
	PredictionSourceExternal = "external-ai"
)

type Prediction struct {
	ID          string // nanoid
	Team1WinPct float64
	Rationale   string
	Source      string // "rating-engine" or "external-ai"
}

type Match struct {
	ID          int64
	Team1       string
	Team2       string
	Game        string
	Tournament  string
	Region      Region
	ScheduledAt time.Time
	Score1      *int
	Score2      *int
	Status      MatchStatus
	BestOf      int
	Importance  int

	// Native ids keyed by source name, so a fourth source is a new map
	// entry rather than a schema change.
	SourceIDs map[string]string

	// Per-source detail page paths. Source ids are opaque tokens, not
	// URLs; detail fetches need the path the listing row pointed at.
	DetailPaths map[string]string

	Prediction *Prediction

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Winner returns the winning team name for a completed match, or "" for
// a draw or a match without scores.
func (m *Match) Winner() string {
	if m.Score1 == nil || m.Score2 == nil {
		return ""
	}
	switch {
	case *m.Score1 > *m.Score2:
		return m.Team1
	case *m.Score2 > *m.Score1:
		return m.Team2
	}
	return ""
}

const (
	BaseRating = 1500
	MinRating  = 800
	MaxRating  = 2400
)

type Team struct {
	ID          int64
	Name        string
	Game        string
	Region      Region
	Country     string
	LogoURL     string
	Description string
	ProfileURL  string

	Rating          int
	RatingUpdatedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Player struct {
	ID       int64
	Nickname string
	Game     string
	RealName string

	// Weak reference: the team may be removed later, in which case this
	// nulls out rather than cascading.
	TeamID *int64

	Role       string
	Country    string
	ProfileURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MapLabelAll is the sentinel map label for whole-match aggregate stats.
const MapLabelAll = "all"

type PlayerStat struct {
	ID         string // nanoid
	MatchID    int64
	PlayerName string
	MapLabel   string
	Source     string
	Kills      int
	Deaths     int
	Assists    int
	ACS        float64
	CreatedAt  time.Time
}

type MapScore struct {
	ID      int64
	MatchID int64
	Label   string
	Score1  int
	Score2  int
}
