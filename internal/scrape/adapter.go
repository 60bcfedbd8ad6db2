// Package scrape holds the per-site source adapters. Each adapter
// turns one site's HTML into the shared raw record shape; everything
// downstream of the raw shape is site-agnostic.
package scrape

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"esports-oracle/internal/domain"
)

// RawMatch is one match row as extracted from a list page, before
// normalization. Scores stay nullable because most list rows have none.
type RawMatch struct {
	Source        string
	SourceMatchID string
	Team1         string
	Team2         string
	Tournament    string
	Game          string
	ScheduledAt   time.Time
	Score1        *int
	Score2        *int
	Live          bool
	BestOf        int
	Region        domain.Region
	Importance    int
	DetailPath    string
}

type RawMapScore struct {
	Label  string
	Score1 int
	Score2 int
}

type RawPlayerLine struct {
	Nickname string
	Team     string
	MapLabel string
	Kills    int
	Deaths   int
	Assists  int
	ACS      float64
	Country  string
}

type RawMatchDetail struct {
	Match   RawMatch
	Maps    []RawMapScore
	Players []RawPlayerLine
}

type RawTeam struct {
	Name        string
	Game        string
	Region      domain.Region
	Country     string
	LogoURL     string
	Description string
	ProfileURL  string
}

type RawPlayer struct {
	Nickname string
	Game     string
	RealName string
	Team     string
	Role     string
	Country  string
}

// Adapter is the per-site extraction contract. A nil-error return with
// an empty slice is a legitimate outcome (page had nothing usable);
// individual malformed rows are skipped, never fatal to the batch.
type Adapter interface {
	Source() string
	Game() string
	ListMatches(ctx context.Context) ([]RawMatch, error)
	MatchDetails(ctx context.Context, ref string) (*RawMatchDetail, error)
}

// RosterSource is implemented by adapters that can also scrape a team
// profile page with its active roster.
type RosterSource interface {
	TeamProfile(ctx context.Context, name string) (*RawTeam, []RawPlayer, error)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs and trims. All extracted strings
// pass through here before leaving an adapter.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ParseScore turns a scraped score cell into a nullable int. Dashes,
// "vs" and empty cells all mean "no score yet".
func ParseScore(s string) *int {
	s = CleanText(s)
	if s == "" || s == "-" || s == "–" || strings.EqualFold(s, "vs") {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// ParseBestOf extracts N from strings like "Bo3" or "Best of 5".
func ParseBestOf(s string) int {
	s = strings.ToLower(CleanText(s))
	s = strings.TrimPrefix(s, "best of")
	s = strings.TrimPrefix(s, "bo")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
