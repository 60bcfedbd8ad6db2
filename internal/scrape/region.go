package scrape

import (
	"strings"

	"esports-oracle/internal/domain"
)

// Keyword tables are checked in order; international events often
// carry a regional league name too ("Masters Madrid"), so the
// international bucket is tested first.
var regionKeywords = []struct {
	region   domain.Region
	keywords []string
}{
	{domain.RegionInternational, []string{
		"masters", "champions", "world championship", "major", "international", "global",
	}},
	{domain.RegionAmericas, []string{
		"americas", "north america", "latam", "latin america", "brazil", "na challengers", "south america",
	}},
	{domain.RegionEMEA, []string{
		"emea", "europe", "european", "cis", "mena", "middle east", "turkey", "turkiye",
	}},
	{domain.RegionPacific, []string{
		"pacific", "apac", "asia", "korea", "japan", "china", "sea ", "oceania", "southeast",
	}},
}

// DetectRegion classifies a tournament name by keyword. Pure function:
// the same name always yields the same region. Unmatched names fall to
// Other, not Unknown — Unknown is reserved for records with no
// tournament at all.
func DetectRegion(tournament string) domain.Region {
	name := strings.ToLower(CleanText(tournament))
	if name == "" {
		return domain.RegionUnknown
	}
	for _, entry := range regionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(name, kw) {
				return entry.region
			}
		}
	}
	return domain.RegionOther
}

const MaxImportance = 100

var tierKeywords = []struct {
	keyword string
	score   int
}{
	{"champions", 40},
	{"masters", 35},
	{"major", 35},
	{"world championship", 30},
	{"international", 20},
	{"challengers", 15},
	{"ascension", 15},
	{"open", 5},
}

var stageKeywords = []struct {
	keyword string
	score   int
}{
	{"grand final", 30},
	{"final", 20},
	{"semifinal", 15},
	{"playoff", 15},
	{"upper bracket", 10},
	{"lower bracket", 10},
	{"qualifier", 5},
}

// ImportanceScore is an additive heuristic over tournament tier and
// playoff-stage keywords, capped at MaxImportance. Only the first
// matching keyword per table counts, so "Grand Final" does not also
// score as "Final".
func ImportanceScore(tournament string) int {
	name := strings.ToLower(CleanText(tournament))
	score := 0
	for _, t := range tierKeywords {
		if strings.Contains(name, t.keyword) {
			score += t.score
			break
		}
	}
	for _, s := range stageKeywords {
		if strings.Contains(name, s.keyword) {
			score += s.score
			break
		}
	}
	if score > MaxImportance {
		score = MaxImportance
	}
	return score
}
