package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"esports-oracle/internal/domain"
	"esports-oracle/internal/fetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const (
	SourceBo3 = "bo3"
	bo3Game   = "cs2"
)

// Bo3Adapter scrapes the CS stats site.
type Bo3Adapter struct {
	fetch  *fetch.Client
	logger zerolog.Logger
}

func NewBo3Adapter(fc *fetch.Client, logger zerolog.Logger) *Bo3Adapter {
	return &Bo3Adapter{fetch: fc, logger: logger.With().Str("adapter", SourceBo3).Logger()}
}

func (a *Bo3Adapter) Source() string { return SourceBo3 }
func (a *Bo3Adapter) Game() string   { return bo3Game }

func (a *Bo3Adapter) ListMatches(ctx context.Context) ([]RawMatch, error) {
	var out []RawMatch
	for _, path := range []string{"/matches/current", "/matches/finished"} {
		body, err := a.fetch.Get(ctx, path)
		if err != nil {
			a.logger.Warn().Err(err).Str("path", path).Msg("list page failed, continuing with partial batch")
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
		if err != nil {
			return nil, fmt.Errorf("bo3: build document: %w", err)
		}
		out = append(out, a.parseMatchList(doc)...)
	}
	a.logger.Info().Int("count", len(out)).Msg("match list scraped")
	return out, nil
}

func (a *Bo3Adapter) parseMatchList(doc *goquery.Document) []RawMatch {
	var out []RawMatch
	doc.Find("div.table-row.c-global-match").Each(func(_ int, row *goquery.Selection) {
		raw, ok := a.parseMatchRow(row)
		if !ok {
			return
		}
		out = append(out, raw)
	})
	return out
}

func (a *Bo3Adapter) parseMatchRow(row *goquery.Selection) (RawMatch, bool) {
	names := row.Find(".team-name")
	if names.Length() < 2 {
		return RawMatch{}, false
	}
	team1 := CleanText(names.Eq(0).Text())
	team2 := CleanText(names.Eq(1).Text())
	if team1 == "" || team2 == "" {
		return RawMatch{}, false
	}

	raw := RawMatch{
		Source: SourceBo3,
		Game:   bo3Game,
		Team1:  team1,
		Team2:  team2,
	}

	if href, ok := row.Find("a.c-global-match-link").First().Attr("href"); ok {
		raw.DetailPath = href
		// hrefs look like /matches/team-a-vs-team-b-18211
		if idx := strings.LastIndex(href, "-"); idx >= 0 && idx < len(href)-1 {
			raw.SourceMatchID = href[idx+1:]
		}
	}

	scores := row.Find(".match-score .score")
	if scores.Length() >= 2 {
		raw.Score1 = ParseScore(scores.Eq(0).Text())
		raw.Score2 = ParseScore(scores.Eq(1).Text())
	}

	raw.Live = row.HasClass("table-row--live") ||
		strings.EqualFold(CleanText(row.Find(".match-status").Text()), "live")

	raw.Tournament = CleanText(row.Find(".tournament-name").First().Text())
	raw.Region = DetectRegion(raw.Tournament)
	raw.Importance = ImportanceScore(raw.Tournament)
	raw.BestOf = ParseBestOf(row.Find(".bo-type").First().Text())

	if dt, ok := row.Find("time").First().Attr("datetime"); ok {
		if t, err := time.Parse(time.RFC3339, dt); err == nil {
			raw.ScheduledAt = t.UTC()
		}
	}
	return raw, true
}

func (a *Bo3Adapter) MatchDetails(ctx context.Context, ref string) (*RawMatchDetail, error) {
	body, err := a.fetch.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("bo3: build document: %w", err)
	}
	return a.parseMatchDetail(doc, ref), nil
}

func (a *Bo3Adapter) parseMatchDetail(doc *goquery.Document, ref string) *RawMatchDetail {
	detail := &RawMatchDetail{Match: RawMatch{Source: SourceBo3, Game: bo3Game, DetailPath: ref}}

	names := doc.Find(".match-header .team-name")
	if names.Length() >= 2 {
		detail.Match.Team1 = CleanText(names.Eq(0).Text())
		detail.Match.Team2 = CleanText(names.Eq(1).Text())
	}

	doc.Find(".c-match-map").Each(func(_ int, m *goquery.Selection) {
		label := CleanText(m.Find(".map-name").First().Text())
		if label == "" {
			return
		}
		s1, s2 := splitScorePair(m.Find(".map-score").First().Text(), ":")
		if s1 == nil || s2 == nil {
			return
		}
		detail.Maps = append(detail.Maps, RawMapScore{Label: label, Score1: *s1, Score2: *s2})
	})

	doc.Find("table.player-stats").Each(func(tblIdx int, tbl *goquery.Selection) {
		teamName := detail.Match.Team1
		if tblIdx == 1 {
			teamName = detail.Match.Team2
		}
		tbl.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			nick := CleanText(row.Find(".player-nickname").First().Text())
			if nick == "" {
				return
			}
			line := RawPlayerLine{
				Nickname: nick,
				Team:     teamName,
				MapLabel: domain.MapLabelAll,
				Country:  flagTitle(row.Find(".player-flag img").First()),
			}
			if k := ParseScore(row.Find("td.st-kills").First().Text()); k != nil {
				line.Kills = *k
			}
			if d := ParseScore(row.Find("td.st-deaths").First().Text()); d != nil {
				line.Deaths = *d
			}
			if as := ParseScore(row.Find("td.st-assists").First().Text()); as != nil {
				line.Assists = *as
			}
			detail.Players = append(detail.Players, line)
		})
	})
	return detail
}

var _ Adapter = (*Bo3Adapter)(nil)
