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
	SourceVlr   = "vlr"
	vlrGame     = "valorant"
	vlrTimeAttr = "2006-01-02 15:04:05"
)

// VlrAdapter scrapes the valorant stats site. List pages come in two
// flavors (schedule and results) that share the row markup.
type VlrAdapter struct {
	fetch  *fetch.Client
	logger zerolog.Logger
}

func NewVlrAdapter(fc *fetch.Client, logger zerolog.Logger) *VlrAdapter {
	return &VlrAdapter{fetch: fc, logger: logger.With().Str("adapter", SourceVlr).Logger()}
}

func (a *VlrAdapter) Source() string { return SourceVlr }
func (a *VlrAdapter) Game() string   { return vlrGame }

func (a *VlrAdapter) ListMatches(ctx context.Context) ([]RawMatch, error) {
	var out []RawMatch
	for _, path := range []string{"/matches", "/matches/results"} {
		body, err := a.fetch.Get(ctx, path)
		if err != nil {
			// One failing page must not sink the other's records.
			a.logger.Warn().Err(err).Str("path", path).Msg("list page failed, continuing with partial batch")
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
		if err != nil {
			return nil, fmt.Errorf("vlr: build document: %w", err)
		}
		out = append(out, a.parseMatchList(doc)...)
	}
	a.logger.Info().Int("count", len(out)).Msg("match list scraped")
	return out, nil
}

func (a *VlrAdapter) parseMatchList(doc *goquery.Document) []RawMatch {
	var out []RawMatch
	doc.Find("a.match-item").Each(func(_ int, item *goquery.Selection) {
		raw, ok := a.parseMatchItem(item)
		if !ok {
			return
		}
		out = append(out, raw)
	})
	return out
}

func (a *VlrAdapter) parseMatchItem(item *goquery.Selection) (RawMatch, bool) {
	names := item.Find(".match-item-vs-team-name")
	if names.Length() < 2 {
		return RawMatch{}, false
	}
	team1 := CleanText(names.Eq(0).Text())
	team2 := CleanText(names.Eq(1).Text())
	if team1 == "" || team2 == "" || strings.EqualFold(team1, "tbd") || strings.EqualFold(team2, "tbd") {
		return RawMatch{}, false
	}

	raw := RawMatch{
		Source: SourceVlr,
		Game:   vlrGame,
		Team1:  team1,
		Team2:  team2,
	}

	if href, ok := item.Attr("href"); ok {
		raw.DetailPath = href
		// hrefs look like /353177/team-a-vs-team-b-...
		parts := strings.SplitN(strings.TrimPrefix(href, "/"), "/", 2)
		if len(parts) > 0 && parts[0] != "" {
			raw.SourceMatchID = parts[0]
		}
	}

	scores := item.Find(".match-item-vs-team-score")
	if scores.Length() >= 2 {
		raw.Score1 = ParseScore(scores.Eq(0).Text())
		raw.Score2 = ParseScore(scores.Eq(1).Text())
	}

	raw.Live = strings.EqualFold(CleanText(item.Find(".ml-status").Text()), "live")

	event := CleanText(item.Find(".match-item-event").Contents().Not(".match-item-event-series").Text())
	series := CleanText(item.Find(".match-item-event-series").Text())
	raw.Tournament = CleanText(event + " " + series)
	raw.Region = DetectRegion(raw.Tournament)
	raw.Importance = ImportanceScore(raw.Tournament)

	if ts, ok := item.Attr("data-utc-ts"); ok {
		if t, err := time.Parse(vlrTimeAttr, ts); err == nil {
			raw.ScheduledAt = t.UTC()
		}
	}
	return raw, true
}

func (a *VlrAdapter) MatchDetails(ctx context.Context, ref string) (*RawMatchDetail, error) {
	body, err := a.fetch.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("vlr: build document: %w", err)
	}
	return a.parseMatchDetail(doc, ref), nil
}

func (a *VlrAdapter) parseMatchDetail(doc *goquery.Document, ref string) *RawMatchDetail {
	detail := &RawMatchDetail{Match: RawMatch{Source: SourceVlr, Game: vlrGame, DetailPath: ref}}

	names := doc.Find(".match-header-vs .wf-title-med")
	if names.Length() >= 2 {
		detail.Match.Team1 = CleanText(names.Eq(0).Text())
		detail.Match.Team2 = CleanText(names.Eq(1).Text())
	}
	detail.Match.BestOf = ParseBestOf(doc.Find(".match-header-vs-note").Last().Text())

	doc.Find(".vm-stats-game").Each(func(_ int, game *goquery.Selection) {
		gameID, _ := game.Attr("data-game-id")
		label := CleanText(game.Find(".map span").First().Text())
		if gameID == "all" {
			label = domain.MapLabelAll
		}
		if label == "" {
			return
		}

		scores := game.Find(".score")
		if gameID != "all" && scores.Length() >= 2 {
			s1 := ParseScore(scores.Eq(0).Text())
			s2 := ParseScore(scores.Eq(1).Text())
			if s1 != nil && s2 != nil {
				detail.Maps = append(detail.Maps, RawMapScore{Label: label, Score1: *s1, Score2: *s2})
			}
		}

		game.Find("table.wf-table-inset").Each(func(tblIdx int, tbl *goquery.Selection) {
			teamName := detail.Match.Team1
			if tblIdx == 1 {
				teamName = detail.Match.Team2
			}
			tbl.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
				line, ok := parseVlrStatRow(row, teamName, label)
				if !ok {
					return
				}
				detail.Players = append(detail.Players, line)
			})
		})
	})
	return detail
}

func parseVlrStatRow(row *goquery.Selection, team, mapLabel string) (RawPlayerLine, bool) {
	nick := CleanText(row.Find(".mod-player .text-of").First().Text())
	if nick == "" {
		return RawPlayerLine{}, false
	}
	line := RawPlayerLine{
		Nickname: nick,
		Team:     team,
		MapLabel: mapLabel,
		Country:  flagTitle(row.Find(".mod-player img").First()),
	}
	if k := ParseScore(row.Find("td.mod-vlr-kills .mod-both").First().Text()); k != nil {
		line.Kills = *k
	}
	if d := ParseScore(row.Find("td.mod-vlr-deaths .mod-both").First().Text()); d != nil {
		line.Deaths = *d
	}
	if as := ParseScore(row.Find("td.mod-vlr-assists .mod-both").First().Text()); as != nil {
		line.Assists = *as
	}
	if acs := ParseScore(row.Find("td.mod-stat .mod-both").First().Text()); acs != nil {
		line.ACS = float64(*acs)
	}
	return line, true
}

var _ Adapter = (*VlrAdapter)(nil)
