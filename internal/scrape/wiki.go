package scrape

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"esports-oracle/internal/fetch"
	"esports-oracle/internal/mediawiki"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const (
	SourceWiki      = "wiki"
	wikiMatchesPage = "Liquipedia:Matches"
)

// WikiAdapter scrapes the MediaWiki-based wiki. Direct HTML fetches go
// through the camouflaged fetch client; when those get blocked the
// same page is rendered through the action API and fed to the same
// parser.
type WikiAdapter struct {
	fetch  *fetch.Client
	api    *mediawiki.Client
	game   string
	logger zerolog.Logger
}

func NewWikiAdapter(fc *fetch.Client, api *mediawiki.Client, game string, logger zerolog.Logger) *WikiAdapter {
	return &WikiAdapter{
		fetch:  fc,
		api:    api,
		game:   game,
		logger: logger.With().Str("adapter", SourceWiki).Str("game", game).Logger(),
	}
}

func (a *WikiAdapter) Source() string { return SourceWiki }
func (a *WikiAdapter) Game() string   { return a.game }

func (a *WikiAdapter) ListMatches(ctx context.Context) ([]RawMatch, error) {
	html, err := a.pageHTML(ctx, "/"+a.game+"/"+wikiMatchesPage, wikiMatchesPage)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("wiki: build document: %w", err)
	}
	matches := a.parseMatchList(doc)
	a.logger.Info().Int("count", len(matches)).Msg("match list scraped")
	return matches, nil
}

// pageHTML is the two-channel fetch: direct HTML first, action API
// when blocked. Both channels produce HTML the same parsers accept.
func (a *WikiAdapter) pageHTML(ctx context.Context, path, apiPage string) (string, error) {
	body, err := a.fetch.Get(ctx, path)
	if err == nil {
		return string(body), nil
	}
	if !fetch.IsBlocked(err) {
		return "", err
	}

	a.logger.Warn().Str("path", path).Msg("direct fetch blocked, falling back to action API")
	html, apiErr := a.api.GetPageHTML(ctx, apiPage)
	if apiErr != nil {
		return "", fmt.Errorf("wiki fallback for %s: %w", apiPage, apiErr)
	}
	return html, nil
}

func (a *WikiAdapter) parseMatchList(doc *goquery.Document) []RawMatch {
	var out []RawMatch
	doc.Find("table.infobox_matches_content").Each(func(_ int, tbl *goquery.Selection) {
		raw, ok := a.parseMatchTable(tbl)
		if !ok {
			return
		}
		out = append(out, raw)
	})
	return out
}

func (a *WikiAdapter) parseMatchTable(tbl *goquery.Selection) (RawMatch, bool) {
	team1 := teamCellName(tbl.Find(".team-left"))
	team2 := teamCellName(tbl.Find(".team-right"))
	if team1 == "" && team2 == "" {
		return RawMatch{}, false
	}
	if team1 == "" || team2 == "" {
		a.logger.Debug().Str("team1", team1).Str("team2", team2).Msg("discarding row with unresolved team")
		return RawMatch{}, false
	}

	raw := RawMatch{
		Source: SourceWiki,
		Game:   a.game,
		Team1:  team1,
		Team2:  team2,
	}

	versus := tbl.Find(".versus").First()
	if score := CleanText(versus.Find(".versus-upper").Text()); score != "" {
		raw.Score1, raw.Score2 = splitScorePair(score, ":")
	} else {
		raw.Score1, raw.Score2 = splitScorePair(CleanText(versus.Text()), ":")
	}
	raw.BestOf = ParseBestOf(versus.Find("abbr").First().Text())

	timer := tbl.Find(".timer-object").First()
	if ts, ok := timer.Attr("data-timestamp"); ok {
		if unix, err := strconv.ParseInt(ts, 10, 64); err == nil {
			raw.ScheduledAt = time.Unix(unix, 0).UTC()
		}
	}
	raw.Live = timer.HasClass("timer-object-countdown-live")
	if fin, ok := timer.Attr("data-finished"); ok && fin == "finished" {
		raw.Live = false
	}

	tournament := CleanText(tbl.Find(".match-filler .tournament-text a").First().Text())
	if tournament == "" {
		tournament = CleanText(tbl.Find(".tournament-text").First().Text())
	}
	raw.Tournament = tournament
	raw.Region = DetectRegion(tournament)
	raw.Importance = ImportanceScore(tournament)

	if href, ok := tbl.Find(".match-filler .tournament-text a").First().Attr("href"); ok {
		raw.DetailPath = href
	}
	if id, ok := tbl.Attr("data-match-id"); ok {
		raw.SourceMatchID = id
	}
	return raw, true
}

// MatchDetails renders the bracket page the list row points at and
// pulls per-map scores from the bracket popup markup. The wiki carries
// no per-player stat lines on these pages; those come from the stats
// sites.
func (a *WikiAdapter) MatchDetails(ctx context.Context, ref string) (*RawMatchDetail, error) {
	html, err := a.pageHTML(ctx, ref, strings.TrimPrefix(ref, "/"+a.game+"/"))
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("wiki: build document: %w", err)
	}
	return a.parseMatchDetail(doc, ref), nil
}

func (a *WikiAdapter) parseMatchDetail(doc *goquery.Document, ref string) *RawMatchDetail {
	detail := &RawMatchDetail{Match: RawMatch{Source: SourceWiki, Game: a.game, DetailPath: ref}}
	doc.Find(".brkts-popup-body-game").Each(func(_ int, game *goquery.Selection) {
		label := CleanText(game.Find(".brkts-popup-spaced a").First().Text())
		if label == "" {
			label = CleanText(game.Find(".brkts-popup-body-element-vertical-centered").First().Text())
		}
		scores := game.Find(".brkts-popup-body-element-score")
		if label == "" || scores.Length() < 2 {
			return
		}
		s1 := ParseScore(scores.Eq(0).Text())
		s2 := ParseScore(scores.Eq(1).Text())
		if s1 == nil || s2 == nil {
			return
		}
		detail.Maps = append(detail.Maps, RawMapScore{Label: label, Score1: *s1, Score2: *s2})
	})
	return detail
}

// TeamProfile scrapes a team's wiki page: infobox fields plus the
// active roster table. Names that are not exact page titles resolve
// through the wiki's search endpoint.
func (a *WikiAdapter) TeamProfile(ctx context.Context, name string) (*RawTeam, []RawPlayer, error) {
	page := strings.ReplaceAll(name, " ", "_")
	html, err := a.pageHTML(ctx, "/"+a.game+"/"+page, page)
	if errors.Is(err, mediawiki.ErrPageMissing) {
		titles, sErr := a.api.Search(ctx, name, 1)
		if sErr != nil || len(titles) == 0 {
			return nil, nil, fmt.Errorf("wiki: no page for team %q: %w", name, err)
		}
		a.logger.Debug().Str("team", name).Str("title", titles[0]).Msg("team page resolved via search")
		page = strings.ReplaceAll(titles[0], " ", "_")
		html, err = a.pageHTML(ctx, "/"+a.game+"/"+page, titles[0])
	}
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("wiki: build document: %w", err)
	}
	team, players := a.parseTeamProfile(doc, name)
	return team, players, nil
}

func (a *WikiAdapter) parseTeamProfile(doc *goquery.Document, name string) (*RawTeam, []RawPlayer) {
	page := strings.ReplaceAll(name, " ", "_")
	team := &RawTeam{
		Name:       name,
		Game:       a.game,
		ProfileURL: "/" + a.game + "/" + page,
	}
	doc.Find(".infobox-cell-2").Each(func(i int, cell *goquery.Selection) {
		label := strings.TrimSuffix(CleanText(cell.Text()), ":")
		value := CleanText(cell.Next().Text())
		switch strings.ToLower(label) {
		case "location", "country":
			team.Country = value
		case "region":
			team.Region = DetectRegion(value)
		}
	})
	if src, ok := doc.Find(".infobox-image img").First().Attr("src"); ok {
		team.LogoURL = src
	}
	team.Description = CleanText(doc.Find(".mw-parser-output > p").First().Text())

	var players []RawPlayer
	doc.Find("table.roster-card tr.Player").Each(func(_ int, row *goquery.Selection) {
		nick := CleanText(row.Find(".ID a").First().Text())
		if nick == "" {
			return
		}
		players = append(players, RawPlayer{
			Nickname: nick,
			Game:     a.game,
			RealName: CleanText(row.Find(".Name").First().Text()),
			Team:     name,
			Role:     CleanText(row.Find(".Position").First().Text()),
			Country:  flagTitle(row.Find(".ID .flag img").First()),
		})
	})
	return team, players
}

func teamCellName(cell *goquery.Selection) string {
	name := CleanText(cell.Find(".team-template-text a").First().Text())
	if name == "" {
		name = CleanText(cell.Find(".team-template-text").First().Text())
	}
	return name
}

func flagTitle(img *goquery.Selection) string {
	if title, ok := img.Attr("title"); ok {
		return CleanText(title)
	}
	return ""
}

// splitScorePair parses "2:1" style cells into a nullable pair. A pair
// where only one side parses is treated as no score at all.
func splitScorePair(s, sep string) (*int, *int) {
	parts := strings.Split(CleanText(s), sep)
	if len(parts) != 2 {
		return nil, nil
	}
	s1 := ParseScore(parts[0])
	s2 := ParseScore(parts[1])
	if s1 == nil || s2 == nil {
		return nil, nil
	}
	return s1, s2
}

var _ Adapter = (*WikiAdapter)(nil)
var _ RosterSource = (*WikiAdapter)(nil)
