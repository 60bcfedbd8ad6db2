package scrape

import (
	"strings"
	"testing"

	"esports-oracle/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bo3ListFixture = `
<div>
<div class="table-row c-global-match table-row--live">
  <a class="c-global-match-link" href="/matches/natus-vincere-vs-faze-18211"></a>
  <div class="team-name">Natus Vincere</div>
  <div class="team-name">FaZe</div>
  <div class="match-score"><span class="score">1</span><span class="score">0</span></div>
  <div class="tournament-name">BLAST Premier World Final 2026</div>
  <div class="bo-type">BO3</div>
  <time datetime="2026-08-30T18:00:00Z"></time>
</div>
<div class="table-row c-global-match">
  <a class="c-global-match-link" href="/matches/vitality-vs-mouz-18230"></a>
  <div class="team-name">Vitality</div>
  <div class="team-name">MOUZ</div>
  <div class="match-score"><span class="score">2</span><span class="score">1</span></div>
  <div class="tournament-name">IEM Cologne 2026 Grand Final</div>
  <div class="bo-type">BO5</div>
  <time datetime="2026-08-29T20:00:00Z"></time>
</div>
<div class="table-row c-global-match">
  <div class="team-name">Spirit</div>
  <div class="team-name"></div>
</div>
</div>`

func TestBo3ParseMatchList(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bo3ListFixture))
	require.NoError(t, err)

	a := NewBo3Adapter(nil, zerolog.Nop())
	matches := a.parseMatchList(doc)
	require.Len(t, matches, 2, "row missing a team name must be discarded")

	live := matches[0]
	assert.Equal(t, "Natus Vincere", live.Team1)
	assert.Equal(t, "FaZe", live.Team2)
	assert.True(t, live.Live)
	assert.Equal(t, "18211", live.SourceMatchID)
	assert.Equal(t, 3, live.BestOf)
	assert.Equal(t, "2026-08-30T18:00:00Z", live.ScheduledAt.Format("2006-01-02T15:04:05Z"))

	done := matches[1]
	assert.False(t, done.Live)
	require.NotNil(t, done.Score1)
	assert.Equal(t, 2, *done.Score1)
	assert.Equal(t, 5, done.BestOf)
	assert.Equal(t, "cs2", done.Game)
}

const bo3DetailFixture = `
<div>
<div class="match-header">
  <div class="team-name">Natus Vincere</div>
  <div class="team-name">FaZe</div>
</div>
<div class="c-match-map">
  <div class="map-name">Mirage</div>
  <div class="map-score">13:7</div>
</div>
<div class="c-match-map">
  <div class="map-name">Inferno</div>
  <div class="map-score">-:-</div>
</div>
<table class="player-stats"><tbody>
  <tr>
    <td class="player-nickname">s1mple</td>
    <td class="st-kills">25</td>
    <td class="st-deaths">14</td>
    <td class="st-assists">4</td>
  </tr>
</tbody></table>
<table class="player-stats"><tbody>
  <tr>
    <td class="player-nickname">rain</td>
    <td class="st-kills">18</td>
    <td class="st-deaths">19</td>
    <td class="st-assists">6</td>
  </tr>
</tbody></table>
</div>`

func TestBo3ParseMatchDetail(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bo3DetailFixture))
	require.NoError(t, err)

	a := NewBo3Adapter(nil, zerolog.Nop())
	detail := a.parseMatchDetail(doc, "/matches/natus-vincere-vs-faze-18211")

	assert.Equal(t, "Natus Vincere", detail.Match.Team1)
	assert.Equal(t, "FaZe", detail.Match.Team2)

	require.Len(t, detail.Maps, 1, "map without a played score must be skipped")
	assert.Equal(t, RawMapScore{Label: "Mirage", Score1: 13, Score2: 7}, detail.Maps[0])

	require.Len(t, detail.Players, 2)
	assert.Equal(t, "s1mple", detail.Players[0].Nickname)
	assert.Equal(t, "Natus Vincere", detail.Players[0].Team)
	assert.Equal(t, domain.MapLabelAll, detail.Players[0].MapLabel)
	assert.Equal(t, 25, detail.Players[0].Kills)
	assert.Equal(t, "rain", detail.Players[1].Nickname)
	assert.Equal(t, "FaZe", detail.Players[1].Team)
}
