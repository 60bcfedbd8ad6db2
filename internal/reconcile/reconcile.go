// Package reconcile decides whether a scraped team or player name
// refers to an entity we already know. Matching is deliberately
// deterministic: diacritic folding, a fixed alias table, and substring
// inclusion — no fuzzy edit-distance, trading recall for precision.
package reconcile

import (
	"context"
	"strings"
	"unicode"

	"esports-oracle/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips diacritics (accented Latin letters down to their base
// letter), lowercases, and trims. The comparison key for all identity
// matching.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Stylized or sponsor-mangled names seen across the sources, folded
// form on both sides. Expanded bidirectionally: searching either side
// finds an entity stored under the other.
var aliasTable = map[string]string{
	"100t":     "100 thieves",
	"tl":       "team liquid",
	"c9":       "cloud9",
	"navi":     "natus vincere",
	"gen.g":    "gen.g esports",
	"edg":      "edward gaming",
	"m8":       "gentle mates",
	"kc":       "karmine corp",
	"th":       "team heretics",
	"vit":      "team vitality",
	"fut":      "fut esports",
	"loud":     "loud esports",
	"prx":      "paper rex",
	"sen":      "sentinels",
	"fnc":      "fnatic",
	"nrg":      "nrg esports",
	"faze":     "faze clan",
	"mouz":     "mousesports",
	"big":      "berlin international gaming",
	"og":       "og esports",
	"9z":       "9z team",
	"furia":    "furia esports",
	"pain":     "pain gaming",
	"mibr":     "made in brazil",
	"t1":       "t1 esports",
	"dk":       "dplus kia",
	"ge":       "global esports",
	"zeta":     "zeta division",
	"dfm":      "detonation focusme",
	"tln":      "talon esports",
	"rrq":      "rex regum qeon",
	"boom":     "boom esports",
	"eg":       "evil geniuses",
	"lev":      "leviatan",
	"kru":      "kru esports",
	"g2":       "g2 esports",
	"bbl":      "bbl esports",
	"gia":      "giants gaming",
	"koi":      "movistar koi",
	"astralis": "astralis a/s",
}

// variants returns the folded name plus any alias-table expansions in
// both directions.
func variants(name string) []string {
	folded := Fold(name)
	out := []string{folded}
	if canonical, ok := aliasTable[folded]; ok {
		out = append(out, canonical)
	}
	for alias, canonical := range aliasTable {
		if canonical == folded {
			out = append(out, alias)
		}
	}
	return out
}

// Matches reports whether two name strings refer to the same entity
// under the folding/alias/substring policy. Substring inclusion runs
// both ways to tolerate sponsor-prefixed forms ("Movistar KOI" vs
// "KOI"). Very short fragments are exact-only, otherwise single
// letters would swallow everything.
func Matches(a, b string) bool {
	for _, va := range variants(a) {
		for _, vb := range variants(b) {
			if va == vb {
				return true
			}
			if len(va) >= 4 && len(vb) >= 4 &&
				(strings.Contains(va, vb) || strings.Contains(vb, va)) {
				return true
			}
		}
	}
	return false
}

type TeamDirectory interface {
	ListByGame(ctx context.Context, game string) ([]domain.Team, error)
}

type PlayerDirectory interface {
	ListByGame(ctx context.Context, game string) ([]domain.Player, error)
}

// Resolver matches scraped name strings against the persisted
// entities for one game.
type Resolver struct {
	teams   TeamDirectory
	players PlayerDirectory
	logger  zerolog.Logger
}

func NewResolver(teams TeamDirectory, players PlayerDirectory, logger zerolog.Logger) *Resolver {
	return &Resolver{teams: teams, players: players, logger: logger}
}

// ResolveTeam returns the existing canonical team the name refers to,
// or nil when nothing usable matches — which is not an error, just the
// signal to insert a new entity. Candidates come back from the store
// in id order, so the first hit is stable across calls.
func (r *Resolver) ResolveTeam(ctx context.Context, name, game string) (*domain.Team, error) {
	teams, err := r.teams.ListByGame(ctx, game)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		if Matches(name, teams[i].Name) {
			if teams[i].Name != name {
				r.logger.Debug().Str("scraped", name).Str("canonical", teams[i].Name).Msg("team name reconciled")
			}
			return &teams[i], nil
		}
	}
	return nil, nil
}

// ResolvePlayer is ResolveTeam for player nicknames.
func (r *Resolver) ResolvePlayer(ctx context.Context, nickname, game string) (*domain.Player, error) {
	players, err := r.players.ListByGame(ctx, game)
	if err != nil {
		return nil, err
	}
	for i := range players {
		if Matches(nickname, players[i].Nickname) {
			return &players[i], nil
		}
	}
	return nil, nil
}
