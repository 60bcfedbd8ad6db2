package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"esports-oracle/internal/domain"
	fxmodules "esports-oracle/internal/fx"
	"esports-oracle/internal/repository"
	"esports-oracle/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const usage = `usage: oracle <command> [flags]

commands:
  sync-matches                    pull match listings from every source
  sync-details <match-id>         pull map scores and player stats for one match
  sync-rosters <team-name> ...    pull team profiles and their active rosters
  recalc-ratings [-game g] [-force]
                                  replay history and refresh stale team ratings
  predict <team1> <team2> [-game g]
                                  print the win probability for team1
  predict-upcoming [-game g]      attach predictions to upcoming matches
  list [-game g] [-region r] [-status s]
                                  print stored matches
`

type deps struct {
	fx.In

	DB      *sqlx.DB
	Ingest  *service.IngestService
	Detail  *service.DetailService
	Roster  *service.RosterService
	Ratings *service.RatingService
	Logger  zerolog.Logger
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	app := fx.New(
		fxmodules.Module,
		fx.NopLogger,
		fx.Invoke(func(d deps) {
			defer d.DB.Close()
			runErr = dispatch(ctx, d, os.Args[1], os.Args[2:])
		}),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "oracle:", err)
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "oracle:", runErr)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, d deps, command string, args []string) error {
	switch command {
	case "sync-matches":
		return runSyncMatches(ctx, d)
	case "sync-details":
		return runSyncDetails(ctx, d, args)
	case "sync-rosters":
		return runSyncRosters(ctx, d, args)
	case "recalc-ratings":
		return runRecalcRatings(ctx, d, args)
	case "predict":
		return runPredict(ctx, d, args)
	case "predict-upcoming":
		return runPredictUpcoming(ctx, d, args)
	case "list":
		return runList(ctx, d, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runSyncMatches(ctx context.Context, d deps) error {
	summary, err := d.Ingest.SyncMatches(ctx)
	if err != nil {
		return err
	}
	for _, r := range summary.Sources {
		if r.Err != nil {
			fmt.Printf("%-8s failed: %v\n", r.Source, r.Err)
			continue
		}
		fmt.Printf("%-8s new=%d updated=%d skipped=%d\n", r.Source, r.New, r.Updated, r.Skipped)
	}
	_, _, _, failed := summary.Totals()
	if failed == len(summary.Sources) && len(summary.Sources) > 0 {
		return fmt.Errorf("every source failed")
	}
	return nil
}

func runSyncDetails(ctx context.Context, d deps, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("sync-details requires a match id")
	}
	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid match id %q", args[0])
	}
	return d.Detail.SyncDetail(ctx, matchID)
}

func runSyncRosters(ctx context.Context, d deps, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("sync-rosters requires at least one team name")
	}
	var failed int
	for _, name := range args {
		team, err := d.Roster.SyncTeam(ctx, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sync %s failed: %v\n", name, err)
			failed++
			continue
		}
		fmt.Printf("synced %s (%s)\n", team.Name, team.Region)
	}
	if failed == len(args) {
		return fmt.Errorf("every roster sync failed")
	}
	return nil
}

func runRecalcRatings(ctx context.Context, d deps, args []string) error {
	fs := flag.NewFlagSet("recalc-ratings", flag.ExitOnError)
	game := fs.String("game", "valorant", "game to recalculate")
	force := fs.Bool("force", false, "recalculate even recently refreshed ratings")
	if err := fs.Parse(args); err != nil {
		return err
	}
	n, err := d.Ratings.Recalculate(ctx, *game, *force)
	if err != nil {
		return err
	}
	fmt.Printf("refreshed ratings for %d teams\n", n)
	return nil
}

// splitPositional peels leading non-flag arguments off args, so a
// command can take positionals before its flags. An empty argument is
// a positional, not a flag.
func splitPositional(args []string) (positional, rest []string) {
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional = append(positional, args[0])
		args = args[1:]
	}
	return positional, args
}

func runPredict(ctx context.Context, d deps, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	game := fs.String("game", "valorant", "game the teams play")
	positional, args := splitPositional(args)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(positional) != 2 {
		return fmt.Errorf("predict requires exactly two team names")
	}

	pct, err := d.Ratings.Predict(ctx, positional[0], positional[1], *game)
	if err != nil {
		return err
	}
	fmt.Printf("%s vs %s: %.1f%% / %.1f%%\n", positional[0], positional[1], pct, 100-pct)
	return nil
}

func runPredictUpcoming(ctx context.Context, d deps, args []string) error {
	fs := flag.NewFlagSet("predict-upcoming", flag.ExitOnError)
	game := fs.String("game", "valorant", "game to predict")
	if err := fs.Parse(args); err != nil {
		return err
	}
	n, err := d.Ratings.PredictUpcoming(ctx, *game)
	if err != nil {
		return err
	}
	fmt.Printf("predicted %d matches\n", n)
	return nil
}

func runList(ctx context.Context, d deps, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	game := fs.String("game", "", "filter by game")
	region := fs.String("region", "", "filter by region")
	status := fs.String("status", "", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	matches, err := d.Ingest.ListMatches(ctx, repository.Filter{
		Game:   *game,
		Region: domain.Region(*region),
		Status: domain.MatchStatus(*status),
	})
	if err != nil {
		return err
	}
	for _, m := range matches {
		score := "  -  "
		if m.Score1 != nil && m.Score2 != nil {
			score = fmt.Sprintf("%d : %d", *m.Score1, *m.Score2)
		}
		line := fmt.Sprintf("%5d  %-16s %-24s %s %-24s %-9s %s",
			m.ID, m.ScheduledAt.Format("2006-01-02 15:04"), m.Team1, score, m.Team2, m.Status, m.Tournament)
		if m.Prediction != nil {
			line += fmt.Sprintf("  [%.0f%% %s]", m.Prediction.Team1WinPct, m.Prediction.Source)
		}
		fmt.Println(line)
	}
	fmt.Printf("%d matches\n", len(matches))
	return nil
}
