package fx

import (
	"esports-oracle/internal/config"
	"esports-oracle/internal/database"
	"esports-oracle/internal/enrich"
	"esports-oracle/internal/fetch"
	"esports-oracle/internal/logger"
	"esports-oracle/internal/mediawiki"
	"esports-oracle/internal/ratelimit"
	"esports-oracle/internal/rating"
	"esports-oracle/internal/reconcile"
	"esports-oracle/internal/repository"
	"esports-oracle/internal/scrape"
	"esports-oracle/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func newFetchClient(sc config.SourceConfig, source string, insecure bool, logger zerolog.Logger) *fetch.Client {
	return fetch.NewClient(fetch.Options{
		Source:  source,
		BaseURL: sc.BaseURL,
		Gate: ratelimit.New(ratelimit.Config{
			BaseDelay:  sc.BaseDelay,
			JitterFrac: sc.JitterFrac,
			MaxRetries: sc.MaxRetries,
			MaxBackoff: sc.MaxBackoff,
		}),
		InsecureSkipTLSVerify: insecure,
	}, logger)
}

func ProvideMediaWikiClient(cfg *config.Config, logger zerolog.Logger) *mediawiki.Client {
	return mediawiki.NewClient(mediawiki.Options{
		APIURL: cfg.WikiAPIURL,
		RenderGate: ratelimit.New(ratelimit.Config{
			BaseDelay:  cfg.WikiRenderDelay,
			JitterFrac: cfg.Wiki.JitterFrac,
			MaxRetries: cfg.WikiAPIMaxRetries,
		}),
		SearchGate: ratelimit.New(ratelimit.Config{
			BaseDelay:  cfg.WikiSearchDelay,
			JitterFrac: cfg.Wiki.JitterFrac,
			MaxRetries: cfg.WikiAPIMaxRetries,
		}),
	}, logger)
}

func ProvideWikiAdapter(cfg *config.Config, api *mediawiki.Client, logger zerolog.Logger) *scrape.WikiAdapter {
	fc := newFetchClient(cfg.Wiki, scrape.SourceWiki, cfg.InsecureSkipTLSVerify, logger)
	return scrape.NewWikiAdapter(fc, api, "valorant", logger)
}

func ProvideAdapters(cfg *config.Config, wiki *scrape.WikiAdapter, logger zerolog.Logger) []scrape.Adapter {
	vlr := scrape.NewVlrAdapter(newFetchClient(cfg.Vlr, scrape.SourceVlr, cfg.InsecureSkipTLSVerify, logger), logger)
	bo3 := scrape.NewBo3Adapter(newFetchClient(cfg.Bo3, scrape.SourceBo3, cfg.InsecureSkipTLSVerify, logger), logger)
	return []scrape.Adapter{wiki, vlr, bo3}
}

func ProvideRosterSource(wiki *scrape.WikiAdapter) scrape.RosterSource {
	return wiki
}

func ProvideResolver(teams *repository.TeamRepository, players *repository.PlayerRepository, logger zerolog.Logger) *reconcile.Resolver {
	return reconcile.NewResolver(teams, players, logger)
}

// ProvideEnricher returns nil when no enrichment endpoint is
// configured; the engine treats a nil enricher as "rating engine only".
func ProvideEnricher(cfg *config.Config, logger zerolog.Logger) rating.Enricher {
	if cfg.EnrichmentURL == "" {
		return nil
	}
	return enrich.NewClient(cfg.EnrichmentURL, cfg.EnrichmentAPIKey, logger)
}

func ProvideEngine(matches *repository.MatchRepository, teams *repository.TeamRepository, enricher rating.Enricher, logger zerolog.Logger) *rating.Engine {
	return rating.NewEngine(matches, teams, enricher, logger)
}

func ProvideRosterService(source scrape.RosterSource, teams *repository.TeamRepository, players *repository.PlayerRepository, resolver *reconcile.Resolver, logger zerolog.Logger) *service.RosterService {
	return service.NewRosterService(source, "valorant", teams, players, resolver, logger)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewTeamRepository),
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewStatRepository),
	// sources
	fx.Provide(ProvideMediaWikiClient),
	fx.Provide(ProvideWikiAdapter),
	fx.Provide(ProvideAdapters),
	fx.Provide(ProvideRosterSource),
	// domain plumbing
	fx.Provide(ProvideResolver),
	fx.Provide(ProvideEnricher),
	fx.Provide(ProvideEngine),
	// svc
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewDetailService),
	fx.Provide(ProvideRosterService),
	fx.Provide(service.NewRatingService),
)
