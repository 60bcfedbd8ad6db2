package rating

import "context"

// EnrichmentRequest is the narrow contract with the external
// prediction-augmentation service.
type EnrichmentRequest struct {
	Team1       string   `json:"team1"`
	Team2       string   `json:"team2"`
	Game        string   `json:"game"`
	Tournament  string   `json:"tournament"`
	RecentForm1 []string `json:"recent_form_team1"`
	RecentForm2 []string `json:"recent_form_team2"`
	H2HWins1    int      `json:"h2h_wins_team1"`
	H2HWins2    int      `json:"h2h_wins_team2"`
}

type EnrichmentResponse struct {
	Team1WinPct float64 `json:"win_probability"`
	Rationale   string  `json:"rationale"`
	SourceTag   string  `json:"source"`
}

// Enricher is the optional external augmentation hook. Any failure —
// timeout, malformed reply, missing credentials — means the engine
// falls back to its own prediction; enrichment is never load-bearing.
type Enricher interface {
	Enrich(ctx context.Context, req EnrichmentRequest) (*EnrichmentResponse, error)
}
