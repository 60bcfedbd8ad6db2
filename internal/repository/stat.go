package repository

import (
	"context"
	"fmt"
	"time"

	"esports-oracle/internal/domain"

	"github.com/jmoiron/sqlx"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type StatRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewStatRepository(db *sqlx.DB, logger zerolog.Logger) *StatRepository {
	return &StatRepository{db: db, logger: logger}
}

type mapScoreRow struct {
	ID      int64  `db:"id"`
	MatchID int64  `db:"match_id"`
	Label   string `db:"label"`
	Score1  int    `db:"score1"`
	Score2  int    `db:"score2"`
}

type playerStatRow struct {
	ID         string    `db:"id"`
	MatchID    int64     `db:"match_id"`
	PlayerName string    `db:"player_name"`
	MapLabel   string    `db:"map_label"`
	Source     string    `db:"source"`
	Kills      int       `db:"kills"`
	Deaths     int       `db:"deaths"`
	Assists    int       `db:"assists"`
	ACS        float64   `db:"acs"`
	CreatedAt  time.Time `db:"created_at"`
}

// ReplaceForMatch swaps out a match's per-map scores and one source's
// player lines in a single transaction, so a reader never sees a
// half-replaced scoreboard.
func (r *StatRepository) ReplaceForMatch(ctx context.Context, matchID int64, source string, maps []domain.MapScore, stats []domain.PlayerStat) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM map_scores WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("clear map scores for match %d: %w", matchID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM player_stats WHERE match_id = ? AND source = ?`, matchID, source); err != nil {
		return fmt.Errorf("clear player stats for match %d: %w", matchID, err)
	}

	for _, m := range maps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO map_scores (match_id, label, score1, score2) VALUES (?, ?, ?, ?)`,
			matchID, m.Label, m.Score1, m.Score2,
		); err != nil {
			return fmt.Errorf("insert map score %s: %w", m.Label, err)
		}
	}

	now := time.Now().UTC()
	for _, s := range stats {
		id := s.ID
		if id == "" {
			if id, err = gonanoid.New(); err != nil {
				return err
			}
		}
		label := s.MapLabel
		if label == "" {
			label = domain.MapLabelAll
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO player_stats (id, match_id, player_name, map_label, source, kills, deaths, assists, acs, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, matchID, s.PlayerName, label, source, s.Kills, s.Deaths, s.Assists, s.ACS, now,
		); err != nil {
			return fmt.Errorf("insert stat line %s/%s: %w", s.PlayerName, label, err)
		}
	}

	return tx.Commit()
}

func (r *StatRepository) MapScores(ctx context.Context, matchID int64) ([]domain.MapScore, error) {
	var rows []mapScoreRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM map_scores WHERE match_id = ? ORDER BY id`, matchID); err != nil {
		return nil, err
	}
	scores := make([]domain.MapScore, len(rows))
	for i, row := range rows {
		scores[i] = domain.MapScore{ID: row.ID, MatchID: row.MatchID, Label: row.Label, Score1: row.Score1, Score2: row.Score2}
	}
	return scores, nil
}

func (r *StatRepository) PlayerStats(ctx context.Context, matchID int64) ([]domain.PlayerStat, error) {
	var rows []playerStatRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM player_stats WHERE match_id = ? ORDER BY map_label, player_name`, matchID); err != nil {
		return nil, err
	}
	stats := make([]domain.PlayerStat, len(rows))
	for i, row := range rows {
		stats[i] = domain.PlayerStat{
			ID:         row.ID,
			MatchID:    row.MatchID,
			PlayerName: row.PlayerName,
			MapLabel:   row.MapLabel,
			Source:     row.Source,
			Kills:      row.Kills,
			Deaths:     row.Deaths,
			Assists:    row.Assists,
			ACS:        row.ACS,
			CreatedAt:  row.CreatedAt,
		}
	}
	return stats, nil
}
