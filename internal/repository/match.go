package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"esports-oracle/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type MatchRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewMatchRepository(db *sqlx.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: db, logger: logger}
}

type matchRow struct {
	ID                  int64     `db:"id"`
	Team1               string    `db:"team1"`
	Team2               string    `db:"team2"`
	Game                string    `db:"game"`
	Tournament          string    `db:"tournament"`
	Region              string    `db:"region"`
	ScheduledAt         time.Time `db:"scheduled_at"`
	Score1              *int      `db:"score1"`
	Score2              *int      `db:"score2"`
	Status              string    `db:"status"`
	BestOf              int       `db:"best_of"`
	Importance          int       `db:"importance"`
	PredictionID        string    `db:"prediction_id"`
	PredictionPct       *float64  `db:"prediction_pct"`
	PredictionSource    string    `db:"prediction_source"`
	PredictionRationale string    `db:"prediction_rationale"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (r matchRow) toDomain() domain.Match {
	m := domain.Match{
		ID:          r.ID,
		Team1:       r.Team1,
		Team2:       r.Team2,
		Game:        r.Game,
		Tournament:  r.Tournament,
		Region:      domain.Region(r.Region),
		ScheduledAt: r.ScheduledAt,
		Score1:      r.Score1,
		Score2:      r.Score2,
		Status:      domain.MatchStatus(r.Status),
		BestOf:      r.BestOf,
		Importance:  r.Importance,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.PredictionID != "" {
		m.Prediction = &domain.Prediction{
			ID:        r.PredictionID,
			Rationale: r.PredictionRationale,
			Source:    r.PredictionSource,
		}
		if r.PredictionPct != nil {
			m.Prediction.Team1WinPct = *r.PredictionPct
		}
	}
	return m
}

// Filter narrows List; zero values mean "any".
type Filter struct {
	Game   string
	Region domain.Region
	Status domain.MatchStatus
}

// Upsert writes a scraped match, resolving identity by native source id
// first and the (team1, team2, game, scheduled_at) key second. Status
// only ever moves forward, and known scores are never overwritten with
// nil. Returns whether the row was newly created.
func (r *MatchRepository) Upsert(ctx context.Context, match *domain.Match) (int64, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	id, err := r.resolveID(ctx, tx, match)
	if err != nil {
		return 0, false, err
	}

	now := time.Now().UTC()
	created := id == 0
	if created {
		region := string(match.Region)
		if region == "" {
			region = string(domain.RegionUnknown)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO matches (team1, team2, game, tournament, region, scheduled_at,
				score1, score2, status, best_of, importance, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			match.Team1, match.Team2, match.Game, match.Tournament, region, match.ScheduledAt.UTC(),
			match.Score1, match.Score2, string(match.Status), match.BestOf, match.Importance, now, now,
		)
		if err != nil {
			return 0, false, fmt.Errorf("insert match %s vs %s: %w", match.Team1, match.Team2, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, false, err
		}
	} else {
		if err := r.widen(ctx, tx, id, match, now); err != nil {
			return 0, false, err
		}
	}

	for source, sourceID := range match.SourceIDs {
		if sourceID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO match_source_ids (match_id, source, source_match_id, detail_path)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (match_id, source) DO UPDATE SET
				source_match_id = excluded.source_match_id,
				detail_path     = CASE WHEN excluded.detail_path != '' THEN excluded.detail_path ELSE detail_path END`,
			id, source, sourceID, match.DetailPaths[source],
		); err != nil {
			return 0, false, fmt.Errorf("record source id %s/%s: %w", source, sourceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	match.ID = id
	return id, created, nil
}

func (r *MatchRepository) resolveID(ctx context.Context, tx *sqlx.Tx, match *domain.Match) (int64, error) {
	for source, sourceID := range match.SourceIDs {
		if sourceID == "" {
			continue
		}
		var id int64
		err := tx.GetContext(ctx, &id,
			`SELECT match_id FROM match_source_ids WHERE source = ? AND source_match_id = ?`,
			source, sourceID)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
	}

	var id int64
	err := tx.GetContext(ctx, &id,
		`SELECT id FROM matches WHERE team1 = ? AND team2 = ? AND game = ? AND scheduled_at = ?`,
		match.Team1, match.Team2, match.Game, match.ScheduledAt.UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *MatchRepository) widen(ctx context.Context, tx *sqlx.Tx, id int64, match *domain.Match, now time.Time) error {
	var current matchRow
	if err := tx.GetContext(ctx, &current, `SELECT * FROM matches WHERE id = ?`, id); err != nil {
		return err
	}

	status := current.Status
	if domain.StatusRank(match.Status) > domain.StatusRank(domain.MatchStatus(current.Status)) {
		status = string(match.Status)
	} else if domain.StatusRank(match.Status) < domain.StatusRank(domain.MatchStatus(current.Status)) {
		r.logger.Debug().
			Int64("match_id", id).
			Str("stored", current.Status).
			Str("incoming", string(match.Status)).
			Msg("ignoring backward status transition")
	}

	// Incoming scores only apply when the row is at least as far along
	// as what we hold; a stale live 0-0 must not clobber a final score.
	score1, score2 := current.Score1, current.Score2
	if match.Score1 != nil && match.Score2 != nil &&
		domain.StatusRank(match.Status) >= domain.StatusRank(domain.MatchStatus(current.Status)) {
		score1, score2 = match.Score1, match.Score2
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE matches SET
			tournament = CASE WHEN ? != '' THEN ? ELSE tournament END,
			region     = CASE WHEN ? NOT IN ('', 'unknown') THEN ? ELSE region END,
			score1     = ?,
			score2     = ?,
			status     = ?,
			best_of    = CASE WHEN ? > 0 THEN ? ELSE best_of END,
			importance = CASE WHEN ? > importance THEN ? ELSE importance END,
			updated_at = ?
		WHERE id = ?`,
		match.Tournament, match.Tournament,
		string(match.Region), string(match.Region),
		score1, score2,
		status,
		match.BestOf, match.BestOf,
		match.Importance, match.Importance,
		now, id,
	)
	return err
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (*domain.Match, error) {
	var row matchRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM matches WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := row.toDomain()
	if m.SourceIDs, m.DetailPaths, err = r.sourceRefs(ctx, id); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetBySourceID looks a match up by its native id on one source.
func (r *MatchRepository) GetBySourceID(ctx context.Context, source, sourceID string) (*domain.Match, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		`SELECT match_id FROM match_source_ids WHERE source = ? AND source_match_id = ?`,
		source, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *MatchRepository) sourceRefs(ctx context.Context, matchID int64) (map[string]string, map[string]string, error) {
	rows := []struct {
		Source        string `db:"source"`
		SourceMatchID string `db:"source_match_id"`
		DetailPath    string `db:"detail_path"`
	}{}
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT source, source_match_id, detail_path FROM match_source_ids WHERE match_id = ?`, matchID); err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	ids := make(map[string]string, len(rows))
	var paths map[string]string
	for _, row := range rows {
		ids[row.Source] = row.SourceMatchID
		if row.DetailPath != "" {
			if paths == nil {
				paths = make(map[string]string)
			}
			paths[row.Source] = row.DetailPath
		}
	}
	return ids, paths, nil
}

func (r *MatchRepository) List(ctx context.Context, filter Filter) ([]domain.Match, error) {
	query := `SELECT * FROM matches WHERE 1=1`
	args := []any{}
	if filter.Game != "" {
		query += ` AND game = ?`
		args = append(args, filter.Game)
	}
	if filter.Region != "" {
		query += ` AND region = ?`
		args = append(args, string(filter.Region))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY scheduled_at, id`

	var rows []matchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	matches := make([]domain.Match, len(rows))
	for i, row := range rows {
		matches[i] = row.toDomain()
	}
	return matches, nil
}

func (r *MatchRepository) SetPrediction(ctx context.Context, matchID int64, p *domain.Prediction) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE matches SET
			prediction_id = ?, prediction_pct = ?, prediction_source = ?,
			prediction_rationale = ?, updated_at = ?
		WHERE id = ?`,
		p.ID, p.Team1WinPct, p.Source, p.Rationale, time.Now().UTC(), matchID)
	return err
}

// CompletedMatchesForTeam returns the team's completed matches oldest
// first, as the rating replay consumes them.
func (r *MatchRepository) CompletedMatchesForTeam(ctx context.Context, team, game string) ([]domain.Match, error) {
	var rows []matchRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM matches
		WHERE game = ? AND status = ? AND (team1 = ? OR team2 = ?)
		ORDER BY scheduled_at, id`,
		game, string(domain.StatusCompleted), team, team)
	if err != nil {
		return nil, err
	}
	matches := make([]domain.Match, len(rows))
	for i, row := range rows {
		matches[i] = row.toDomain()
	}
	return matches, nil
}

// HeadToHead returns the most recent completed matches between the two
// teams, regardless of which side each was listed on.
func (r *MatchRepository) HeadToHead(ctx context.Context, team1, team2, game string, limit int) ([]domain.Match, error) {
	var rows []matchRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM matches
		WHERE game = ? AND status = ?
		  AND ((team1 = ? AND team2 = ?) OR (team1 = ? AND team2 = ?))
		ORDER BY scheduled_at DESC, id DESC
		LIMIT ?`,
		game, string(domain.StatusCompleted), team1, team2, team2, team1, limit)
	if err != nil {
		return nil, err
	}
	matches := make([]domain.Match, len(rows))
	for i, row := range rows {
		matches[i] = row.toDomain()
	}
	return matches, nil
}

func (r *MatchRepository) DeleteAll(ctx context.Context, game string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE game = ?`, game)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
