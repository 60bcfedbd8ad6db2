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

type PlayerRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewPlayerRepository(db *sqlx.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: db, logger: logger}
}

type playerRow struct {
	ID         int64     `db:"id"`
	Nickname   string    `db:"nickname"`
	Game       string    `db:"game"`
	RealName   string    `db:"real_name"`
	TeamID     *int64    `db:"team_id"`
	Role       string    `db:"role"`
	Country    string    `db:"country"`
	ProfileURL string    `db:"profile_url"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r playerRow) toDomain() domain.Player {
	return domain.Player{
		ID:         r.ID,
		Nickname:   r.Nickname,
		Game:       r.Game,
		RealName:   r.RealName,
		TeamID:     r.TeamID,
		Role:       r.Role,
		Country:    r.Country,
		ProfileURL: r.ProfileURL,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// Upsert inserts a player or widens the existing row. A roster scrape
// that moved the player carries a new team_id; one that lost the team
// carries nil and leaves the stored reference alone.
func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) (int64, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (nickname, game, real_name, team_id, role, country, profile_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (nickname, game) DO UPDATE SET
			real_name   = CASE WHEN excluded.real_name != '' THEN excluded.real_name ELSE real_name END,
			team_id     = CASE WHEN excluded.team_id IS NOT NULL THEN excluded.team_id ELSE team_id END,
			role        = CASE WHEN excluded.role != '' THEN excluded.role ELSE role END,
			country     = CASE WHEN excluded.country != '' THEN excluded.country ELSE country END,
			profile_url = CASE WHEN excluded.profile_url != '' THEN excluded.profile_url ELSE profile_url END,
			updated_at  = excluded.updated_at`,
		player.Nickname, player.Game, player.RealName, player.TeamID, player.Role, player.Country, player.ProfileURL, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert player %s/%s: %w", player.Nickname, player.Game, err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM players WHERE nickname = ? AND game = ?`, player.Nickname, player.Game); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PlayerRepository) ListByGame(ctx context.Context, game string) ([]domain.Player, error) {
	var rows []playerRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM players WHERE game = ? ORDER BY id`, game); err != nil {
		return nil, err
	}
	players := make([]domain.Player, len(rows))
	for i, row := range rows {
		players[i] = row.toDomain()
	}
	return players, nil
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID int64) ([]domain.Player, error) {
	var rows []playerRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM players WHERE team_id = ? ORDER BY id`, teamID); err != nil {
		return nil, err
	}
	players := make([]domain.Player, len(rows))
	for i, row := range rows {
		players[i] = row.toDomain()
	}
	return players, nil
}

func (r *PlayerRepository) GetByNickname(ctx context.Context, nickname, game string) (*domain.Player, error) {
	var row playerRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM players WHERE nickname = ? AND game = ?`, nickname, game)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := row.toDomain()
	return &p, nil
}

func (r *PlayerRepository) DeleteAll(ctx context.Context, game string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE game = ?`, game)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
