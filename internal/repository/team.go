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

type TeamRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewTeamRepository(db *sqlx.DB, logger zerolog.Logger) *TeamRepository {
	return &TeamRepository{db: db, logger: logger}
}

type teamRow struct {
	ID              int64      `db:"id"`
	Name            string     `db:"name"`
	Game            string     `db:"game"`
	Region          string     `db:"region"`
	Country         string     `db:"country"`
	LogoURL         string     `db:"logo_url"`
	Description     string     `db:"description"`
	ProfileURL      string     `db:"profile_url"`
	Rating          int        `db:"rating"`
	RatingUpdatedAt *time.Time `db:"rating_updated_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (r teamRow) toDomain() domain.Team {
	t := domain.Team{
		ID:          r.ID,
		Name:        r.Name,
		Game:        r.Game,
		Region:      domain.Region(r.Region),
		Country:     r.Country,
		LogoURL:     r.LogoURL,
		Description: r.Description,
		ProfileURL:  r.ProfileURL,
		Rating:      r.Rating,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.RatingUpdatedAt != nil {
		t.RatingUpdatedAt = *r.RatingUpdatedAt
	}
	return t
}

// Upsert inserts a team or widens the existing row: incoming empty
// fields never blank out what a previous scrape already knew.
func (r *TeamRepository) Upsert(ctx context.Context, team *domain.Team) (int64, error) {
	now := time.Now().UTC()
	region := string(team.Region)
	if region == "" {
		region = string(domain.RegionUnknown)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teams (name, game, region, country, logo_url, description, profile_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, game) DO UPDATE SET
			region      = CASE WHEN excluded.region NOT IN ('', 'unknown') THEN excluded.region ELSE region END,
			country     = CASE WHEN excluded.country != '' THEN excluded.country ELSE country END,
			logo_url    = CASE WHEN excluded.logo_url != '' THEN excluded.logo_url ELSE logo_url END,
			description = CASE WHEN excluded.description != '' THEN excluded.description ELSE description END,
			profile_url = CASE WHEN excluded.profile_url != '' THEN excluded.profile_url ELSE profile_url END,
			updated_at  = excluded.updated_at`,
		team.Name, team.Game, region, team.Country, team.LogoURL, team.Description, team.ProfileURL, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert team %s/%s: %w", team.Name, team.Game, err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM teams WHERE name = ? AND game = ?`, team.Name, team.Game); err != nil {
		return 0, err
	}
	return id, nil
}

// ListByGame returns all teams of a game in id order, which keeps
// reconciliation deterministic.
func (r *TeamRepository) ListByGame(ctx context.Context, game string) ([]domain.Team, error) {
	var rows []teamRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM teams WHERE game = ? ORDER BY id`, game); err != nil {
		return nil, err
	}
	teams := make([]domain.Team, len(rows))
	for i, row := range rows {
		teams[i] = row.toDomain()
	}
	return teams, nil
}

// GetByName returns nil without error when the team is unknown.
func (r *TeamRepository) GetByName(ctx context.Context, name, game string) (*domain.Team, error) {
	var row teamRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM teams WHERE name = ? AND game = ?`, name, game)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := row.toDomain()
	return &t, nil
}

func (r *TeamRepository) UpdateRating(ctx context.Context, id int64, rating int, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE teams SET rating = ?, rating_updated_at = ?, updated_at = ? WHERE id = ?`,
		rating, at.UTC(), time.Now().UTC(), id)
	return err
}

// DeleteAll is the explicit admin reset; nothing else removes teams.
func (r *TeamRepository) DeleteAll(ctx context.Context, game string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE game = ?`, game)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
