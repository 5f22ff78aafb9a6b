package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"statree-backend/internal/models"
)

// SettingsRepo persists the single local profile: the remembered username
// and the bookmarked problem slugs.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

func (r *SettingsRepo) GetUsername(ctx context.Context) (string, error) {
	var username string
	err := r.pool.QueryRow(ctx, "SELECT username FROM local_settings WHERE id = 1").Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return username, nil
}

func (r *SettingsRepo) SetUsername(ctx context.Context, username string) error {
	query := `
		INSERT INTO local_settings (id, username, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, updated_at = NOW()`
	_, err := r.pool.Exec(ctx, query, username)
	return err
}

func (r *SettingsRepo) ClearUsername(ctx context.Context) error {
	return r.SetUsername(ctx, "")
}

func (r *SettingsRepo) ListBookmarks(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT slug FROM bookmarks ORDER BY created_at, slug")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slugs := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

func (r *SettingsRepo) AddBookmark(ctx context.Context, slug string) error {
	_, err := r.pool.Exec(ctx, "INSERT INTO bookmarks (slug) VALUES ($1) ON CONFLICT (slug) DO NOTHING", slug)
	return err
}

func (r *SettingsRepo) RemoveBookmark(ctx context.Context, slug string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM bookmarks WHERE slug = $1", slug)
	return err
}

// ToggleBookmark flips the bookmark for slug and reports whether it is now
// bookmarked.
func (r *SettingsRepo) ToggleBookmark(ctx context.Context, slug string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, "DELETE FROM bookmarks WHERE slug = $1", slug)
	if err != nil {
		return false, err
	}
	bookmarked := tag.RowsAffected() == 0
	if bookmarked {
		if _, err := tx.Exec(ctx, "INSERT INTO bookmarks (slug) VALUES ($1)", slug); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return bookmarked, nil
}

func (r *SettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	s := &models.Settings{}
	err := r.pool.QueryRow(ctx, "SELECT username, updated_at FROM local_settings WHERE id = 1").Scan(&s.Username, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		s.UpdatedAt = time.Time{}
	} else if err != nil {
		return nil, err
	}
	bookmarks, err := r.ListBookmarks(ctx)
	if err != nil {
		return nil, err
	}
	s.Bookmarks = bookmarks
	return s, nil
}
