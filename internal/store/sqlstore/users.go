package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/streakedin/streakedin/internal/model"
)

type users struct{ s *Store }

const userColumns = `id, email, password_hash, display_name, theme, created_at, updated_at`

func scanUser(sc scanner) (*model.User, error) {
	var (
		u                model.User
		theme            string
		created, updated int64
	)
	if err := sc.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &theme, &created, &updated); err != nil {
		return nil, err
	}
	u.Theme = model.Theme(theme)
	u.CreatedAt = fromTS(created)
	u.UpdatedAt = fromTS(updated)
	return &u, nil
}

func (r *users) Create(ctx context.Context, u *model.User) (*model.User, error) {
	out := *u
	out.Email = strings.ToLower(strings.TrimSpace(out.Email))
	_, err := r.s.exec(ctx, r.s.db, `
        INSERT INTO users (`+userColumns+`)
        VALUES (?,?,?,?,?,?,?)
    `, out.ID, out.Email, out.PasswordHash, out.DisplayName, string(out.Theme), ts(out.CreatedAt), ts(out.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := r.s.queryRow(ctx, r.s.db, `SELECT `+userColumns+` FROM users WHERE id=?`, userID)
	u, err := scanUser(row)
	return u, r.s.mapErr(err)
}

func (r *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.s.queryRow(ctx, r.s.db, `SELECT `+userColumns+` FROM users WHERE email=?`, strings.ToLower(strings.TrimSpace(email)))
	u, err := scanUser(row)
	return u, r.s.mapErr(err)
}

func (r *users) UpdateSettings(ctx context.Context, userID string, displayName *string, theme *model.Theme, updatedAt time.Time) (*model.User, error) {
	var out *model.User
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		u, err := scanUser(r.s.queryRow(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id=?`, userID))
		if err != nil {
			return r.s.mapErr(err)
		}
		if displayName != nil {
			u.DisplayName = *displayName
		}
		if theme != nil {
			u.Theme = *theme
		}
		u.UpdatedAt = updatedAt.UTC()
		if _, err := r.s.exec(ctx, tx, `UPDATE users SET display_name=?, theme=?, updated_at=? WHERE id=?`,
			u.DisplayName, string(u.Theme), ts(u.UpdatedAt), userID); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}
