package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/streakedin/streakedin/internal/model"
)

type goals struct{ s *Store }

const goalColumns = `id, user_id, title, description, progress, deadline, category, ai_suggested, status, created_at, updated_at`

func scanGoal(sc scanner) (*model.Goal, error) {
	var (
		g                model.Goal
		status           string
		created, updated int64
	)
	if err := sc.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Progress, &g.Deadline, &g.Category,
		&g.AISuggested, &status, &created, &updated); err != nil {
		return nil, err
	}
	g.Status = model.GoalStatus(status)
	g.CreatedAt = fromTS(created)
	g.UpdatedAt = fromTS(updated)
	return &g, nil
}

func (r *goals) Create(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	_, err := r.s.exec(ctx, r.s.db, `
        INSERT INTO goals (`+goalColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)
    `, g.ID, g.UserID, g.Title, g.Description, g.Progress, g.Deadline, g.Category, g.AISuggested,
		string(g.Status), ts(g.CreatedAt), ts(g.UpdatedAt))
	if err != nil {
		return nil, err
	}
	out := *g
	return &out, nil
}

func (r *goals) Get(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	return r.get(ctx, r.s.db, userID, goalID)
}

func (r *goals) get(ctx context.Context, q sqlExecer, userID, goalID string) (*model.Goal, error) {
	row := r.s.queryRow(ctx, q, `SELECT `+goalColumns+` FROM goals WHERE user_id=? AND id=?`, userID, goalID)
	g, err := scanGoal(row)
	return g, r.s.mapErr(err)
}

func (r *goals) List(ctx context.Context, userID string) ([]*model.Goal, error) {
	rows, err := r.s.query(ctx, r.s.db, `SELECT `+goalColumns+` FROM goals WHERE user_id=? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *goals) Update(ctx context.Context, userID, goalID string, patch model.GoalPatch, updatedAt time.Time) (*model.Goal, error) {
	var out *model.Goal
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		g, err := r.get(ctx, tx, userID, goalID)
		if err != nil {
			return err
		}
		patch.Apply(g)
		g.UpdatedAt = updatedAt.UTC()
		res, err := r.s.exec(ctx, tx, `
            UPDATE goals SET title=?, description=?, progress=?, deadline=?, category=?, ai_suggested=?, status=?, updated_at=?
            WHERE user_id=? AND id=?
        `, g.Title, g.Description, g.Progress, g.Deadline, g.Category, g.AISuggested, string(g.Status), ts(g.UpdatedAt),
			userID, goalID)
		if err != nil {
			return err
		}
		if err := expectOne(res); err != nil {
			return err
		}
		out = g
		return nil
	})
	return out, err
}

func (r *goals) Delete(ctx context.Context, userID, goalID string) error {
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM goals WHERE user_id=? AND id=?`, userID, goalID)
	if err != nil {
		return err
	}
	return expectOne(res)
}
