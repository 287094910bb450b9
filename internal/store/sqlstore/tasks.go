package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/streakedin/streakedin/internal/model"
)

type tasks struct{ s *Store }

const taskColumns = `id, user_id, title, description, completed, priority, due_date, goal_id, created_at, updated_at`

func scanTask(sc scanner) (*model.Task, error) {
	var (
		t                model.Task
		priority         string
		due, goal        sql.NullString
		created, updated int64
	)
	if err := sc.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &priority, &due, &goal,
		&created, &updated); err != nil {
		return nil, err
	}
	t.Priority = model.Priority(priority)
	t.DueDate = fromNullString(due)
	t.GoalID = fromNullString(goal)
	t.CreatedAt = fromTS(created)
	t.UpdatedAt = fromTS(updated)
	return &t, nil
}

func (r *tasks) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	_, err := r.s.exec(ctx, r.s.db, `
        INSERT INTO tasks (`+taskColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, t.ID, t.UserID, t.Title, t.Description, t.Completed, string(t.Priority), nullString(t.DueDate), nullString(t.GoalID),
		ts(t.CreatedAt), ts(t.UpdatedAt))
	if err != nil {
		return nil, err
	}
	out := *t
	return &out, nil
}

func (r *tasks) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	return r.get(ctx, r.s.db, userID, taskID)
}

func (r *tasks) get(ctx context.Context, q sqlExecer, userID, taskID string) (*model.Task, error) {
	row := r.s.queryRow(ctx, q, `SELECT `+taskColumns+` FROM tasks WHERE user_id=? AND id=?`, userID, taskID)
	t, err := scanTask(row)
	return t, r.s.mapErr(err)
}

func (r *tasks) List(ctx context.Context, userID string) ([]*model.Task, error) {
	rows, err := r.s.query(ctx, r.s.db, `SELECT `+taskColumns+` FROM tasks WHERE user_id=? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tasks) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch, updatedAt time.Time) (*model.Task, error) {
	var out *model.Task
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := r.get(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		patch.Apply(t)
		t.UpdatedAt = updatedAt.UTC()
		res, err := r.s.exec(ctx, tx, `
            UPDATE tasks SET title=?, description=?, completed=?, priority=?, due_date=?, goal_id=?, updated_at=?
            WHERE user_id=? AND id=?
        `, t.Title, t.Description, t.Completed, string(t.Priority), nullString(t.DueDate), nullString(t.GoalID),
			ts(t.UpdatedAt), userID, taskID)
		if err != nil {
			return err
		}
		if err := expectOne(res); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func (r *tasks) Delete(ctx context.Context, userID, taskID string) error {
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM tasks WHERE user_id=? AND id=?`, userID, taskID)
	if err != nil {
		return err
	}
	return expectOne(res)
}
