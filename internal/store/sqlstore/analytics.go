package sqlstore

import (
	"context"

	"github.com/streakedin/streakedin/internal/model"
)

type analytics struct{ s *Store }

const analyticsColumns = `id, user_id, day, tasks_completed, goals_progressed, productivity_score, created_at, updated_at`

func scanAnalytics(sc scanner) (*model.AnalyticsEntry, error) {
	var (
		e                model.AnalyticsEntry
		created, updated int64
	)
	if err := sc.Scan(&e.ID, &e.UserID, &e.Date, &e.TasksCompleted, &e.GoalsProgressed, &e.ProductivityScore,
		&created, &updated); err != nil {
		return nil, err
	}
	e.CreatedAt = fromTS(created)
	e.UpdatedAt = fromTS(updated)
	return &e, nil
}

// Upsert keeps the original id and createdAt when the (user, day) row exists.
func (r *analytics) Upsert(ctx context.Context, e *model.AnalyticsEntry) (*model.AnalyticsEntry, error) {
	_, err := r.s.exec(ctx, r.s.db, `
        INSERT INTO analytics (`+analyticsColumns+`)
        VALUES (?,?,?,?,?,?,?,?)
        ON CONFLICT (user_id, day) DO UPDATE SET
            tasks_completed = excluded.tasks_completed,
            goals_progressed = excluded.goals_progressed,
            productivity_score = excluded.productivity_score,
            updated_at = excluded.updated_at
    `, e.ID, e.UserID, e.Date, e.TasksCompleted, e.GoalsProgressed, e.ProductivityScore, ts(e.CreatedAt), ts(e.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, e.UserID, e.Date)
}

func (r *analytics) Get(ctx context.Context, userID, date string) (*model.AnalyticsEntry, error) {
	row := r.s.queryRow(ctx, r.s.db, `SELECT `+analyticsColumns+` FROM analytics WHERE user_id=? AND day=?`, userID, date)
	e, err := scanAnalytics(row)
	return e, r.s.mapErr(err)
}

func (r *analytics) ListSince(ctx context.Context, userID, sinceDate string) ([]*model.AnalyticsEntry, error) {
	rows, err := r.s.query(ctx, r.s.db, `
        SELECT `+analyticsColumns+` FROM analytics
        WHERE user_id=? AND day >= ?
        ORDER BY day ASC
    `, userID, sinceDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AnalyticsEntry
	for rows.Next() {
		e, err := scanAnalytics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
