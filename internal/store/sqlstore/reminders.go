package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/streakedin/streakedin/internal/model"
)

type reminders struct{ s *Store }

const reminderColumns = `id, user_id, title, description, type, frequency, enabled, next_trigger, created_at, updated_at`

func scanReminder(sc scanner) (*model.Reminder, error) {
	var (
		r                model.Reminder
		typ, freq        string
		next             sql.NullInt64
		created, updated int64
	)
	if err := sc.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &typ, &freq, &r.Enabled, &next,
		&created, &updated); err != nil {
		return nil, err
	}
	r.Type = model.ReminderType(typ)
	r.Frequency = model.Frequency(freq)
	r.NextTrigger = fromNullTS(next)
	r.CreatedAt = fromTS(created)
	r.UpdatedAt = fromTS(updated)
	return &r, nil
}

func (r *reminders) Create(ctx context.Context, m *model.Reminder) (*model.Reminder, error) {
	_, err := r.s.exec(ctx, r.s.db, `
        INSERT INTO reminders (`+reminderColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, m.ID, m.UserID, m.Title, m.Description, string(m.Type), string(m.Frequency), m.Enabled, nullTS(m.NextTrigger),
		ts(m.CreatedAt), ts(m.UpdatedAt))
	if err != nil {
		return nil, err
	}
	out := *m
	return &out, nil
}

func (r *reminders) Get(ctx context.Context, userID, reminderID string) (*model.Reminder, error) {
	return r.get(ctx, r.s.db, userID, reminderID)
}

func (r *reminders) get(ctx context.Context, q sqlExecer, userID, reminderID string) (*model.Reminder, error) {
	row := r.s.queryRow(ctx, q, `SELECT `+reminderColumns+` FROM reminders WHERE user_id=? AND id=?`, userID, reminderID)
	m, err := scanReminder(row)
	return m, r.s.mapErr(err)
}

func (r *reminders) List(ctx context.Context, userID string) ([]*model.Reminder, error) {
	rows, err := r.s.query(ctx, r.s.db, `SELECT `+reminderColumns+` FROM reminders WHERE user_id=? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

func (r *reminders) Due(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.s.query(ctx, r.s.db, `
        SELECT `+reminderColumns+` FROM reminders
        WHERE enabled = ? AND next_trigger IS NOT NULL AND next_trigger <= ?
        ORDER BY next_trigger ASC
        LIMIT ?
    `, true, ts(now), limit)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

func collectReminders(rows *sql.Rows) ([]*model.Reminder, error) {
	defer rows.Close()
	var out []*model.Reminder
	for rows.Next() {
		m, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *reminders) Update(ctx context.Context, userID, reminderID string, patch model.ReminderPatch, updatedAt time.Time) (*model.Reminder, error) {
	var out *model.Reminder
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		m, err := r.get(ctx, tx, userID, reminderID)
		if err != nil {
			return err
		}
		patch.Apply(m)
		m.UpdatedAt = updatedAt.UTC()
		res, err := r.s.exec(ctx, tx, `
            UPDATE reminders SET title=?, description=?, type=?, frequency=?, enabled=?, next_trigger=?, updated_at=?
            WHERE user_id=? AND id=?
        `, m.Title, m.Description, string(m.Type), string(m.Frequency), m.Enabled, nullTS(m.NextTrigger),
			ts(m.UpdatedAt), userID, reminderID)
		if err != nil {
			return err
		}
		if err := expectOne(res); err != nil {
			return err
		}
		out = m
		return nil
	})
	return out, err
}

func (r *reminders) Delete(ctx context.Context, userID, reminderID string) error {
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM reminders WHERE user_id=? AND id=?`, userID, reminderID)
	if err != nil {
		return err
	}
	return expectOne(res)
}
