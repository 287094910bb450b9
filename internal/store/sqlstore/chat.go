package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/streakedin/streakedin/internal/model"
)

type chatSessions struct{ s *Store }

const sessionColumns = `id, user_id, title, last_message, message_count, created_at, updated_at`

func scanSession(sc scanner) (*model.ChatSession, error) {
	var (
		cs               model.ChatSession
		created, updated int64
	)
	if err := sc.Scan(&cs.ID, &cs.UserID, &cs.Title, &cs.LastMessage, &cs.MessageCount, &created, &updated); err != nil {
		return nil, err
	}
	cs.CreatedAt = fromTS(created)
	cs.UpdatedAt = fromTS(updated)
	return &cs, nil
}

func (r *chatSessions) Create(ctx context.Context, cs *model.ChatSession) (*model.ChatSession, error) {
	_, err := r.s.exec(ctx, r.s.db, `
        INSERT INTO chat_sessions (`+sessionColumns+`)
        VALUES (?,?,?,?,?,?,?)
    `, cs.ID, cs.UserID, cs.Title, cs.LastMessage, cs.MessageCount, ts(cs.CreatedAt), ts(cs.UpdatedAt))
	if err != nil {
		return nil, err
	}
	out := *cs
	return &out, nil
}

func (r *chatSessions) Get(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	return r.get(ctx, r.s.db, userID, sessionID)
}

func (r *chatSessions) get(ctx context.Context, q sqlExecer, userID, sessionID string) (*model.ChatSession, error) {
	row := r.s.queryRow(ctx, q, `SELECT `+sessionColumns+` FROM chat_sessions WHERE user_id=? AND id=?`, userID, sessionID)
	cs, err := scanSession(row)
	return cs, r.s.mapErr(err)
}

func (r *chatSessions) List(ctx context.Context, userID string, ordered bool) ([]*model.ChatSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM chat_sessions WHERE user_id=?`
	if ordered {
		q += ` ORDER BY updated_at DESC, id ASC`
	}
	rows, err := r.s.query(ctx, r.s.db, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ChatSession
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (r *chatSessions) Rename(ctx context.Context, userID, sessionID, title string, updatedAt time.Time) (*model.ChatSession, error) {
	return r.mutate(ctx, userID, sessionID, `UPDATE chat_sessions SET title=?, updated_at=? WHERE user_id=? AND id=?`,
		title, ts(updatedAt), userID, sessionID)
}

func (r *chatSessions) RecordMessage(ctx context.Context, userID, sessionID, preview string, at time.Time) (*model.ChatSession, error) {
	return r.mutate(ctx, userID, sessionID,
		`UPDATE chat_sessions SET last_message=?, message_count=message_count+1, updated_at=? WHERE user_id=? AND id=?`,
		preview, ts(at), userID, sessionID)
}

func (r *chatSessions) ResetMessages(ctx context.Context, userID, sessionID string, updatedAt time.Time) (*model.ChatSession, error) {
	return r.mutate(ctx, userID, sessionID,
		`UPDATE chat_sessions SET last_message='', message_count=0, updated_at=? WHERE user_id=? AND id=?`,
		ts(updatedAt), userID, sessionID)
}

// mutate applies one UPDATE and reads the row back in the same transaction.
func (r *chatSessions) mutate(ctx context.Context, userID, sessionID, stmt string, args ...any) (*model.ChatSession, error) {
	var out *model.ChatSession
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := r.s.exec(ctx, tx, stmt, args...)
		if err != nil {
			return err
		}
		if err := expectOne(res); err != nil {
			return err
		}
		out, err = r.get(ctx, tx, userID, sessionID)
		return err
	})
	return out, err
}

func (r *chatSessions) Delete(ctx context.Context, userID, sessionID string) error {
	return r.s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.s.exec(ctx, tx, `DELETE FROM chat_messages WHERE user_id=? AND chat_session_id=?`, userID, sessionID); err != nil {
			return err
		}
		res, err := r.s.exec(ctx, tx, `DELETE FROM chat_sessions WHERE user_id=? AND id=?`, userID, sessionID)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
}

type chatMessages struct{ s *Store }

const messageColumns = `id, chat_session_id, user_id, role, content, ts`

func (r *chatMessages) Create(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error) {
	_, err := r.s.exec(ctx, r.s.db, `
        INSERT INTO chat_messages (`+messageColumns+`)
        VALUES (?,?,?,?,?,?)
    `, m.ID, m.ChatSessionID, m.UserID, string(m.Role), m.Content, ts(m.Timestamp))
	if err != nil {
		return nil, err
	}
	out := *m
	return &out, nil
}

func (r *chatMessages) List(ctx context.Context, userID, sessionID string) ([]*model.ChatMessage, error) {
	rows, err := r.s.query(ctx, r.s.db, `
        SELECT `+messageColumns+` FROM chat_messages
        WHERE user_id=? AND chat_session_id=?
        ORDER BY ts ASC, id ASC
    `, userID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ChatMessage
	for rows.Next() {
		var (
			m    model.ChatMessage
			role string
			at   int64
		)
		if err := rows.Scan(&m.ID, &m.ChatSessionID, &m.UserID, &role, &m.Content, &at); err != nil {
			return nil, err
		}
		m.Role = model.ChatRole(role)
		m.Timestamp = fromTS(at)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *chatMessages) DeleteBySession(ctx context.Context, userID, sessionID string) (int64, error) {
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM chat_messages WHERE user_id=? AND chat_session_id=?`, userID, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
