package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/store"
)

// --- Users ---
type users struct{ c *mongo.Collection }

func (r *users) Create(ctx context.Context, u *model.User) (*model.User, error) {
	out := *u
	out.Email = strings.ToLower(strings.TrimSpace(out.Email))
	if _, err := r.c.InsertOne(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *users) Get(ctx context.Context, userID string) (*model.User, error) {
	return findOne[model.User](ctx, r.c, bson.M{"_id": userID})
}

func (r *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.c, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *users) UpdateSettings(ctx context.Context, userID string, displayName *string, theme *model.Theme, updatedAt time.Time) (*model.User, error) {
	set := bson.M{"updatedAt": updatedAt.UTC()}
	if displayName != nil {
		set["displayName"] = *displayName
	}
	if theme != nil {
		set["theme"] = *theme
	}
	return updateOne[model.User](ctx, r.c, bson.M{"_id": userID}, bson.M{"$set": set})
}

// --- Goals ---
type goals struct{ c *mongo.Collection }

func (r *goals) Create(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	if _, err := r.c.InsertOne(ctx, g); err != nil {
		return nil, mapErr(err)
	}
	out := *g
	return &out, nil
}

func (r *goals) Get(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	return findOne[model.Goal](ctx, r.c, owned(userID, goalID))
}

func (r *goals) List(ctx context.Context, userID string) ([]*model.Goal, error) {
	return findAll[model.Goal](ctx, r.c, bson.M{"userId": userID}, byCreated)
}

func (r *goals) Update(ctx context.Context, userID, goalID string, p model.GoalPatch, updatedAt time.Time) (*model.Goal, error) {
	set := bson.M{"updatedAt": updatedAt.UTC()}
	setIf(set, "title", p.Title)
	setIf(set, "description", p.Description)
	setIf(set, "progress", p.Progress)
	setIf(set, "deadline", p.Deadline)
	setIf(set, "category", p.Category)
	setIf(set, "aiSuggested", p.AISuggested)
	setIf(set, "status", p.Status)
	return updateOne[model.Goal](ctx, r.c, owned(userID, goalID), bson.M{"$set": set})
}

func (r *goals) Delete(ctx context.Context, userID, goalID string) error {
	return deleteOne(ctx, r.c, owned(userID, goalID))
}

// --- Tasks ---
type tasks struct{ c *mongo.Collection }

func (r *tasks) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	if _, err := r.c.InsertOne(ctx, t); err != nil {
		return nil, mapErr(err)
	}
	out := *t
	return &out, nil
}

func (r *tasks) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	return findOne[model.Task](ctx, r.c, owned(userID, taskID))
}

func (r *tasks) List(ctx context.Context, userID string) ([]*model.Task, error) {
	return findAll[model.Task](ctx, r.c, bson.M{"userId": userID}, byCreated)
}

func (r *tasks) Update(ctx context.Context, userID, taskID string, p model.TaskPatch, updatedAt time.Time) (*model.Task, error) {
	set := bson.M{"updatedAt": updatedAt.UTC()}
	unset := bson.M{}
	setIf(set, "title", p.Title)
	setIf(set, "description", p.Description)
	setIf(set, "completed", p.Completed)
	setIf(set, "priority", p.Priority)
	setOrClear(set, unset, "dueDate", p.DueDate)
	setOrClear(set, unset, "goalId", p.GoalID)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return updateOne[model.Task](ctx, r.c, owned(userID, taskID), update)
}

func (r *tasks) Delete(ctx context.Context, userID, taskID string) error {
	return deleteOne(ctx, r.c, owned(userID, taskID))
}

// --- Reminders ---
type reminders struct{ c *mongo.Collection }

func (r *reminders) Create(ctx context.Context, m *model.Reminder) (*model.Reminder, error) {
	if _, err := r.c.InsertOne(ctx, m); err != nil {
		return nil, mapErr(err)
	}
	out := *m
	return &out, nil
}

func (r *reminders) Get(ctx context.Context, userID, reminderID string) (*model.Reminder, error) {
	return findOne[model.Reminder](ctx, r.c, owned(userID, reminderID))
}

func (r *reminders) List(ctx context.Context, userID string) ([]*model.Reminder, error) {
	return findAll[model.Reminder](ctx, r.c, bson.M{"userId": userID}, byCreated)
}

func (r *reminders) Due(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "nextTrigger", Value: 1}}).
		SetLimit(int64(limit))
	return findAll[model.Reminder](ctx, r.c, bson.M{
		"enabled":     true,
		"nextTrigger": bson.M{"$lte": now.UTC()},
	}, opts)
}

func (r *reminders) Update(ctx context.Context, userID, reminderID string, p model.ReminderPatch, updatedAt time.Time) (*model.Reminder, error) {
	set := bson.M{"updatedAt": updatedAt.UTC()}
	setIf(set, "title", p.Title)
	setIf(set, "description", p.Description)
	setIf(set, "type", p.Type)
	setIf(set, "frequency", p.Frequency)
	setIf(set, "enabled", p.Enabled)

	update := bson.M{}
	switch {
	case p.ClearNextTrigger:
		update["$unset"] = bson.M{"nextTrigger": ""}
	case p.NextTrigger != nil:
		set["nextTrigger"] = p.NextTrigger.UTC()
	}
	update["$set"] = set
	return updateOne[model.Reminder](ctx, r.c, owned(userID, reminderID), update)
}

func (r *reminders) Delete(ctx context.Context, userID, reminderID string) error {
	return deleteOne(ctx, r.c, owned(userID, reminderID))
}

// --- Chat sessions ---
type chatSessions struct {
	s *Store
	c *mongo.Collection
}

func (r *chatSessions) Create(ctx context.Context, cs *model.ChatSession) (*model.ChatSession, error) {
	if _, err := r.c.InsertOne(ctx, cs); err != nil {
		return nil, mapErr(err)
	}
	out := *cs
	return &out, nil
}

func (r *chatSessions) Get(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	return findOne[model.ChatSession](ctx, r.c, owned(userID, sessionID))
}

func (r *chatSessions) List(ctx context.Context, userID string, ordered bool) ([]*model.ChatSession, error) {
	if !ordered {
		return findAll[model.ChatSession](ctx, r.c, bson.M{"userId": userID})
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}})
	return findAll[model.ChatSession](ctx, r.c, bson.M{"userId": userID}, opts)
}

func (r *chatSessions) Rename(ctx context.Context, userID, sessionID, title string, updatedAt time.Time) (*model.ChatSession, error) {
	return updateOne[model.ChatSession](ctx, r.c, owned(userID, sessionID), bson.M{
		"$set": bson.M{"title": title, "updatedAt": updatedAt.UTC()},
	})
}

func (r *chatSessions) RecordMessage(ctx context.Context, userID, sessionID, preview string, at time.Time) (*model.ChatSession, error) {
	return updateOne[model.ChatSession](ctx, r.c, owned(userID, sessionID), bson.M{
		"$set": bson.M{"lastMessage": preview, "updatedAt": at.UTC()},
		"$inc": bson.M{"messageCount": 1},
	})
}

func (r *chatSessions) ResetMessages(ctx context.Context, userID, sessionID string, updatedAt time.Time) (*model.ChatSession, error) {
	return updateOne[model.ChatSession](ctx, r.c, owned(userID, sessionID), bson.M{
		"$set": bson.M{"lastMessage": "", "messageCount": 0, "updatedAt": updatedAt.UTC()},
	})
}

// Delete runs in a multi-document transaction; the deployment must be a replica set.
func (r *chatSessions) Delete(ctx context.Context, userID, sessionID string) error {
	sess, err := r.s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	messages := r.s.db.Collection(collChatMessages)
	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		if _, err := messages.DeleteMany(ctx, bson.M{"userId": userID, "chatSessionId": sessionID}); err != nil {
			return nil, err
		}
		return nil, deleteOne(ctx, r.c, owned(userID, sessionID))
	})
	return err
}

// --- Chat messages ---
type chatMessages struct{ c *mongo.Collection }

func (r *chatMessages) Create(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error) {
	if _, err := r.c.InsertOne(ctx, m); err != nil {
		return nil, mapErr(err)
	}
	out := *m
	return &out, nil
}

func (r *chatMessages) List(ctx context.Context, userID, sessionID string) ([]*model.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[model.ChatMessage](ctx, r.c, bson.M{"userId": userID, "chatSessionId": sessionID}, opts)
}

func (r *chatMessages) DeleteBySession(ctx context.Context, userID, sessionID string) (int64, error) {
	res, err := r.c.DeleteMany(ctx, bson.M{"userId": userID, "chatSessionId": sessionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// --- Analytics ---
type analytics struct{ c *mongo.Collection }

func (r *analytics) Upsert(ctx context.Context, e *model.AnalyticsEntry) (*model.AnalyticsEntry, error) {
	filter := bson.M{"userId": e.UserID, "date": e.Date}
	update := bson.M{
		"$set": bson.M{
			"tasksCompleted":    e.TasksCompleted,
			"goalsProgressed":   e.GoalsProgressed,
			"productivityScore": e.ProductivityScore,
			"updatedAt":         e.UpdatedAt.UTC(),
		},
		"$setOnInsert": bson.M{"_id": e.ID, "createdAt": e.CreatedAt.UTC()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out model.AnalyticsEntry
	if err := r.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *analytics) Get(ctx context.Context, userID, date string) (*model.AnalyticsEntry, error) {
	return findOne[model.AnalyticsEntry](ctx, r.c, bson.M{"userId": userID, "date": date})
}

func (r *analytics) ListSince(ctx context.Context, userID, sinceDate string) ([]*model.AnalyticsEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return findAll[model.AnalyticsEntry](ctx, r.c, bson.M{"userId": userID, "date": bson.M{"$gte": sinceDate}}, opts)
}

// setIf adds key to set when v is non-nil.
func setIf[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}

// setOrClear treats an empty string as a request to remove the field.
func setOrClear(set, unset bson.M, key string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		unset[key] = ""
		return
	}
	set[key] = *v
}

var _ store.Store = (*Store)(nil)
