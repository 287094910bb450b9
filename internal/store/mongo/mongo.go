// Package mongo is the document-store backend built on the official MongoDB driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/streakedin/streakedin/internal/store"
)

// Collection names.
const (
	collUsers        = "users"
	collGoals        = "goals"
	collTasks        = "tasks"
	collReminders    = "reminders"
	collChatSessions = "chatSessions"
	collChatMessages = "chatMessages"
	collAnalytics    = "analytics"
)

// Store is a store.Store backed by a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri, pings the primary and ensures indexes on database.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collGoals:     {{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}}},
		collTasks:     {{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}}},
		collReminders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "enabled", Value: 1}, {Key: "nextTrigger", Value: 1}}},
		},
		collChatSessions: {{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}}},
		collChatMessages: {{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "chatSessionId", Value: 1}, {Key: "timestamp", Value: 1}}}},
		collAnalytics: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo indexes %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Users() store.Users { return &users{c: s.db.Collection(collUsers)} }
func (s *Store) Goals() store.Goals { return &goals{c: s.db.Collection(collGoals)} }
func (s *Store) Tasks() store.Tasks { return &tasks{c: s.db.Collection(collTasks)} }
func (s *Store) Reminders() store.Reminders {
	return &reminders{c: s.db.Collection(collReminders)}
}
func (s *Store) ChatSessions() store.ChatSessions {
	return &chatSessions{s: s, c: s.db.Collection(collChatSessions)}
}
func (s *Store) ChatMessages() store.ChatMessages {
	return &chatMessages{c: s.db.Collection(collChatMessages)}
}
func (s *Store) Analytics() store.Analytics { return &analytics{c: s.db.Collection(collAnalytics)} }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Used by tests.
func (s *Store) Drop(ctx context.Context) error { return s.db.Drop(ctx) }

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrConflict
	}
	return err
}

func owned(userID, id string) bson.M { return bson.M{"_id": id, "userId": userID} }

var byCreated = options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

func returnAfter() *options.FindOneAndUpdateOptionsBuilder {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// findAll decodes every document matched by filter.
func findAll[T any](ctx context.Context, c *mongo.Collection, filter any, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var out []*T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter any) (*T, error) {
	var out T
	if err := c.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func updateOne[T any](ctx context.Context, c *mongo.Collection, filter, update any) (*T, error) {
	var out T
	if err := c.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func deleteOne(ctx context.Context, c *mongo.Collection, filter any) error {
	res, err := c.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
