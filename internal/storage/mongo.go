package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hyperjump/manabu/internal/models"
)

// MongoStore implements Store on a MongoDB collection. Substring and regex
// content filters map directly to case-insensitive $regex queries, so the
// whole Filter pushes down to the server.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoStore connects to the MongoDB at uri and uses the facts collection
// in the given database. timeout bounds every store operation; zero means 5s.
func NewMongoStore(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection("facts"),
		timeout:    timeout,
	}, nil
}

func (s *MongoStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Insert appends a fact. ID and CreatedAt are assigned when unset.
func (s *MongoStore) Insert(ctx context.Context, fact *models.Fact) (string, error) {
	if fact.Content == "" || fact.Source == "" {
		return "", fmt.Errorf("fact content and source must be non-empty")
	}
	if fact.ID == "" {
		fact.ID = uuid.New().String()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if _, err := s.collection.InsertOne(ctx, fact); err != nil {
		return "", err
	}
	return fact.ID, nil
}

// Get returns a fact by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*models.Fact, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var fact models.Fact
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&fact)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fact, nil
}

// Query returns facts matching the filter, most recent first.
func (s *MongoStore) Query(ctx context.Context, f Filter) ([]*models.Fact, error) {
	query := bson.M{}
	if len(f.ContentAny) > 0 {
		ors := make([]bson.M, 0, len(f.ContentAny))
		for _, sub := range f.ContentAny {
			ors = append(ors, bson.M{"content": bson.M{
				"$regex":   regexp.QuoteMeta(sub),
				"$options": "i",
			}})
		}
		query["$or"] = ors
	}
	if f.ContentRegex != "" {
		query["content"] = bson.M{"$regex": f.ContentRegex, "$options": "i"}
	}
	if f.Term != "" {
		query["term"] = f.Term
	}
	if f.Category != "" {
		query["category"] = string(f.Category)
	}
	if f.Source != "" {
		query["source"] = f.Source
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var facts []*models.Fact
	for cursor.Next(ctx) {
		var fact models.Fact
		if err := cursor.Decode(&fact); err != nil {
			return nil, err
		}
		facts = append(facts, &fact)
	}
	return facts, cursor.Err()
}

// ExistsBySource reports whether any fact with the given source exists.
func (s *MongoStore) ExistsBySource(ctx context.Context, source string) (bool, error) {
	return s.exists(ctx, bson.M{"source": source})
}

// ExistsByContent reports whether a fact with exactly this content exists.
func (s *MongoStore) ExistsByContent(ctx context.Context, content string) (bool, error) {
	return s.exists(ctx, bson.M{"content": content})
}

func (s *MongoStore) exists(ctx context.Context, query bson.M) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	n, err := s.collection.CountDocuments(ctx, query, options.Count().SetLimit(1))
	return n > 0, err
}

// Count returns the total number of stored facts.
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.collection.CountDocuments(ctx, bson.M{})
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
