// Package mongo provides the networked backend: a MongoDB collection of
// posts addressed by server-assigned ObjectIDs.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/smartblog/smartblog/pkg/config"
	"github.com/smartblog/smartblog/pkg/post"
)

// document is the collection-native record shape. Content is an arbitrary
// bson document, never inspected.
type document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   any                `bson:"content"`
	Status    string             `bson:"status"`
	CreatedAt string             `bson:"created_at"`
	UpdatedAt string             `bson:"updated_at"`
}

func (d document) canonical() post.Post {
	return post.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Store implements post.Store over a MongoDB collection.
type Store struct {
	client *mongo.Client
	posts  *mongo.Collection
}

// Connect dials the configured MongoDB deployment and verifies it with a
// ping bounded by the probe timeout. Any failure is returned to the caller,
// which is expected to fall back to the local backend.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ProbeTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &Store{
		client: client,
		posts:  client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Name identifies the backend in logs.
func (s *Store) Name() string { return "mongo" }

// Close disconnects from the deployment.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// parseID maps the external string id onto an ObjectID. Anything that does
// not parse resolves to ErrNotFound.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, post.ErrNotFound
	}
	return oid, nil
}

// Insert stores a new post and returns it with the server-assigned id.
func (s *Store) Insert(ctx context.Context, draft post.Draft) (post.Post, error) {
	doc := document{
		Title:     draft.Title,
		Content:   draft.Content,
		Status:    draft.Status,
		CreatedAt: draft.CreatedAt,
		UpdatedAt: draft.UpdatedAt,
	}

	res, err := s.posts.InsertOne(ctx, doc)
	if err != nil {
		return post.Post{}, fmt.Errorf("inserting post: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return post.Post{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	doc.ID = oid
	return doc.canonical(), nil
}

// FindAll returns every post in cursor order.
func (s *Store) FindAll(ctx context.Context) ([]post.Post, error) {
	cursor, err := s.posts.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding posts: %w", err)
	}

	posts := make([]post.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, doc.canonical())
	}

	return posts, nil
}

// FindByID returns the post matched by id, or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (post.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return post.Post{}, err
	}

	var doc document
	err = s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return post.Post{}, post.ErrNotFound
	}
	if err != nil {
		return post.Post{}, fmt.Errorf("finding post: %w", err)
	}

	return doc.canonical(), nil
}

// Update merges fields into the post matched by id. Missing records, bad ids
// and write failures all reduce to ErrNotFound.
func (s *Store) Update(ctx context.Context, id string, fields map[string]any) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	set := bson.M{}
	for field, value := range fields {
		set[field] = value
	}

	res, err := s.posts.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: %v", post.ErrNotFound, err)
	}
	if res.MatchedCount == 0 {
		return post.ErrNotFound
	}

	return nil
}

// Delete removes the post matched by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: %v", post.ErrNotFound, err)
	}
	if res.DeletedCount == 0 {
		return post.ErrNotFound
	}

	return nil
}
