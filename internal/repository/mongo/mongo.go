// Package mongo implements the repository interfaces on MongoDB.
//
// Collection and field names match the documents the catalog has always
// stored ("users", "modules", "comments"; "shortdescription", "moduleId",
// ...), so an existing database can be pointed at this service unchanged.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/repository"
)

const (
	usersCollection    = "users"
	modulesCollection  = "modules"
	commentsCollection = "comments"

	connectTimeout = 10 * time.Second
)

var _ repository.Store = (*Store)(nil)

// Store is a connected MongoDB backend.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	users    *UserStore
	modules  *ModuleStore
	comments *CommentStore
}

// New connects to uri, verifies the connection and makes sure the indexes
// exist. The returned Store owns the client; Close disconnects it.
func New(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: pinging: %w", err)
	}

	s := newWithDatabase(client.Database(database))
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

// newWithDatabase wires the collection stores without connecting or creating
// indexes. Tests hand it the mock deployment's database.
func newWithDatabase(db *mongo.Database) *Store {
	return &Store{
		client:   db.Client(),
		db:       db,
		users:    &UserStore{col: db.Collection(usersCollection)},
		modules:  &ModuleStore{col: db.Collection(modulesCollection)},
		comments: &CommentStore{col: db.Collection(commentsCollection)},
	}
}

// ensureIndexes creates the indexes the stores rely on. CreateOne is a no-op
// when an identical index already exists.
//
// The unique email index is what makes duplicate registration impossible
// even when two requests pass the service's pre-check at the same time.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongo: creating users.email index: %w", err)
	}

	_, err = s.db.Collection(commentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "moduleId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo: creating comments index: %w", err)
	}

	return nil
}

func (s *Store) Users() repository.UserRepository       { return s.users }
func (s *Store) Modules() repository.ModuleRepository   { return s.modules }
func (s *Store) Comments() repository.CommentRepository { return s.comments }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo: ping: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// objectID parses a hex id from a URL. A malformed id cannot match any
// document, so it is reported the same way as a missing one.
func objectID(resource, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(resource, id)
	}
	return oid, nil
}

// notFoundOr maps ErrNoDocuments to apperror.NotFound and wraps anything else.
func notFoundOr(err error, resource, id, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.NotFound(resource, id)
	}
	return fmt.Errorf("mongo: %s %s %s: %w", op, resource, id, err)
}
