package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

var _ repository.CommentRepository = (*CommentStore)(nil)

type commentDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ModuleID    string             `bson:"moduleId"`
	UserID      string             `bson:"userId"`
	UserName    string             `bson:"userName"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *commentDoc) toModel() model.Comment {
	return model.Comment{
		ID:          d.ID.Hex(),
		ModuleID:    d.ModuleID,
		UserID:      d.UserID,
		UserName:    d.UserName,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

// CommentStore persists comments in the comments collection.
type CommentStore struct {
	col *mongo.Collection
}

func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	// BSON dates have millisecond precision; truncate so the returned value
	// equals what a later read gives back.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := commentDoc{
		ID:          primitive.NewObjectID(),
		ModuleID:    comment.ModuleID,
		UserID:      comment.UserID,
		UserName:    comment.UserName,
		Description: comment.Description,
		CreatedAt:   now,
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: inserting comment: %w", err)
	}

	comment.ID = doc.ID.Hex()
	comment.CreatedAt = now
	return nil
}

func (s *CommentStore) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	oid, err := objectID("comment", id)
	if err != nil {
		return nil, err
	}

	var doc commentDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "comment", id, "finding")
	}
	c := doc.toModel()
	return &c, nil
}

// ListByModule returns the module's comments newest first. The _id sort key
// breaks ties between comments created in the same millisecond; ObjectIDs
// grow with insertion time.
func (s *CommentStore) ListByModule(ctx context.Context, moduleID string) ([]model.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"moduleId": moduleID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: listing comments: %w", err)
	}
	defer cur.Close(ctx)

	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding comments: %w", err)
	}

	comments := make([]model.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, docs[i].toModel())
	}
	return comments, nil
}

func (s *CommentStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID("comment", id)
	if err != nil {
		return err
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo: deleting comment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
