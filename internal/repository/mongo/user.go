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
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

var _ repository.UserRepository = (*UserStore)(nil)

// userDoc is the stored shape of a user. The hash lives in "password".
type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Favorites []string           `bson:"favorites"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
}

func (d *userDoc) toModel() *model.User {
	favorites := d.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Favorites:    favorites,
		CreatedAt:    d.CreatedAt,
	}
}

// UserStore persists identities in the users collection.
type UserStore struct {
	col *mongo.Collection
}

// Create inserts user and fills in ID and CreatedAt. A duplicate email,
// caught by the unique index, is an apperror.Conflict.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Favorites: []string{},
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("email", "email already registered")
		}
		return fmt.Errorf("mongo: inserting user: %w", err)
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	user.Favorites = doc.Favorites
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID("user", id)
	if err != nil {
		return nil, err
	}

	var doc userDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "user", id, "finding")
	}
	return doc.toModel(), nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var doc userDoc
	if err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "user", email, "finding")
	}
	return doc.toModel(), nil
}

// ToggleFavorite uses two conditional single-document updates instead of
// read-modify-write, so concurrent toggles never lose an update:
//  1. $pull the module, but only if it is currently in the list
//  2. if nothing matched, $addToSet it
//
// If step 2 matches nothing either, the user does not exist.
func (s *UserStore) ToggleFavorite(ctx context.Context, userID, moduleID string) ([]string, bool, error) {
	oid, err := objectID("user", userID)
	if err != nil {
		return nil, false, err
	}
	after := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"favorites": 1})

	var doc userDoc
	err = s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "favorites": moduleID},
		bson.M{"$pull": bson.M{"favorites": moduleID}},
		after,
	).Decode(&doc)
	if err == nil {
		return doc.toModel().Favorites, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("mongo: removing favorite: %w", err)
	}

	err = s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{"favorites": moduleID}},
		after,
	).Decode(&doc)
	if err != nil {
		return nil, false, notFoundOr(err, "user", userID, "adding favorite for")
	}
	return doc.toModel().Favorites, true, nil
}
