package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

var _ repository.ModuleRepository = (*ModuleStore)(nil)

type moduleDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	ShortDescription string             `bson:"shortdescription"`
	Description      string             `bson:"description"`
	Content          string             `bson:"content"`
	StudyCredit      int                `bson:"studycredit"`
	Location         string             `bson:"location"`
	Level            string             `bson:"level"`
	LearningOutcomes string             `bson:"learningoutcomes"`
}

func newModuleDoc(m *model.Module) moduleDoc {
	return moduleDoc{
		Name:             m.Name,
		ShortDescription: m.ShortDescription,
		Description:      m.Description,
		Content:          m.Content,
		StudyCredit:      m.StudyCredit,
		Location:         m.Location,
		Level:            m.Level,
		LearningOutcomes: m.LearningOutcomes,
	}
}

func (d *moduleDoc) toModel() model.Module {
	return model.Module{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		ShortDescription: d.ShortDescription,
		Description:      d.Description,
		Content:          d.Content,
		StudyCredit:      d.StudyCredit,
		Location:         d.Location,
		Level:            d.Level,
		LearningOutcomes: d.LearningOutcomes,
	}
}

// ModuleStore persists catalog modules in the modules collection.
type ModuleStore struct {
	col *mongo.Collection
}

func (s *ModuleStore) Create(ctx context.Context, module *model.Module) error {
	doc := newModuleDoc(module)
	doc.ID = primitive.NewObjectID()

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: inserting module: %w", err)
	}

	module.ID = doc.ID.Hex()
	return nil
}

func (s *ModuleStore) GetByID(ctx context.Context, id string) (*model.Module, error) {
	oid, err := objectID("module", id)
	if err != nil {
		return nil, err
	}

	var doc moduleDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "module", id, "finding")
	}
	m := doc.toModel()
	return &m, nil
}

// List returns the modules matching filter, sorted by name.
func (s *ModuleStore) List(ctx context.Context, filter repository.ModuleFilter) ([]model.Module, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.col.Find(ctx, moduleQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: listing modules: %w", err)
	}
	defer cur.Close(ctx)

	var docs []moduleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding modules: %w", err)
	}

	modules := make([]model.Module, 0, len(docs))
	for i := range docs {
		modules = append(modules, docs[i].toModel())
	}
	return modules, nil
}

// moduleQuery translates a ModuleFilter into a find filter. The search term
// is quoted before it becomes a regex, so "C++" matches literally.
func moduleQuery(filter repository.ModuleFilter) bson.M {
	q := bson.M{}
	if len(filter.Locations) > 0 {
		q["location"] = bson.M{"$in": filter.Locations}
	}
	if len(filter.StudyCredits) > 0 {
		q["studycredit"] = bson.M{"$in": filter.StudyCredits}
	}
	if len(filter.Levels) > 0 {
		q["level"] = bson.M{"$in": filter.Levels}
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"shortdescription": re},
			bson.M{"description": re},
		}
	}
	return q
}

// Update replaces every field except _id.
func (s *ModuleStore) Update(ctx context.Context, module *model.Module) error {
	oid, err := objectID("module", module.ID)
	if err != nil {
		return err
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": newModuleDoc(module)})
	if err != nil {
		return fmt.Errorf("mongo: updating module %s: %w", module.ID, err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("module", module.ID)
	}
	return nil
}

func (s *ModuleStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID("module", id)
	if err != nil {
		return err
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo: deleting module %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("module", id)
	}
	return nil
}

type valueCount[T string | int] struct {
	Value T   `bson:"_id"`
	Count int `bson:"count"`
}

type facetResult struct {
	Locations    []valueCount[string] `bson:"locations"`
	StudyCredits []valueCount[int]    `bson:"studyCredits"`
	Levels       []valueCount[string] `bson:"levels"`
}

// countPipeline groups by one field, skipping documents where it is empty.
func countPipeline(field string) bson.A {
	return bson.A{
		bson.M{"$match": bson.M{field: bson.M{"$nin": bson.A{"", nil}}}},
		bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"_id": 1}},
	}
}

// FilterOptions computes all three value/count lists in one $facet round-trip.
func (s *ModuleStore) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"locations":    countPipeline("location"),
			"studyCredits": countPipeline("studycredit"),
			"levels":       countPipeline("level"),
		}}},
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo: aggregating filter options: %w", err)
	}
	defer cur.Close(ctx)

	var result facetResult
	if cur.Next(ctx) {
		if err := cur.Decode(&result); err != nil {
			return nil, fmt.Errorf("mongo: decoding filter options: %w", err)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo: reading filter options: %w", err)
	}

	return &model.FilterOptions{
		Locations:    toOptions(result.Locations),
		StudyCredits: toOptions(result.StudyCredits),
		Levels:       toOptions(result.Levels),
	}, nil
}

func toOptions[T string | int](counts []valueCount[T]) []model.FilterOption[T] {
	out := make([]model.FilterOption[T], 0, len(counts))
	for _, c := range counts {
		out = append(out, model.FilterOption[T]{Value: c.Value, Count: c.Count})
	}
	return out
}
