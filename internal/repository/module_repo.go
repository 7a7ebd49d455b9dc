package repository

import (
	"context"
	"time"

	"formassist/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ModuleRepo handles MongoDB operations for form module definitions
type ModuleRepo interface {
	Upsert(ctx context.Context, module *model.Module) error
	GetByID(ctx context.Context, id string) (*model.Module, error)
	List(ctx context.Context) ([]*model.Module, error)
}

type moduleRepo struct {
	collection *mongo.Collection
}

// NewModuleRepo creates a new module repository
func NewModuleRepo(db *mongo.Database) ModuleRepo {
	return &moduleRepo{
		collection: db.Collection("modules"),
	}
}

func (r *moduleRepo) Upsert(ctx context.Context, module *model.Module) error {
	module.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": module.ID}, module, opts)
	return err
}

func (r *moduleRepo) GetByID(ctx context.Context, id string) (*model.Module, error) {
	var module model.Module
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&module)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) List(ctx context.Context) ([]*model.Module, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var modules []*model.Module
	if err := cursor.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}
