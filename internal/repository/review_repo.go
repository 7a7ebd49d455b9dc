package repository

import (
	"context"

	"formassist/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepo handles MongoDB operations for whole-form reviews. Only the
// latest review of each session and module is kept.
type ReviewRepo interface {
	Save(ctx context.Context, review *model.StoredReview) error
	GetLatest(ctx context.Context, sessionID, moduleID string) (*model.StoredReview, error)
}

type reviewRepo struct {
	collection *mongo.Collection
}

// NewReviewRepo creates a new review repository
func NewReviewRepo(db *mongo.Database) ReviewRepo {
	return &reviewRepo{
		collection: db.Collection("reviews"),
	}
}

func reviewFilter(sessionID, moduleID string) bson.M {
	return bson.M{"sessionId": sessionID, "review.moduleId": moduleID}
}

func (r *reviewRepo) Save(ctx context.Context, review *model.StoredReview) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, reviewFilter(review.SessionID, review.Review.ModuleID), review, opts)
	return err
}

func (r *reviewRepo) GetLatest(ctx context.Context, sessionID, moduleID string) (*model.StoredReview, error) {
	var review model.StoredReview
	err := r.collection.FindOne(ctx, reviewFilter(sessionID, moduleID)).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}
