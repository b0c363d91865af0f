package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ReviewColName = "reviews"

type ReviewsRepo interface {
	// CreateReview returns ErrDuplicate when the booking already has a review.
	CreateReview(ctx context.Context, review *Review) (*Review, error)
	GetReviewByID(ctx context.Context, id string) (*Review, error)
	GetReviewByBooking(ctx context.Context, bookingID string) (*Review, error)
	ListRatingsByProvider(ctx context.Context, providerID string) ([]int, error)
	ListApprovedReviewsByProvider(ctx context.Context, providerID string) ([]*Review, error)
	ListReviews(ctx context.Context, offset, limit int) ([]*Review, int64, error)
	SetReviewApproval(ctx context.Context, id string, approved bool) (*Review, error)
	DeleteReview(ctx context.Context, id string) (*Review, error)
	CountReviews(ctx context.Context) (int64, error)
}

func (mdb *MongodbRepo) CreateReview(ctx context.Context, review *Review) (*Review, error) {
	col, err := mdb.GetCollection(ctx, ReviewColName)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	if _, err := col.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert review into database: %w", err)
	}
	return review, nil
}

func (mdb *MongodbRepo) GetReviewByID(ctx context.Context, id string) (*Review, error) {
	return mdb.findReview(ctx, bson.M{"id": id})
}

func (mdb *MongodbRepo) GetReviewByBooking(ctx context.Context, bookingID string) (*Review, error) {
	return mdb.findReview(ctx, bson.M{"booking_id": bookingID})
}

func (mdb *MongodbRepo) findReview(ctx context.Context, filter bson.M) (*Review, error) {
	col, err := mdb.GetCollection(ctx, ReviewColName)
	if err != nil {
		return nil, err
	}
	var review Review
	if err := col.FindOne(ctx, filter).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return &review, nil
}

func (mdb *MongodbRepo) ListRatingsByProvider(ctx context.Context, providerID string) ([]int, error) {
	col, err := mdb.GetCollection(ctx, ReviewColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetProjection(bson.M{"rating": 1, "_id": 0})
	cursor, err := col.Find(ctx, bson.M{"provider_id": providerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var ratings []int
	for cursor.Next(ctx) {
		var row struct {
			Rating int `bson:"rating"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("error decoding rating: %w", err)
		}
		ratings = append(ratings, row.Rating)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ratings, nil
}

func (mdb *MongodbRepo) ListApprovedReviewsByProvider(ctx context.Context, providerID string) ([]*Review, error) {
	col, err := mdb.GetCollection(ctx, ReviewColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"provider_id": providerID, "is_approved": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return decodeAll[Review](ctx, cursor)
}

func (mdb *MongodbRepo) ListReviews(ctx context.Context, offset, limit int) ([]*Review, int64, error) {
	col, err := mdb.GetCollection(ctx, ReviewColName)
	if err != nil {
		return nil, 0, err
	}
	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	cursor, err := col.Find(ctx, bson.M{}, pageOptions(offset, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	reviews, err := decodeAll[Review](ctx, cursor)
	return reviews, total, err
}

func (mdb *MongodbRepo) SetReviewApproval(ctx context.Context, id string, approved bool) (*Review, error) {
	col, err := mdb.GetCollection(ctx, ReviewColName)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{"is_approved": approved, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review Review
	if err := col.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to moderate review: %w", err)
	}
	return &review, nil
}

func (mdb *MongodbRepo) DeleteReview(ctx context.Context, id string) (*Review, error) {
	col, err := mdb.GetCollection(ctx, ReviewColName)
	if err != nil {
		return nil, err
	}
	var review Review
	if err := col.FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to delete review: %w", err)
	}
	return &review, nil
}

func (mdb *MongodbRepo) CountReviews(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(ctx, ReviewColName)
	if err != nil {
		return 0, err
	}
	return col.CountDocuments(ctx, bson.M{})
}
