package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ProviderColName = "muas"

func (mdb *MongodbRepo) CreateMUA(ctx context.Context, mua *MUA) (*MUA, error) {
	col, err := mdb.GetCollection(ctx, ProviderColName)
	if err != nil {
		return nil, fmt.Errorf("failed to create mua: %w", err)
	}
	if _, err := col.InsertOne(ctx, mua); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert mua into database: %w", err)
	}
	return mua, nil
}

func (mdb *MongodbRepo) GetMUAByID(ctx context.Context, id string) (*MUA, error) {
	return mdb.findMUA(ctx, bson.M{"id": id})
}

func (mdb *MongodbRepo) GetMUAByUser(ctx context.Context, userID string) (*MUA, error) {
	return mdb.findMUA(ctx, bson.M{"user_id": userID})
}

func (mdb *MongodbRepo) findMUA(ctx context.Context, filter bson.M) (*MUA, error) {
	col, err := mdb.GetCollection(ctx, ProviderColName)
	if err != nil {
		return nil, err
	}
	var mua MUA
	if err := col.FindOne(ctx, filter).Decode(&mua); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to fetch mua: %w", err)
	}
	return &mua, nil
}

func (mdb *MongodbRepo) SearchMUAs(ctx context.Context, f MUAFilter) ([]*MUA, error) {
	col, err := mdb.GetCollection(ctx, ProviderColName)
	if err != nil {
		return nil, err
	}

	filter := bson.M{}
	if f.Location != "" {
		filter["location"] = bson.M{"$regex": regexp.QuoteMeta(f.Location), "$options": "i"}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.MinPrice != nil {
		filter["min_price"] = bson.M{"$gte": *f.MinPrice}
	}
	if f.MaxPrice != nil {
		filter["max_price"] = bson.M{"$lte": *f.MaxPrice}
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		filter["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"specialty": pattern}}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "rating", Value: -1},
		{Key: "reviews_count", Value: -1},
	})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mua search query failed: %w", err)
	}
	return decodeAll[MUA](ctx, cursor)
}

func (mdb *MongodbRepo) ListMUAs(ctx context.Context, offset, limit int) ([]*MUA, int64, error) {
	col, err := mdb.GetCollection(ctx, ProviderColName)
	if err != nil {
		return nil, 0, err
	}
	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count muas: %w", err)
	}
	cursor, err := col.Find(ctx, bson.M{}, pageOptions(offset, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list muas: %w", err)
	}
	muas, err := decodeAll[MUA](ctx, cursor)
	return muas, total, err
}

func (mdb *MongodbRepo) UpdateMUA(ctx context.Context, id string, fields map[string]interface{}) (*MUA, error) {
	col, err := mdb.GetCollection(ctx, ProviderColName)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mua MUA
	if err := col.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&mua); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to update mua with id %s: %w", id, err)
	}
	return &mua, nil
}

func (mdb *MongodbRepo) DeleteMUA(ctx context.Context, id string) error {
	col, err := mdb.GetCollection(ctx, ProviderColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete mua with id %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNoRecord
	}
	return nil
}

func (mdb *MongodbRepo) CountMUAs(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(ctx, ProviderColName)
	if err != nil {
		return 0, err
	}
	return col.CountDocuments(ctx, bson.M{})
}

func (mdb *MongodbRepo) ProviderExists(ctx context.Context, id string) (bool, error) {
	col, err := mdb.GetCollection(ctx, ProviderColName)
	if err != nil {
		return false, err
	}
	n, err := col.CountDocuments(ctx, bson.M{"id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up mua %s: %w", id, err)
	}
	return n > 0, nil
}

func (mdb *MongodbRepo) ResolveProviderByOwner(ctx context.Context, userID string) (string, error) {
	mua, err := mdb.GetMUAByUser(ctx, userID)
	if errors.Is(err, ErrNoRecord) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return mua.ID, nil
}

func (mdb *MongodbRepo) UpdateProviderRatingSummary(ctx context.Context, id string, summary RatingSummary) error {
	col, err := mdb.GetCollection(ctx, ProviderColName)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"rating":        summary.Rating,
		"reviews_count": summary.ReviewsCount,
		"updated_at":    time.Now().UTC(),
	}}
	res, err := col.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update rating for mua %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoRecord
	}
	return nil
}
