package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AdminColName    = "admins"
	LoginLogColName = "login_logs"
)

func (mdb *MongodbRepo) CreateAdmin(ctx context.Context, admin *Admin) (*Admin, error) {
	col, err := mdb.GetCollection(ctx, AdminColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert admin: %w", err)
	}
	return admin, nil
}

func (mdb *MongodbRepo) GetAdminByID(ctx context.Context, id string) (*Admin, error) {
	return mdb.findAdmin(ctx, bson.M{"id": id})
}

func (mdb *MongodbRepo) GetAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	return mdb.findAdmin(ctx, bson.M{"email": strings.ToLower(email)})
}

func (mdb *MongodbRepo) findAdmin(ctx context.Context, filter bson.M) (*Admin, error) {
	col, err := mdb.GetCollection(ctx, AdminColName)
	if err != nil {
		return nil, err
	}
	var admin Admin
	if err := col.FindOne(ctx, filter).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}
	return &admin, nil
}

func (mdb *MongodbRepo) CountAdmins(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(ctx, AdminColName)
	if err != nil {
		return 0, err
	}
	return col.CountDocuments(ctx, bson.M{})
}

func (mdb *MongodbRepo) UpdateAdmin(ctx context.Context, id string, fields map[string]interface{}) (*Admin, error) {
	col, err := mdb.GetCollection(ctx, AdminColName)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var admin Admin
	if err := col.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoRecord
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update admin %s: %w", id, err)
	}
	return &admin, nil
}

func (mdb *MongodbRepo) TouchAdminLogin(ctx context.Context, id string, at time.Time) error {
	col, err := mdb.GetCollection(ctx, AdminColName)
	if err != nil {
		return err
	}
	_, err = col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"last_login_at": at}})
	return err
}

func (mdb *MongodbRepo) RecordLogin(ctx context.Context, log *LoginLog) error {
	col, err := mdb.GetCollection(ctx, LoginLogColName)
	if err != nil {
		return err
	}
	if _, err := col.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListLoginLogs(ctx context.Context, f LoginLogFilter, offset, limit int) ([]*LoginLog, int64, error) {
	col, err := mdb.GetCollection(ctx, LoginLogColName)
	if err != nil {
		return nil, 0, err
	}

	filter := bson.M{}
	if f.Email != "" {
		filter["email"] = bson.M{"$regex": regexp.QuoteMeta(f.Email), "$options": "i"}
	}
	if f.Success != nil {
		filter["success"] = *f.Success
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count login logs: %w", err)
	}
	cursor, err := col.Find(ctx, filter, pageOptions(offset, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list login logs: %w", err)
	}
	logs, err := decodeAll[LoginLog](ctx, cursor)
	return logs, total, err
}
