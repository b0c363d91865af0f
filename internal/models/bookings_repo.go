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

const BookingColName = "bookings"

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to insert booking into database: %w", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return nil, err
	}
	var booking Booking
	if err := col.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ListBookingsByCustomer(ctx context.Context, customerID string) ([]*Booking, error) {
	return mdb.listBookings(ctx, bson.M{"customer_id": customerID})
}

func (mdb *MongodbRepo) ListBookingsByProvider(ctx context.Context, providerID string) ([]*Booking, error) {
	return mdb.listBookings(ctx, bson.M{"provider_id": providerID})
}

func (mdb *MongodbRepo) listBookings(ctx context.Context, filter bson.M) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return decodeAll[Booking](ctx, cursor)
}

func (mdb *MongodbRepo) UpdateBookingStatus(ctx context.Context, id string, from, to BookingStatus) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}

	// Nothing matched: either the booking is gone or its status moved.
	if _, getErr := mdb.GetBookingByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStaleWrite
}

func (mdb *MongodbRepo) ApplyBookingOverride(ctx context.Context, id string, override BookingOverride) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if override.Status != nil {
		set["status"] = *override.Status
	}
	if override.Location != nil {
		set["location"] = *override.Location
	}
	if override.Notes != nil {
		set["notes"] = *override.Notes
	}
	if override.PaymentStatus != nil {
		set["payment_status"] = *override.PaymentStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking Booking
	if err := col.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context, offset, limit int) ([]*Booking, int64, error) {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return nil, 0, err
	}
	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	cursor, err := col.Find(ctx, bson.M{}, pageOptions(offset, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	bookings, err := decodeAll[Booking](ctx, cursor)
	return bookings, total, err
}

func (mdb *MongodbRepo) DeleteBooking(ctx context.Context, id string) error {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNoRecord
	}
	return nil
}

func (mdb *MongodbRepo) CountBookings(ctx context.Context, status BookingStatus) (int64, error) {
	col, err := mdb.GetCollection(ctx, BookingColName)
	if err != nil {
		return 0, err
	}
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return col.CountDocuments(ctx, filter)
}
