// Package memory is a thread-safe in-memory implementation of the repository
// interfaces in internal/models. It backs the service and handler tests.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/supabase-community/gotrue-go/types"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	_ models.BookingRepo = (*Store)(nil)
	_ models.ReviewsRepo = (*Store)(nil)
	_ models.MUARepo     = (*Store)(nil)
	_ models.AdminRepo   = (*Store)(nil)
	_ models.UserRepo    = (*Store)(nil)
)

type Store struct {
	mu        sync.RWMutex
	bookings  map[string]models.Booking
	reviews   map[string]models.Review
	muas      map[string]models.MUA
	admins    map[string]models.Admin
	loginLogs []models.LoginLog
	users     map[string]models.User
}

func New() *Store {
	return &Store{
		bookings: make(map[string]models.Booking),
		reviews:  make(map[string]models.Review),
		muas:     make(map[string]models.MUA),
		admins:   make(map[string]models.Admin),
		users:    make(map[string]models.User),
	}
}

func page[T any](items []*T, offset, limit int) []*T {
	if offset >= len(items) {
		return []*T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// patch applies fields to v through its bson representation, so keys match
// what the Mongo repository would $set.
func patch[T any](v *T, fields map[string]interface{}) error {
	raw, err := bson.Marshal(v)
	if err != nil {
		return err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for k, val := range fields {
		doc[k] = val
	}
	raw, err = bson.Marshal(doc)
	if err != nil {
		return err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return err
	}
	*v = out
	return nil
}

// Bookings --------------------------------------------------------------------

func (s *Store) CreateBooking(_ context.Context, b *models.Booking) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bookings[b.ID]; exists {
		return nil, models.ErrDuplicate
	}
	s.bookings[b.ID] = *b
	out := *b
	return &out, nil
}

func (s *Store) GetBookingByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	return &b, nil
}

func (s *Store) ListBookingsByCustomer(_ context.Context, customerID string) ([]*models.Booking, error) {
	return s.filterBookings(func(b models.Booking) bool { return b.CustomerID == customerID }), nil
}

func (s *Store) ListBookingsByProvider(_ context.Context, providerID string) ([]*models.Booking, error) {
	return s.filterBookings(func(b models.Booking) bool { return b.ProviderID == providerID }), nil
}

func (s *Store) filterBookings(keep func(models.Booking) bool) []*models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Booking, 0)
	for _, b := range s.bookings {
		if keep(b) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) UpdateBookingStatus(_ context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	if b.Status != from {
		return nil, models.ErrStaleWrite
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b
	return &b, nil
}

func (s *Store) ApplyBookingOverride(_ context.Context, id string, o models.BookingOverride) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	if o.Status != nil {
		b.Status = *o.Status
	}
	if o.Location != nil {
		b.Location = *o.Location
	}
	if o.Notes != nil {
		b.Notes = *o.Notes
	}
	if o.PaymentStatus != nil {
		b.PaymentStatus = *o.PaymentStatus
	}
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b
	return &b, nil
}

func (s *Store) ListBookings(_ context.Context, offset, limit int) ([]*models.Booking, int64, error) {
	all := s.filterBookings(func(models.Booking) bool { return true })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *Store) DeleteBooking(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return models.ErrNoRecord
	}
	delete(s.bookings, id)
	return nil
}

func (s *Store) CountBookings(_ context.Context, status models.BookingStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, b := range s.bookings {
		if status == "" || b.Status == status {
			n++
		}
	}
	return n, nil
}

// Reviews ---------------------------------------------------------------------

func (s *Store) CreateReview(_ context.Context, r *models.Review) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reviews {
		if existing.BookingID == r.BookingID {
			return nil, models.ErrDuplicate
		}
	}
	s.reviews[r.ID] = *r
	out := *r
	return &out, nil
}

func (s *Store) GetReviewByID(_ context.Context, id string) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	return &r, nil
}

func (s *Store) GetReviewByBooking(_ context.Context, bookingID string) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.BookingID == bookingID {
			return &r, nil
		}
	}
	return nil, models.ErrNoRecord
}

func (s *Store) ListRatingsByProvider(_ context.Context, providerID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ratings := make([]int, 0)
	for _, r := range s.reviews {
		if r.ProviderID == providerID {
			ratings = append(ratings, r.Rating)
		}
	}
	return ratings, nil
}

func (s *Store) ListApprovedReviewsByProvider(_ context.Context, providerID string) ([]*models.Review, error) {
	return s.filterReviews(func(r models.Review) bool { return r.ProviderID == providerID && r.IsApproved }), nil
}

func (s *Store) filterReviews(keep func(models.Review) bool) []*models.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Review, 0)
	for _, r := range s.reviews {
		if keep(r) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) ListReviews(_ context.Context, offset, limit int) ([]*models.Review, int64, error) {
	all := s.filterReviews(func(models.Review) bool { return true })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *Store) SetReviewApproval(_ context.Context, id string, approved bool) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	r.IsApproved = approved
	r.UpdatedAt = time.Now().UTC()
	s.reviews[id] = r
	return &r, nil
}

func (s *Store) DeleteReview(_ context.Context, id string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	delete(s.reviews, id)
	return &r, nil
}

func (s *Store) CountReviews(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.reviews)), nil
}

// MUAs ------------------------------------------------------------------------

func (s *Store) CreateMUA(_ context.Context, m *models.MUA) (*models.MUA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.muas {
		if existing.ID == m.ID || (m.UserID != "" && existing.UserID == m.UserID) {
			return nil, models.ErrDuplicate
		}
	}
	s.muas[m.ID] = *m
	out := *m
	return &out, nil
}

func (s *Store) GetMUAByID(_ context.Context, id string) (*models.MUA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.muas[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	return &m, nil
}

func (s *Store) GetMUAByUser(_ context.Context, userID string) (*models.MUA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.muas {
		if m.UserID == userID {
			return &m, nil
		}
	}
	return nil, models.ErrNoRecord
}

func (s *Store) SearchMUAs(_ context.Context, f models.MUAFilter) ([]*models.MUA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contains := func(field, sub string) bool {
		return strings.Contains(strings.ToLower(field), strings.ToLower(sub))
	}
	out := make([]*models.MUA, 0)
	for _, m := range s.muas {
		switch {
		case f.Location != "" && !contains(m.Location, f.Location):
			continue
		case f.Category != "" && m.Category != f.Category:
			continue
		case f.MinPrice != nil && m.MinPrice < *f.MinPrice:
			continue
		case f.MaxPrice != nil && m.MaxPrice > *f.MaxPrice:
			continue
		case f.Search != "" && !contains(m.Name, f.Search) && !contains(m.Specialty, f.Search):
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ReviewsCount > out[j].ReviewsCount
	})
	return out, nil
}

func (s *Store) ListMUAs(_ context.Context, offset, limit int) ([]*models.MUA, int64, error) {
	s.mu.RLock()
	all := make([]*models.MUA, 0, len(s.muas))
	for _, m := range s.muas {
		m := m
		all = append(all, &m)
	}
	s.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *Store) UpdateMUA(_ context.Context, id string, fields map[string]interface{}) (*models.MUA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.muas[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	if err := patch(&m, fields); err != nil {
		return nil, err
	}
	m.UpdatedAt = time.Now().UTC()
	s.muas[id] = m
	return &m, nil
}

func (s *Store) DeleteMUA(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.muas[id]; !ok {
		return models.ErrNoRecord
	}
	delete(s.muas, id)
	return nil
}

func (s *Store) CountMUAs(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.muas)), nil
}

func (s *Store) ProviderExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.muas[id]
	return ok, nil
}

func (s *Store) ResolveProviderByOwner(ctx context.Context, userID string) (string, error) {
	m, err := s.GetMUAByUser(ctx, userID)
	if err != nil {
		return "", nil
	}
	return m.ID, nil
}

func (s *Store) UpdateProviderRatingSummary(_ context.Context, id string, summary models.RatingSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.muas[id]
	if !ok {
		return models.ErrNoRecord
	}
	m.Rating = summary.Rating
	m.ReviewsCount = summary.ReviewsCount
	m.UpdatedAt = time.Now().UTC()
	s.muas[id] = m
	return nil
}

// Admins ----------------------------------------------------------------------

func (s *Store) CreateAdmin(_ context.Context, a *models.Admin) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.admins {
		if strings.EqualFold(existing.Email, a.Email) {
			return nil, models.ErrDuplicate
		}
	}
	s.admins[a.ID] = *a
	out := *a
	return &out, nil
}

func (s *Store) GetAdminByID(_ context.Context, id string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	return &a, nil
}

func (s *Store) GetAdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, models.ErrNoRecord
}

func (s *Store) CountAdmins(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.admins)), nil
}

func (s *Store) UpdateAdmin(_ context.Context, id string, fields map[string]interface{}) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	if email, ok := fields["email"].(string); ok {
		for otherID, other := range s.admins {
			if otherID != id && strings.EqualFold(other.Email, email) {
				return nil, models.ErrDuplicate
			}
		}
	}
	if err := patch(&a, fields); err != nil {
		return nil, err
	}
	a.UpdatedAt = time.Now().UTC()
	s.admins[id] = a
	return &a, nil
}

func (s *Store) TouchAdminLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return models.ErrNoRecord
	}
	a.LastLoginAt = &at
	s.admins[id] = a
	return nil
}

func (s *Store) RecordLogin(_ context.Context, log *models.LoginLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginLogs = append(s.loginLogs, *log)
	return nil
}

func (s *Store) ListLoginLogs(_ context.Context, f models.LoginLogFilter, offset, limit int) ([]*models.LoginLog, int64, error) {
	s.mu.RLock()
	out := make([]*models.LoginLog, 0)
	for i := len(s.loginLogs) - 1; i >= 0; i-- {
		l := s.loginLogs[i]
		if f.Email != "" && !strings.Contains(strings.ToLower(l.Email), strings.ToLower(f.Email)) {
			continue
		}
		if f.Success != nil && l.Success != *f.Success {
			continue
		}
		out = append(out, &l)
	}
	s.mu.RUnlock()
	return page(out, offset, limit), int64(len(out)), nil
}

// Users -----------------------------------------------------------------------

// AddUser seeds a profile row, standing in for the Supabase signup trigger.
func (s *Store) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = u
}

func (s *Store) CreateUser(_ context.Context, in *models.RegisterInput, role models.Role) (*types.SignupResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, in.Email) {
			return nil, models.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	id := uuid.NewString()
	s.users[id] = models.User{
		ID:          id,
		Email:       in.Email,
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		Role:        string(role),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return &types.SignupResponse{}, nil
}

func (s *Store) AuthenticateUser(context.Context, string, string) (*types.TokenResponse, error) {
	return nil, models.ErrNoRecord
}

func (s *Store) RefreshToken(context.Context, string) (*types.TokenResponse, error) {
	return nil, models.ErrNoRecord
}

func (s *Store) GetUser(_ context.Context, id string, _ string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	return &u, nil
}

func (s *Store) ListUsers(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	s.mu.RLock()
	all := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		u := u
		all = append(all, &u)
	}
	s.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) UpdateUser(_ context.Context, fields map[string]interface{}, id string, _ string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range fields {
		doc[k] = v
	}
	if raw, err = json.Marshal(doc); err != nil {
		return nil, err
	}
	var out models.User
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	out.UpdatedAt = time.Now().UTC()
	s.users[id] = out
	return &out, nil
}

func (s *Store) DeleteUser(_ context.Context, id string, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return models.ErrNoRecord
	}
	delete(s.users, id)
	return nil
}
