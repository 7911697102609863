// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"calories/internal/domain"
)

// ErrUserExists is returned by Create for a taken username.
var ErrUserExists = errors.New("user already exists")

// DB implements an in-memory database storage.
type DB struct {
	mu        sync.Mutex
	profileMu sync.Mutex
	weights   []domain.WeightEntry
	meals     []domain.MealEntry
	users     []*domain.User
	sessions  map[string]*domain.Session
	profiles  map[int64]domain.ProfileDraft
	plans     map[int64]domain.StoredPlan

	weightIDCounter int64
	mealIDCounter   int64
	userIDCounter   int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
		profiles: make(map[int64]domain.ProfileDraft),
		plans:    make(map[int64]domain.StoredPlan),
	}
}

// Ensure interfaces are met.
var (
	_ domain.WeightRepository  = (*DB)(nil)
	_ domain.MealRepository    = (*DB)(nil)
	_ domain.ProfileRepository = (*DB)(nil)
	_ domain.PlanRepository    = (*DB)(nil)
	_ domain.UserRepository    = (*DB)(nil)
	_ domain.SessionRepository = (*SessionRepo)(nil)
)

// Ping always succeeds.
func (db *DB) Ping(context.Context) error { return nil }

func dayBounds(localDay string) (time.Time, time.Time, error) {
	dayStart, err := time.ParseInLocation("2006-01-02", localDay, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return dayStart.UTC(), dayStart.AddDate(0, 0, 1).UTC(), nil
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// newerFirst orders by creation time, then by ID for equal timestamps.
func newerFirst(ti, tj time.Time, idi, idj int64) bool {
	if ti.Equal(tj) {
		return idi > idj
	}
	return ti.After(tj)
}

// --- WeightRepository ---

// AddWeightEvent adds a weight event.
func (db *DB) AddWeightEvent(_ context.Context, userID int64, value float64, unit string, createdAt time.Time) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.weightIDCounter++
	db.weights = append(db.weights, domain.WeightEntry{
		ID:        db.weightIDCounter,
		UserID:    userID,
		Value:     value,
		Unit:      unit,
		CreatedAt: createdAt.UTC(),
	})
	return db.weightIDCounter, nil
}

// DeleteLatestWeightEvent deletes the user's most recent weight event.
func (db *DB) DeleteLatestWeightEvent(_ context.Context, userID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	lastIdx := -1
	for i, w := range db.weights {
		if w.UserID != userID {
			continue
		}
		if lastIdx == -1 || newerFirst(w.CreatedAt, db.weights[lastIdx].CreatedAt, w.ID, db.weights[lastIdx].ID) {
			lastIdx = i
		}
	}
	if lastIdx == -1 {
		return false, nil
	}
	db.weights = append(db.weights[:lastIdx], db.weights[lastIdx+1:]...)
	return true, nil
}

// LatestWeightForLocalDay returns the latest weight for the given day.
func (db *DB) LatestWeightForLocalDay(_ context.Context, userID int64, localDay string) (*domain.WeightEntry, error) {
	start, end, err := dayBounds(localDay)
	if err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var latest *domain.WeightEntry
	for i := range db.weights {
		w := &db.weights[i]
		if w.UserID != userID || !within(w.CreatedAt, start, end) {
			continue
		}
		if latest == nil || newerFirst(w.CreatedAt, latest.CreatedAt, w.ID, latest.ID) {
			latest = w
		}
	}
	if latest == nil {
		return nil, nil
	}
	ret := *latest
	ret.Day = localDay
	return &ret, nil
}

// ListRecentWeightEvents lists the user's most recent weight events.
func (db *DB) ListRecentWeightEvents(_ context.Context, userID int64, limit int) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.WeightEntry, 0, len(db.weights))
	for _, w := range db.weights {
		if w.UserID == userID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	for i := range result {
		result[i].Day = result[i].CreatedAt.In(time.Local).Format("2006-01-02")
	}
	return result, nil
}

// --- MealRepository ---

// AddMeal stores a meal.
func (db *DB) AddMeal(_ context.Context, m domain.MealEntry) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.mealIDCounter++
	m.ID = db.mealIDCounter
	m.CreatedAt = m.CreatedAt.UTC()
	db.meals = append(db.meals, m)
	return m.ID, nil
}

// DeleteMeal deletes a meal by ID. Unknown IDs are ignored.
func (db *DB) DeleteMeal(_ context.Context, userID, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, m := range db.meals {
		if m.ID == id && m.UserID == userID {
			db.meals = append(db.meals[:i], db.meals[i+1:]...)
			return nil
		}
	}
	return nil
}

func (db *DB) userMeals(userID int64, keep func(domain.MealEntry) bool) []domain.MealEntry {
	result := make([]domain.MealEntry, 0)
	for _, m := range db.meals {
		if m.UserID == userID && keep(m) {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result
}

// ListRecentMeals lists the user's most recent meals.
func (db *DB) ListRecentMeals(_ context.Context, userID int64, limit int) ([]domain.MealEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := db.userMeals(userID, func(domain.MealEntry) bool { return true })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListMealsSince lists the user's meals logged at or after since.
func (db *DB) ListMealsSince(_ context.Context, userID int64, since time.Time) ([]domain.MealEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.userMeals(userID, func(m domain.MealEntry) bool { return !m.CreatedAt.Before(since) }), nil
}

// MealTotalsForLocalDay sums the user's meals for the given day.
func (db *DB) MealTotalsForLocalDay(_ context.Context, userID int64, localDay string) (domain.MealTotals, error) {
	start, end, err := dayBounds(localDay)
	if err != nil {
		return domain.MealTotals{}, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var t domain.MealTotals
	for _, m := range db.meals {
		if m.UserID == userID && within(m.CreatedAt, start, end) {
			t.Add(m)
		}
	}
	return t, nil
}

// --- ProfileRepository / PlanRepository ---

// GetProfile returns a copy of the user's profile, or nil.
func (db *DB) GetProfile(_ context.Context, userID int64) (*domain.ProfileDraft, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, nil
	}
	p.Conditions = append([]string{}, p.Conditions...)
	return &p, nil
}

// UpdateProfile runs fn on a copy of the user's profile and stores the result
// when fn succeeds. Updates are serialized on profileMu and fn runs without mu
// held.
func (db *DB) UpdateProfile(_ context.Context, userID int64, fn func(p *domain.ProfileDraft) error) (*domain.ProfileDraft, error) {
	db.profileMu.Lock()
	defer db.profileMu.Unlock()

	db.mu.Lock()
	p, ok := db.profiles[userID]
	db.mu.Unlock()
	if !ok {
		p = domain.ProfileDraft{UserID: userID}
	}
	p.Conditions = append([]string{}, p.Conditions...)

	if err := fn(&p); err != nil {
		return nil, err
	}
	p.UserID = userID
	stored := p
	stored.Conditions = append([]string{}, p.Conditions...)

	db.mu.Lock()
	db.profiles[userID] = stored
	db.mu.Unlock()
	return &p, nil
}

// GetPlan returns a copy of the user's plan, or nil.
func (db *DB) GetPlan(_ context.Context, userID int64) (*domain.StoredPlan, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.plans[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// SavePlan stores a copy of the plan.
func (db *DB) SavePlan(_ context.Context, p *domain.StoredPlan) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.plans[p.UserID] = *p
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(_ context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(_ context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, ErrUserExists
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// Count returns the total number of users.
func (db *DB) Count(_ context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(_ context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token. Expiry is checked by the caller.
func (r *SessionRepo) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(_ context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(_ context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
