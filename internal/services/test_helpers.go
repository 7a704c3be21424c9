package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BradenHooton/spendlog/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc       func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

// MockCategoryRepository implements CategoryRepository for testing
type MockCategoryRepository struct {
	GetByIDFunc     func(ctx context.Context, id int64) (*models.Category, error)
	ListByOwnerFunc func(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Category, error)
	CreateFunc      func(ctx context.Context, category *models.Category) (*models.Category, error)
	UpdateFunc      func(ctx context.Context, category *models.Category) (*models.Category, error)
	DeleteFunc      func(ctx context.Context, id int64) error
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCategoryRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Category, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, limit, offset)
	}
	return []*models.Category{}, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, category)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, category)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockExpenseRepository implements ExpenseRepository for testing
type MockExpenseRepository struct {
	GetByIDFunc     func(ctx context.Context, id int64) (*models.Expense, error)
	ListByOwnerFunc func(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Expense, error)
	CreateFunc      func(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	UpdateFunc      func(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	DeleteFunc      func(ctx context.Context, id int64) error
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id int64) (*models.Expense, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockExpenseRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Expense, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, limit, offset)
	}
	return []*models.Expense{}, nil
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, expense)
	}
	return nil, models.ErrInternalServer
}

func (m *MockExpenseRepository) Update(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, expense)
	}
	return nil, models.ErrInternalServer
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockLockoutNotifier records lockout notifications for testing
type MockLockoutNotifier struct {
	mu       sync.Mutex
	Notified []string
	Err      error
}

func (m *MockLockoutNotifier) NotifyLockout(ctx context.Context, user *models.User, remaining time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notified = append(m.Notified, user.Username)
	return m.Err
}

func (m *MockLockoutNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notified)
}

// MemoryAttemptLog is an in-memory AttemptLog with the same query
// semantics as the login_attempts table. Err fails every call, WriteErr
// only RecordAttempt.
type MemoryAttemptLog struct {
	mu       sync.Mutex
	attempts []*models.LoginAttempt
	nextID   int64
	Err      error
	WriteErr error
}

func NewMemoryAttemptLog() *MemoryAttemptLog {
	return &MemoryAttemptLog{}
}

// Add appends an attempt at an explicit timestamp
func (m *MemoryAttemptLog) Add(username string, success bool, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.attempts = append(m.attempts, &models.LoginAttempt{
		ID:        m.nextID,
		Username:  username,
		Success:   success,
		Timestamp: ts.UTC(),
	})
}

// Attempts returns a copy of every stored attempt for username
func (m *MemoryAttemptLog) Attempts(username string) []models.LoginAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.LoginAttempt, 0)
	for _, a := range m.attempts {
		if a.Username == username {
			out = append(out, *a)
		}
	}
	return out
}

func (m *MemoryAttemptLog) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.nextID++
	stored := *attempt
	stored.ID = m.nextID
	attempt.ID = m.nextID
	m.attempts = append(m.attempts, &stored)
	return nil
}

func (m *MemoryAttemptLog) failedSince(username string, since time.Time) []*models.LoginAttempt {
	out := make([]*models.LoginAttempt, 0)
	for _, a := range m.attempts {
		if a.Username == username && !a.Success && !a.Timestamp.Before(since) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func (m *MemoryAttemptLog) CountFailedSince(ctx context.Context, username string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.failedSince(username, since)), nil
}

func (m *MemoryAttemptLog) EarliestFailedSince(ctx context.Context, username string, since time.Time) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	failed := m.failedSince(username, since)
	if len(failed) == 0 {
		return nil, nil
	}
	ts := failed[0].Timestamp
	return &ts, nil
}

func (m *MemoryAttemptLog) ListRecent(ctx context.Context, username string, limit int) ([]*models.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*models.LoginAttempt, 0)
	for i := len(m.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.attempts[i].Username == username {
			a := *m.attempts[i]
			out = append(out, &a)
		}
	}
	return out, nil
}

// FakeClock is a manually advanced time source
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
