package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/spendlog/internal/auth"
	"github.com/BradenHooton/spendlog/internal/models"
	pkglogger "github.com/BradenHooton/spendlog/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-32-characters-long!!"

func hashForTest(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

type gateFixture struct {
	svc      *AuthService
	store    *MemoryAttemptLog
	clock    *FakeClock
	users    *MockUserRepository
	notifier *MockLockoutNotifier
	tm       *auth.TokenManager
	lookups  int
}

// newGateFixture wires an AuthService with one known user, carol/right-password
func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	f := &gateFixture{
		store:    NewMemoryAttemptLog(),
		clock:    NewFakeClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)),
		notifier: &MockLockoutNotifier{},
		tm:       auth.NewTokenManager(testJWTSecret, time.Hour),
	}

	carol := &models.User{ID: 7, Username: "carol", Email: "carol@example.com", HashedPassword: hashForTest(t, "right-password")}
	f.users = &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			f.lookups++
			if username == carol.Username {
				return carol, nil
			}
			return nil, models.ErrNotFound
		},
	}

	limiter := NewRateLimitService(f.store, DefaultRateLimitConfig(), logger).WithClock(f.clock.Now)
	f.svc = NewAuthService(f.users, limiter, f.tm, logger, pkglogger.NewAuditLogger(logger, "test")).
		WithNotifier(f.notifier)
	return f
}

func (f *gateFixture) login(username, password, entrypoint string) (*models.TokenResponse, error) {
	return f.svc.Login(context.Background(), Credentials{
		Username:   username,
		Password:   password,
		IPAddress:  "198.51.100.4",
		Entrypoint: entrypoint,
	})
}

// ============================================================================
// Credential checks
// ============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	f := newGateFixture(t)

	resp, err := f.login("carol", "right-password", "/login")
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := f.tm.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "carol", claims.Subject)

	attempts := f.store.Attempts("carol")
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Success)
	require.NotNil(t, attempts[0].IPAddress)
	assert.Equal(t, "198.51.100.4", *attempts[0].IPAddress)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newGateFixture(t)

	resp, err := f.login("carol", "wrong-password", "/login")
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	attempts := f.store.Attempts("carol")
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Success)
}

func TestAuthService_Login_UnknownUsernameLogsFailure(t *testing.T) {
	f := newGateFixture(t)

	_, err := f.login("nobody", "whatever-pass", "/token")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	attempts := f.store.Attempts("nobody")
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Success)
}

func TestAuthService_Login_UserStoreError(t *testing.T) {
	f := newGateFixture(t)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return nil, errors.New("connection reset")
	}

	_, err := f.login("carol", "right-password", "/login")
	assert.ErrorIs(t, err, models.ErrInternalServer)
	assert.Empty(t, f.store.Attempts("carol"))
}

// ============================================================================
// Rate limiting
// ============================================================================

func TestAuthService_Login_BlockedSkipsCredentialCheck(t *testing.T) {
	f := newGateFixture(t)
	for i := 0; i < 5; i++ {
		f.store.Add("carol", false, f.clock.Now().Add(-time.Duration(i)*time.Second))
	}

	resp, err := f.login("carol", "right-password", "/login")
	assert.Nil(t, resp)

	var rlErr *models.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 1796, rlErr.RemainingSeconds)

	assert.Equal(t, 0, f.lookups, "credentials must not be checked while blocked")
	assert.Len(t, f.store.Attempts("carol"), 5, "blocked attempts are not recorded")
}

func TestAuthService_Login_FailuresShareBucketAcrossEndpoints(t *testing.T) {
	for _, sixth := range []string{"/login", "/token"} {
		t.Run("sixth attempt on "+sixth, func(t *testing.T) {
			f := newGateFixture(t)

			for i := 0; i < 3; i++ {
				_, err := f.login("carol", "wrong-password", "/login")
				require.ErrorIs(t, err, models.ErrUnauthorized)
				f.clock.Advance(2 * time.Second)
			}
			for i := 0; i < 2; i++ {
				_, err := f.login("carol", "wrong-password", "/token")
				require.ErrorIs(t, err, models.ErrUnauthorized)
				f.clock.Advance(2 * time.Second)
			}

			_, err := f.login("carol", "right-password", sixth)
			assert.ErrorIs(t, err, models.ErrRateLimitExceeded)
		})
	}
}

func TestAuthService_Login_UnblocksAfterFailuresAge(t *testing.T) {
	f := newGateFixture(t)
	for i := 0; i < 5; i++ {
		_, _ = f.login("carol", "wrong-password", "/login")
	}

	_, err := f.login("carol", "right-password", "/login")
	require.ErrorIs(t, err, models.ErrRateLimitExceeded)

	f.clock.Advance(61 * time.Second)
	resp, err := f.login("carol", "right-password", "/login")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_Login_AttemptLogUnavailableFailsClosed(t *testing.T) {
	f := newGateFixture(t)
	f.store.Err = errors.New("database is down")

	resp, err := f.login("carol", "right-password", "/login")
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrInternalServer)
	assert.Equal(t, 0, f.lookups)
}

func TestAuthService_Login_RecordFailureStillIssuesToken(t *testing.T) {
	f := newGateFixture(t)
	f.store.WriteErr = errors.New("write timeout")

	resp, err := f.login("carol", "right-password", "/login")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_Login_RecordFailureStillRejects(t *testing.T) {
	f := newGateFixture(t)
	f.store.WriteErr = errors.New("write timeout")

	_, err := f.login("carol", "wrong-password", "/login")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

// ============================================================================
// Lockout notification
// ============================================================================

func TestAuthService_Login_NotifiesOnceOnLockout(t *testing.T) {
	f := newGateFixture(t)

	for i := 0; i < 4; i++ {
		_, _ = f.login("carol", "wrong-password", "/login")
	}
	f.svc.Wait()
	assert.Equal(t, 0, f.notifier.Count())

	_, _ = f.login("carol", "wrong-password", "/token")
	f.svc.Wait()
	assert.Equal(t, 1, f.notifier.Count())

	_, err := f.login("carol", "wrong-password", "/login")
	require.ErrorIs(t, err, models.ErrRateLimitExceeded)
	f.svc.Wait()
	assert.Equal(t, 1, f.notifier.Count())
}

func TestAuthService_Login_NotifierErrorDoesNotChangeResponse(t *testing.T) {
	f := newGateFixture(t)
	f.notifier.Err = errors.New("ses throttled")

	var lastErr error
	for i := 0; i < 5; i++ {
		_, lastErr = f.login("carol", "wrong-password", "/login")
	}
	f.svc.Wait()

	assert.ErrorIs(t, lastErr, models.ErrUnauthorized)
	assert.Len(t, f.store.Attempts("carol"), 5)
}

func TestAuthService_Login_NoNotificationForUnknownUsername(t *testing.T) {
	f := newGateFixture(t)
	for i := 0; i < 4; i++ {
		f.store.Add("ghost", false, f.clock.Now())
	}

	_, err := f.login("ghost", "whatever-pass", "/login")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	f.svc.Wait()
	assert.Equal(t, 0, f.notifier.Count())

	_, err = f.login("ghost", "whatever-pass", "/login")
	assert.ErrorIs(t, err, models.ErrRateLimitExceeded)
}

// ============================================================================
// Timing
// ============================================================================

func TestAuthService_Login_FailurePaddedByTimingDelay(t *testing.T) {
	f := newGateFixture(t)
	f.svc.WithTimingDelay(auth.NewTimingDelay(auth.TimingConfig{BaseDelay: 60 * time.Millisecond}))

	start := time.Now()
	_, err := f.login("carol", "wrong-password", "/login")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestBlockedMessage(t *testing.T) {
	tests := []struct {
		remaining int
		expected  string
	}{
		{1750, "29 minutes and 10 seconds"},
		{59, "0 minutes and 59 seconds"},
		{0, "0 minutes and 0 seconds"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.remaining), func(t *testing.T) {
			msg := BlockedMessage(tt.remaining)
			assert.Contains(t, msg, "Account temporarily blocked due to too many failed login attempts")
			assert.Contains(t, msg, tt.expected)
		})
	}
}
