package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/middleware/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// rowStore keeps users as whole rows. Update replaces every column with the
// caller's copy, the way gorm Save does.
type rowStore struct {
	mu   sync.Mutex
	rows map[string]models.User

	// afterFind runs once, after the next FindByUsername has taken its copy
	afterFind func()
}

func newRowStore(users ...*models.User) *rowStore {
	s := &rowStore{rows: make(map[string]models.User)}
	for _, u := range users {
		s.rows[u.ID] = *u
	}
	return s
}

func (s *rowStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[u.ID] = *u
	return nil
}

func (s *rowStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[u.ID] = *u
	return nil
}

func (s *rowStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *rowStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	var found *models.User
	for _, u := range s.rows {
		if u.Username == username {
			cp := u
			found = &cp
		}
	}
	hook := s.afterFind
	s.afterFind = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (s *rowStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (s *rowStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *rowStore) List(_ context.Context, _ string, _, _ int) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.rows))
	for _, u := range s.rows {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (s *rowStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.rows[id]; ok {
		u.LastLogin = &at
		s.rows[id] = u
	}
	return nil
}

func (s *rowStore) UpdateConfirmation(_ context.Context, id string, hash *string, sentAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.rows[id]; ok {
		u.ConfirmationCode = hash
		u.ConfirmationSentAt = sentAt
		s.rows[id] = u
	}
	return nil
}

func (s *rowStore) ConsumeConfirmation(_ context.Context, id, hash string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok || u.ConfirmationCode == nil || *u.ConfirmationCode != hash {
		return false, nil
	}
	u.ConfirmationCode = nil
	u.ConfirmationSentAt = nil
	u.LastLogin = &at
	s.rows[id] = u
	return true, nil
}

func (s *rowStore) setRole(t *testing.T, username string, role policy.Role) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.rows {
		if u.Username == username {
			require.NoError(t, u.SetRole(role))
			s.rows[id] = u
			return
		}
	}
	t.Fatalf("no user %q", username)
}

func (s *rowStore) row(t *testing.T, username string) models.User {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Username == username {
			return u
		}
	}
	t.Fatalf("no user %q", username)
	return models.User{}
}

func TestRequestSignup_KeepsRoleChangedMeanwhile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	store := newRowStore(existingUser(t, "0123456789ab"))
	f.svc.userRepo = store
	f.expectNotify("critic@example.com")

	// an admin promotes the user while the re-request is in flight
	store.afterFind = func() { store.setRole(t, "critic", policy.RoleModerator) }

	_, err := f.svc.RequestSignup(ctx, "critic", "critic@example.com")
	require.NoError(t, err)

	row := store.row(t, "critic")
	assert.Equal(t, policy.RoleModerator, row.Role)
	assert.True(t, auth.VerifyCode(row.ConfirmationCode, f.lastCode(t)))
	assert.False(t, auth.VerifyCode(row.ConfirmationCode, "0123456789ab"))
}

func TestObtainToken_OverlappingExchangesIssueOnePair(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	store := newRowStore(existingUser(t, "0123456789ab"))
	f.svc.userRepo = store
	f.tokens.On("Create", ctx, mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	// a second exchange of the same code starts after the first has read the user
	var innerPair *TokenPair
	var innerErr error
	store.afterFind = func() {
		innerPair, innerErr = f.svc.ObtainToken(ctx, "critic", "0123456789ab")
	}

	pair, err := f.svc.ObtainToken(ctx, "critic", "0123456789ab")

	require.NoError(t, innerErr)
	require.NotNil(t, innerPair)
	assert.Nil(t, pair)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	f.tokens.AssertNumberOfCalls(t, "Create", 1)

	row := store.row(t, "critic")
	assert.Nil(t, row.ConfirmationCode)
	assert.NotNil(t, row.LastLogin)
}
