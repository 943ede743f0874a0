package services

import (
	"context"
	"testing"
	"time"

	"github.com/aryngazy/fest-system/models"
	"github.com/aryngazy/fest-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeSessionRepo struct {
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	session.CreatedAt = time.Now()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) SetUser(ctx context.Context, id string, userID int, isAdmin bool) error {
	session, ok := f.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	session.UserID = &userID
	session.IsAdmin = isAdmin
	session.User = &models.User{ID: userID}
	return nil
}

func (f *fakeSessionRepo) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	session, ok := f.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	session.IsAdmin = isAdmin
	return nil
}

func (f *fakeSessionRepo) SetReturnTo(ctx context.Context, id string, returnTo string) error {
	session, ok := f.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	session.ReturnTo = returnTo
	return nil
}

func (f *fakeSessionRepo) TakeReturnTo(ctx context.Context, id string) (string, error) {
	session, ok := f.sessions[id]
	if !ok {
		return "", repositories.ErrSessionNotFound
	}
	returnTo := session.ReturnTo
	session.ReturnTo = ""
	return returnTo, nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.sessions[id]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var deleted int64
	now := time.Now()
	for id, session := range f.sessions {
		if session.Expired(now) {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func TestCreateAnonymous(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, "", testLogger())

	session, err := svc.CreateAnonymous(context.Background(), "/register")

	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Nil(t, session.UserID)
	assert.Equal(t, "/register", session.ReturnTo)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestLogin_ReusesAnonymousSession(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, "", testLogger())

	anon, err := svc.CreateAnonymous(context.Background(), "/register")
	require.NoError(t, err)

	user := &models.User{ID: 7, Email: "alice@example.com"}
	session, err := svc.Login(context.Background(), anon.ID, user)

	require.NoError(t, err)
	assert.Equal(t, anon.ID, session.ID, "the anonymous session carries return-to and must survive login")
	require.NotNil(t, session.UserID)
	assert.Equal(t, 7, *session.UserID)
	assert.False(t, session.IsAdmin)

	returnTo := svc.TakeReturnTo(context.Background(), session.ID)
	assert.Equal(t, "/register", returnTo)
	assert.Empty(t, svc.TakeReturnTo(context.Background(), session.ID), "return-to is one-shot")
}

func TestLogin_CreatesSessionWhenNoneExists(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, "", testLogger())

	user := &models.User{ID: 3, Email: "bob@example.com"}
	session, err := svc.Login(context.Background(), "", user)

	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	require.NotNil(t, session.UserID)
	assert.Equal(t, 3, *session.UserID)
}

func TestLogin_AdminAllowlist(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, []string{"Admin@Example.com"}, "", testLogger())

	session, err := svc.Login(context.Background(), "", &models.User{ID: 1, Email: "admin@example.com"})
	require.NoError(t, err)
	assert.True(t, session.IsAdmin)

	session, err = svc.Login(context.Background(), "", &models.User{ID: 2, Email: "user@example.com"})
	require.NoError(t, err)
	assert.False(t, session.IsAdmin)
}

func TestGet_ExpiredSessionIsGone(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, "", testLogger())

	session, err := svc.CreateAnonymous(context.Background(), "")
	require.NoError(t, err)
	repo.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.Get(context.Background(), session.ID)
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
	assert.NotContains(t, repo.sessions, session.ID, "expired sessions are deleted on access")
}

func TestElevateWithPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, string(hash), testLogger())

	session, err := svc.CreateAnonymous(context.Background(), "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ElevateWithPassword(context.Background(), session.ID, "wrong"), ErrAdminPasswordInvalid)
	assert.False(t, repo.sessions[session.ID].IsAdmin)

	require.NoError(t, svc.ElevateWithPassword(context.Background(), session.ID, "s3cret"))
	assert.True(t, repo.sessions[session.ID].IsAdmin)
}

func TestElevateWithPassword_Disabled(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), nil, "", testLogger())

	err := svc.ElevateWithPassword(context.Background(), "any", "s3cret")
	assert.ErrorIs(t, err, ErrAdminLoginDisabled)
}

func TestLogout(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, "", testLogger())

	session, err := svc.CreateAnonymous(context.Background(), "")
	require.NoError(t, err)

	svc.Logout(context.Background(), session.ID)
	assert.NotContains(t, repo.sessions, session.ID)

	// Повторный logout не паникует и не шумит.
	svc.Logout(context.Background(), session.ID)
}
