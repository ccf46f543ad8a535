package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/perfumekeeper/internal/common"
	"github.com/dmitrijs2005/perfumekeeper/internal/dbx"
	"github.com/dmitrijs2005/perfumekeeper/internal/logging"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/auth"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/config"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/models"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/perfumes"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/repotest"
	usersrepo "github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/users"
)

const testSecret = "k"

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   testSecret,
		SigningAlgorithm:            "HS256",
		AccessTokenValidityDuration: time.Hour,
	}
}

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	return NewUserService(db, rm, testConfig(), logging.Nop{})
}

type fakeUsersRepo struct {
	getByEmailOut *models.User
	getByEmailErr error

	getByIDOut *models.User
	getByIDErr error

	createErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = 1
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(context.Context, string) (*models.User, error) {
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	return f.getByEmailOut, nil
}

func (f *fakeUsersRepo) GetUserByID(context.Context, int64) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p perfumes.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *fakeRepoManager) Perfumes(dbx.DBTX) perfumes.Repository        { return m.p }

func seedUser(t *testing.T, rm *repotest.RepositoryManager, name, email, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u, err := rm.Users(nil).Create(context.Background(), &models.User{Name: name, Email: email, PasswordHash: hash})
	require.NoError(t, err)
	return u
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := repotest.NewRepositoryManager()
	s := newUserService(t, db, rm)

	u, err := s.Register(context.Background(), "Ana", "ana@x.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.True(t, auth.PasswordMatches("s3cret", u.PasswordHash))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name, userName, email, password string
	}{
		{"empty name", "  ", "ana@x.com", "pw"},
		{"bad email", "Ana", "not-an-email", "pw"},
		{"display name in email", "Ana", "Ana <ana@x.com>", "pw"},
		{"blank password", "Ana", "ana@x.com", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			s := newUserService(t, db, repotest.NewRepositoryManager())

			_, err := s.Register(context.Background(), tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, common.ErrValidation)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegister_DuplicateCaughtByLookup(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := repotest.NewRepositoryManager()
	seedUser(t, rm, "Ana", "ana@x.com", "pw")
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "Ana Again", "ana@x.com", "other")
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateCaughtByConstraint(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getByEmailErr: common.ErrorNotFound,
		createErr:     &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
	}}
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "Ana", "ana@x.com", "pw")
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_OtherIntegrityViolation(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getByEmailErr: common.ErrorNotFound,
		createErr:     &pgconn.PgError{Code: "23502", ConstraintName: "users_name_not_null"},
	}}
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "Ana", "ana@x.com", "pw")
	assert.ErrorIs(t, err, common.ErrIntegrityViolation)
	assert.NotErrorIs(t, err, common.ErrDuplicateIdentity)
}

func TestRegister_DataException(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getByEmailErr: common.ErrorNotFound,
		createErr:     &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(255)"},
	}}
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "Ana", "ana@x.com", "pw")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.NotErrorIs(t, err, common.ErrIntegrityViolation)
	assert.Contains(t, err.Error(), "character varying(255)")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_NameTooLong(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newUserService(t, db, repotest.NewRepositoryManager())

	_, err := s.Register(context.Background(), strings.Repeat("a", 101), "ana@x.com", "pw")
	assert.ErrorIs(t, err, common.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_StorageErrors(t *testing.T) {
	t.Run("lookup", func(t *testing.T) {
		db, _ := newSQLMockDB(t)
		rm := &fakeRepoManager{u: &fakeUsersRepo{getByEmailErr: errors.New("db down")}}
		_, err := newUserService(t, db, rm).Register(context.Background(), "Ana", "ana@x.com", "pw")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})
	t.Run("insert", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		rm := &fakeRepoManager{u: &fakeUsersRepo{getByEmailErr: common.ErrorNotFound, createErr: errors.New("conn reset")}}
		_, err := newUserService(t, db, rm).Register(context.Background(), "Ana", "ana@x.com", "pw")
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrDuplicateIdentity)
		assert.NotErrorIs(t, err, common.ErrIntegrityViolation)
	})
}

// --- Login ---

func TestLogin(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := repotest.NewRepositoryManager()
	ana := seedUser(t, rm, "Ana", "ana@x.com", "s3cret")
	s := newUserService(t, db, rm)
	ctx := context.Background()

	token, err := s.Login(ctx, "ana@x.com", "s3cret")
	require.NoError(t, err)
	claims, err := s.codec.Verify(token)
	require.NoError(t, err)
	sub, _ := claims.GetSubject()
	assert.Equal(t, "1", sub)
	assert.Equal(t, int64(1), ana.ID)

	_, err = s.Login(ctx, "ghost@x.com", "s3cret")
	assert.ErrorIs(t, err, common.ErrIdentityNotFound)

	_, err = s.Login(ctx, "ana@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_LookupError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &fakeRepoManager{u: &fakeUsersRepo{getByEmailErr: errors.New("db down")}}
	_, err := newUserService(t, db, rm).Login(context.Background(), "ana@x.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrIdentityNotFound)
}

func TestLogin_TokenIssueFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := repotest.NewRepositoryManager()
	seedUser(t, rm, "Ana", "ana@x.com", "pw")

	cfg := testConfig()
	cfg.SigningAlgorithm = "RS256"
	s := NewUserService(db, rm, cfg, logging.Nop{})

	_, err := s.Login(context.Background(), "ana@x.com", "pw")
	assert.ErrorIs(t, err, common.ErrTokenIssue)
}

// --- Authenticate ---

func signRaw(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAuthenticate_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := repotest.NewRepositoryManager()
	ana := seedUser(t, rm, "Ana", "ana@x.com", "pw")
	s := newUserService(t, db, rm)

	token, err := s.codec.IssueDefault("1")
	require.NoError(t, err)

	u, err := s.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, u.ID)
	assert.Equal(t, "ana@x.com", u.Email)
}

func TestAuthenticate_Failures(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := repotest.NewRepositoryManager()
	seedUser(t, rm, "Ana", "ana@x.com", "pw")
	bo := seedUser(t, rm, "Bo", "bo@x.com", "pw")
	rm.SetActive(bo.ID, false)
	s := newUserService(t, db, rm)

	now := time.Now().Unix()
	expired, err := s.codec.Issue("1", nil, -time.Minute)
	require.NoError(t, err)
	unknown, err := s.codec.IssueDefault("404")
	require.NoError(t, err)
	inactive, err := s.codec.IssueDefault("2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		reason string
	}{
		{"empty", "", ReasonMissingToken},
		{"garbage", "not.a.jwt", ReasonMalformed},
		{"expired", expired, ReasonExpired},
		{"no subject", signRaw(t, jwt.MapClaims{"iat": now, "exp": now + 60}), ReasonMissingSubject},
		{"non numeric subject", signRaw(t, jwt.MapClaims{"sub": "abc", "iat": now, "exp": now + 60}), ReasonMalformed},
		{"unknown user", unknown, ReasonUserNotFound},
		{"inactive user", inactive, ReasonUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Authenticate(context.Background(), tt.token)
			require.ErrorIs(t, err, common.ErrUnauthenticated)
			var ae *AuthError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.reason, ae.Reason)
		})
	}
}

func TestAuthenticate_StorageErrorIsNotUnauthenticated(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &fakeRepoManager{u: &fakeUsersRepo{getByIDErr: errors.New("db down")}}
	s := newUserService(t, db, rm)

	token, err := s.codec.IssueDefault("1")
	require.NoError(t, err)

	_, err = s.Authenticate(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrUnauthenticated)
}

func TestAuthError_UnwrapsCause(t *testing.T) {
	err := error(&AuthError{Reason: ReasonExpired, Err: common.ErrTokenExpired})
	assert.ErrorIs(t, err, common.ErrTokenExpired)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "expired")
}
