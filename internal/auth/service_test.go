package auth

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ezoostore/storefront-backend/internal/sessions"
	"github.com/ezoostore/storefront-backend/internal/users"
	pkgAuth "github.com/ezoostore/storefront-backend/pkg/auth"
	"github.com/ezoostore/storefront-backend/pkg/auth/session"
	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{
	Secret:                 "secret",
	Issuer:                 "ezoo",
	ExpirationMinutes:      30,
	RefreshTokenTTLMinutes: 60,
}

var testPassword = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type refreshRecord struct {
	owner session.Owner
	token string
}

type memoryRefresh struct {
	records map[string]refreshRecord
}

func (m *memoryRefresh) Generate(_ context.Context, accessID string, owner session.Owner) (string, error) {
	token := "rt-" + uuid.NewString()
	m.records[accessID] = refreshRecord{owner: owner, token: token}
	return token, nil
}

func (m *memoryRefresh) Rotate(_ context.Context, oldAccessID, provided string) (string, string, session.Owner, error) {
	rec, ok := m.records[oldAccessID]
	if !ok || rec.token != provided {
		return "", "", session.Owner{}, session.ErrInvalidRefreshToken
	}
	delete(m.records, oldAccessID)
	newID := session.NewAccessID()
	newToken := "rt-" + uuid.NewString()
	m.records[newID] = refreshRecord{owner: rec.owner, token: newToken}
	return newID, newToken, rec.owner, nil
}

func (m *memoryRefresh) Revoke(_ context.Context, accessID string) error {
	delete(m.records, accessID)
	return nil
}

type harness struct {
	svc      Service
	users    *users.Repository
	sessions *sessions.Repository
	refresh  *memoryRefresh
}

func newHarness(t *testing.T, allowAdmin bool) *harness {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Session{}))

	logg := logger.New(logger.Options{Output: io.Discard})
	refresh := &memoryRefresh{records: map[string]refreshRecord{}}
	userRepo := users.NewRepository(conn)
	sessionRepo := sessions.NewRepository(conn)
	tracker, err := sessions.NewService(sessionRepo, refresh, logg)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Users:              userRepo,
		Refresh:            refresh,
		Sessions:           tracker,
		JWTConfig:          testJWT,
		PasswordConfig:     testPassword,
		Logger:             logg,
		AllowAdminRegister: allowAdmin,
	})
	require.NoError(t, err)
	return &harness{svc: svc, users: userRepo, sessions: sessionRepo, refresh: refresh}
}

func signupRequest() SignupRequest {
	return SignupRequest{Name: "Mona", Email: "Mona@Example.com", Password: "secret-1", Phone: "01000000000"}
}

func TestSignupCreatesUserAndSession(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	resp, err := h.svc.Signup(ctx, signupRequest(), ClientMeta{UserAgent: "Firefox"})
	require.NoError(t, err)
	assert.Equal(t, "mona@example.com", resp.User.Email)
	assert.Equal(t, enums.UserRoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.DeviceID)
	assert.NotEmpty(t, resp.SessionID)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleUser, claims.Role)
	assert.Contains(t, h.refresh.records, claims.ID)

	sess, err := h.sessions.FindByTokenID(ctx, claims.ID)
	require.NoError(t, err)
	assert.Equal(t, "Firefox", sess.UserAgent)
}

func TestSignupRejectsDuplicateEmailOrPhone(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	_, err := h.svc.Signup(ctx, signupRequest(), ClientMeta{})
	require.NoError(t, err)

	sameEmail := signupRequest()
	sameEmail.Phone = "01111111111"
	_, err = h.svc.Signup(ctx, sameEmail, ClientMeta{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	samePhone := signupRequest()
	samePhone.Email = "other@example.com"
	_, err = h.svc.Signup(ctx, samePhone, ClientMeta{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	weak := SignupRequest{Name: "Ali", Email: "ali@example.com", Password: "123", Phone: "0122"}
	_, err = h.svc.Signup(ctx, weak, ClientMeta{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestLogin(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	_, err := h.svc.Signup(ctx, signupRequest(), ClientMeta{})
	require.NoError(t, err)

	_, err = h.svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "x", DeviceID: "d1"}, ClientMeta{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = h.svc.Login(ctx, LoginRequest{Email: "mona@example.com", Password: "wrong-pass", DeviceID: "d1"}, ClientMeta{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)

	first, err := h.svc.Login(ctx, LoginRequest{Email: " MONA@example.com", Password: "secret-1", DeviceID: "d1"}, ClientMeta{UserAgent: "Chrome"})
	require.NoError(t, err)
	second, err := h.svc.Login(ctx, LoginRequest{Email: "mona@example.com", Password: "secret-1", DeviceID: "d1"}, ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	stored, err := h.users.FindByEmail(ctx, "mona@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.LoginCount)
	require.Len(t, stored.LoginHistory, 2)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), stored.LoginHistory[0])
}

func TestLoginUpgradesLegacyBcryptHash(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("old-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Name: "Old", Email: "old@example.com", Phone: "0155", PasswordHash: string(legacy)}
	require.NoError(t, h.users.Create(ctx, user))

	_, err = h.svc.Login(ctx, LoginRequest{Email: "old@example.com", Password: "old-secret", DeviceID: "d1"}, ClientMeta{})
	require.NoError(t, err)

	stored, err := h.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
}

func TestRefreshRotatesTokens(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	login, err := h.svc.Signup(ctx, signupRequest(), ClientMeta{})
	require.NoError(t, err)

	refreshed, err := h.svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWT, refreshed.AccessToken)
	require.NoError(t, err)
	sess, err := h.sessions.FindByTokenID(ctx, claims.ID)
	require.NoError(t, err)
	assert.Equal(t, login.SessionID, sess.ID)

	_, err = h.svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)
}

func TestLogoutRevokesSession(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	login, err := h.svc.Signup(ctx, signupRequest(), ClientMeta{})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWT, login.AccessToken)
	require.NoError(t, err)

	require.NoError(t, h.svc.Logout(ctx, claims.ID))
	assert.NotContains(t, h.refresh.records, claims.ID)

	sess, err := h.sessions.FindByID(ctx, login.SessionID)
	require.NoError(t, err)
	assert.False(t, sess.IsActive)

	_, err = h.svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRegisterAdminGate(t *testing.T) {
	_, err := newHarness(t, false).svc.RegisterAdmin(context.Background(), signupRequest(), ClientMeta{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	resp, err := newHarness(t, true).svc.RegisterAdmin(context.Background(), signupRequest(), ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, resp.User.Role)
}

func TestPrependLoginDateCapsHistory(t *testing.T) {
	history := make([]string, maxLoginHistory)
	out := prependLoginDate(history, time.Date(2025, 3, 5, 23, 0, 0, 0, time.UTC))
	assert.Len(t, out, maxLoginHistory)
	assert.Equal(t, "2025-03-05", out[0])
}
