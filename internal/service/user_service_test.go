package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendVerificationCode(to, name, code string) error {
	m.sent = append(m.sent, to)
	return m.err
}

func newUserFixture(t *testing.T) (*userService, *fakeUserRepo, *recordingMailer) {
	t.Helper()
	repo := newFakeUserRepo()
	mailer := &recordingMailer{}
	svc := &userService{
		repo:   repo,
		mailer: mailer,
		jwtCfg: JWTConfig{Secret: "test-secret", AccessHours: 24, RefreshHours: 168},
		now:    func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
	return svc, repo, mailer
}

func registerTestUser(t *testing.T, svc *userService) UserResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterUserRequest{
		Email:           "ana@paytrack.test",
		Password:        "sup3r-secret",
		Role:            "employee",
		Name:            "Ana",
		PaternalSurname: "Perez",
		MaternalSurname: "Ruiz",
		NationalID:      "PERA900101",
		Phone:           "5559876543",
		Salary:          "8500.00",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterHashesPasswordAndMailsCode(t *testing.T) {
	svc, repo, mailer := newUserFixture(t)
	resp := registerTestUser(t, svc)

	assert.Equal(t, "employee", resp.Role)
	assert.Equal(t, "Ana Perez Ruiz", resp.FullName)
	require.NotNil(t, resp.Salary)
	assert.Equal(t, "8500.00", *resp.Salary)
	assert.False(t, resp.IsVerified)

	stored, err := repo.FindByEmail(context.Background(), "ana@paytrack.test")
	require.NoError(t, err)
	assert.NotEqual(t, "sup3r-secret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("sup3r-secret")))

	assert.Equal(t, []string{"ana@paytrack.test"}, mailer.sent)
	code, ok := repo.codes[stored.ID]
	require.True(t, ok)
	assert.Len(t, code.Code, 6)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), RegisterUserRequest{
		Email:           "ana@paytrack.test",
		Password:        "another-pass",
		Role:            "admin",
		Name:            "Ana",
		PaternalSurname: "Perez",
		MaternalSurname: "Ruiz",
		NationalID:      "PERA900101",
		Phone:           "5559876543",
	})
	assert.True(t, apperr.IsConflict(err))
}

func TestRegisterMailFailureDoesNotFail(t *testing.T) {
	svc, _, mailer := newUserFixture(t)
	mailer.err = errors.New("smtp down")

	resp := registerTestUser(t, svc)
	assert.NotEmpty(t, resp.ID)
	assert.Len(t, mailer.sent, 1)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	registerTestUser(t, svc)

	pair, err := svc.Login(context.Background(), LoginRequest{Email: "ana@paytrack.test", Password: "sup3r-secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	token, err := jwt.Parse(pair.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "employee", claims["role"])

	_, ok := repo.tokens[pair.RefreshToken]
	assert.True(t, ok)
}

func TestLoginRejectsBadCredentialsAndInactive(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	registerTestUser(t, svc)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@paytrack.test", Password: "wrong"})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@paytrack.test", Password: "sup3r-secret"})
	assert.True(t, apperr.IsValidation(err))

	stored, err := repo.FindByEmail(context.Background(), "ana@paytrack.test")
	require.NoError(t, err)
	stored.Status = model.UserInactive
	require.NoError(t, repo.Update(context.Background(), stored))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ana@paytrack.test", Password: "sup3r-secret"})
	assert.True(t, apperr.IsState(err))
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	registerTestUser(t, svc)

	pair, err := svc.Login(context.Background(), LoginRequest{Email: "ana@paytrack.test", Password: "sup3r-secret"})
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The presented token is dead after rotation
	_, err = svc.Refresh(context.Background(), RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.True(t, apperr.IsValidation(err))

	_, ok := repo.tokens[next.RefreshToken]
	assert.True(t, ok)
}

func TestRefreshExpiredTokenIsPurged(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	registerTestUser(t, svc)

	pair, err := svc.Login(context.Background(), LoginRequest{Email: "ana@paytrack.test", Password: "sup3r-secret"})
	require.NoError(t, err)

	repo.tokens[pair.RefreshToken].ExpiresAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err = svc.Refresh(context.Background(), RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.True(t, apperr.IsValidation(err))
	_, ok := repo.tokens[pair.RefreshToken]
	assert.False(t, ok)
}

func TestVerifyEmail(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	resp := registerTestUser(t, svc)

	stored, err := repo.FindByEmail(context.Background(), "ana@paytrack.test")
	require.NoError(t, err)
	code := repo.codes[stored.ID].Code

	require.NoError(t, svc.VerifyEmail(context.Background(), VerifyEmailRequest{UserID: resp.ID, Code: code}))

	verified, err := repo.FindByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	// Re-verifying and bad codes both refuse
	err = svc.VerifyEmail(context.Background(), VerifyEmailRequest{UserID: resp.ID, Code: code})
	assert.True(t, apperr.IsState(err))
}

func TestVerifyEmailBadOrExpiredCode(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	resp := registerTestUser(t, svc)

	err := svc.VerifyEmail(context.Background(), VerifyEmailRequest{UserID: resp.ID, Code: "000000x"})
	assert.True(t, apperr.IsValidation(err))

	stored, err := repo.FindByEmail(context.Background(), "ana@paytrack.test")
	require.NoError(t, err)
	repo.codes[stored.ID].ExpiresAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	err = svc.VerifyEmail(context.Background(), VerifyEmailRequest{UserID: resp.ID, Code: repo.codes[stored.ID].Code})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateUserValidatesEnums(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	resp := registerTestUser(t, svc)

	badRole := "superuser"
	_, err := svc.UpdateUser(context.Background(), resp.ID, UpdateUserRequest{Role: &badRole})
	assert.True(t, apperr.IsValidation(err))

	role := "admin"
	status := "inactive"
	updated, err := svc.UpdateUser(context.Background(), resp.ID, UpdateUserRequest{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.Equal(t, "inactive", updated.Status)
}
