package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/logger"
	"github.com/paytrack/paytrack-api/internal/model"
	"github.com/paytrack/paytrack-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`

	Name            string `json:"name" binding:"required"`
	PaternalSurname string `json:"paternal_surname" binding:"required"`
	MaternalSurname string `json:"maternal_surname" binding:"required"`
	NationalID      string `json:"national_id" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Address         string `json:"address"`
	Salary          string `json:"salary"` // Decimal string, employees only
}

type UpdateUserRequest struct {
	Name            *string `json:"name"`
	PaternalSurname *string `json:"paternal_surname"`
	MaternalSurname *string `json:"maternal_surname"`
	NationalID      *string `json:"national_id"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	Salary          *string `json:"salary"`
	Role            *string `json:"role"`
	Status          *string `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type VerifyEmailRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	ID              string  `json:"id"`
	Role            string  `json:"role"`
	Name            string  `json:"name"`
	PaternalSurname string  `json:"paternal_surname"`
	MaternalSurname string  `json:"maternal_surname"`
	FullName        string  `json:"full_name"`
	NationalID      string  `json:"national_id"`
	Phone           string  `json:"phone"`
	Address         string  `json:"address"`
	Salary          *string `json:"salary,omitempty"`
	Status          string  `json:"status"`
	Email           string  `json:"email"`
	IsVerified      bool    `json:"is_verified"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// --- Interface ---

// VerificationMailer delivers verification codes. The SMTP sender in
// internal/notify implements it; tests plug a fake.
type VerificationMailer interface {
	SendVerificationCode(to, name, code string) error
}

// JWTConfig holds token signing settings shared with the middleware
type JWTConfig struct {
	Secret       string
	AccessHours  int
	RefreshHours int
}

type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenPairResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (TokenPairResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, req VerifyEmailRequest) error

	GetUser(ctx context.Context, id string) (UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo   repository.UserRepository
	mailer VerificationMailer
	jwtCfg JWTConfig
	now    clock
}

func NewUserService(repo repository.UserRepository, mailer VerificationMailer, jwtCfg JWTConfig) UserService {
	return &userService{
		repo:   repo,
		mailer: mailer,
		jwtCfg: jwtCfg,
		now:    time.Now,
	}
}

// --- Implementation ---

func (s *userService) Register(ctx context.Context, req RegisterUserRequest) (UserResponse, error) {
	role := model.UserRole(req.Role)
	if !role.Valid() {
		return UserResponse{}, apperr.Validation("invalid role: %q", req.Role)
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return UserResponse{}, apperr.Conflict("email %s is already registered", req.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Role:            role,
		Name:            req.Name,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		NationalID:      req.NationalID,
		Phone:           req.Phone,
		Address:         req.Address,
		Status:          model.UserActive,
		Email:           req.Email,
		Password:        string(hashed),
	}
	if req.Salary != "" {
		salary, parseErr := parseDecimal("salary", req.Salary)
		if parseErr != nil {
			return UserResponse{}, parseErr
		}
		if salary.IsNegative() {
			return UserResponse{}, apperr.Validation("salary cannot be negative")
		}
		user.Salary = &salary
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	code := generateVerificationCode()
	vc := model.VerificationCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: s.now().Add(24 * time.Hour),
	}
	if err := s.repo.SaveVerificationCode(ctx, &vc); err != nil {
		return UserResponse{}, fmt.Errorf("failed to save verification code: %w", err)
	}

	// Mail failures do not fail registration; the code can be re-sent later
	if s.mailer != nil {
		if mailErr := s.mailer.SendVerificationCode(user.Email, user.FullName(), code); mailErr != nil {
			logger.Warn("failed to send verification email", "email", user.Email, "error", mailErr)
		}
	}

	return toUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (TokenPairResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return TokenPairResponse{}, apperr.Validation("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return TokenPairResponse{}, apperr.Validation("invalid email or password")
	}
	if !user.IsActive() {
		return TokenPairResponse{}, apperr.State("account is inactive")
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, req RefreshRequest) (TokenPairResponse, error) {
	stored, err := s.repo.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return TokenPairResponse{}, apperr.Validation("invalid refresh token")
	}
	if s.now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, req.RefreshToken)
		return TokenPairResponse{}, apperr.Validation("refresh token expired")
	}

	user, err := s.repo.FindByID(ctx, stored.UserID)
	if err != nil {
		return TokenPairResponse{}, notFoundOr(err, "user")
	}
	if !user.IsActive() {
		return TokenPairResponse{}, apperr.State("account is inactive")
	}

	// Rotate: the presented token dies with the refresh
	if err := s.repo.DeleteRefreshToken(ctx, req.RefreshToken); err != nil {
		return TokenPairResponse{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperr.Validation("refresh_token is required")
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	userID, err := parseUUID("user_id", req.UserID)
	if err != nil {
		return err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user")
	}
	if user.IsVerified {
		return apperr.State("email is already verified")
	}

	vc, err := s.repo.FindVerificationCode(ctx, userID, req.Code)
	if err != nil {
		return apperr.Validation("invalid verification code")
	}
	if s.now().After(vc.ExpiresAt) {
		return apperr.Validation("verification code expired")
	}

	user.IsVerified = true
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

func (s *userService) GetUser(ctx context.Context, id string) (UserResponse, error) {
	userID, err := parseUUID("user id", id)
	if err != nil {
		return UserResponse{}, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return UserResponse{}, notFoundOr(err, "user")
	}
	return toUserResponse(*user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	result := make([]UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	return result, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error) {
	userID, err := parseUUID("user id", id)
	if err != nil {
		return UserResponse{}, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return UserResponse{}, notFoundOr(err, "user")
	}

	if req.Role != nil {
		role := model.UserRole(*req.Role)
		if !role.Valid() {
			return UserResponse{}, apperr.Validation("invalid role: %q", *req.Role)
		}
		user.Role = role
	}
	if req.Status != nil {
		status := model.UserStatus(*req.Status)
		if !status.Valid() {
			return UserResponse{}, apperr.Validation("invalid status: %q", *req.Status)
		}
		user.Status = status
	}
	if req.Salary != nil {
		if *req.Salary == "" {
			user.Salary = nil
		} else {
			salary, parseErr := parseDecimal("salary", *req.Salary)
			if parseErr != nil {
				return UserResponse{}, parseErr
			}
			if salary.IsNegative() {
				return UserResponse{}, apperr.Validation("salary cannot be negative")
			}
			user.Salary = &salary
		}
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.PaternalSurname != nil {
		user.PaternalSurname = *req.PaternalSurname
	}
	if req.MaternalSurname != nil {
		user.MaternalSurname = *req.MaternalSurname
	}
	if req.NationalID != nil {
		user.NationalID = *req.NationalID
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return UserResponse{}, fmt.Errorf("failed to update user: %w", err)
	}
	return toUserResponse(*user), nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	userID, err := parseUUID("user id", id)
	if err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return notFoundOr(err, "user")
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// --- Helpers ---

func (s *userService) issueTokens(ctx context.Context, user *model.User) (TokenPairResponse, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  s.now().Add(time.Duration(s.jwtCfg.AccessHours) * time.Hour).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return TokenPairResponse{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := uuid.NewString()
	rt := model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: s.now().Add(time.Duration(s.jwtCfg.RefreshHours) * time.Hour),
	}
	if err := s.repo.SaveRefreshToken(ctx, &rt); err != nil {
		return TokenPairResponse{}, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return TokenPairResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// generateVerificationCode returns a 6-digit numeric code
func generateVerificationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func toUserResponse(u model.User) UserResponse {
	resp := UserResponse{
		ID:              u.ID.String(),
		Role:            string(u.Role),
		Name:            u.Name,
		PaternalSurname: u.PaternalSurname,
		MaternalSurname: u.MaternalSurname,
		FullName:        u.FullName(),
		NationalID:      u.NationalID,
		Phone:           u.Phone,
		Address:         u.Address,
		Status:          string(u.Status),
		Email:           u.Email,
		IsVerified:      u.IsVerified,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       u.UpdatedAt.Format(time.RFC3339),
	}
	if u.Salary != nil {
		salary := u.Salary.StringFixed(2)
		resp.Salary = &salary
	}
	return resp
}
