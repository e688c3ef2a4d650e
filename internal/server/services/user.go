// Package services contains server-side business logic: accounts and
// sessions (UserService), the task mutation API (TaskService) and the
// activity log (ActivityService).
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/cryptox"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/auth"
	"github.com/dmitrijs2005/tasksync/internal/server/config"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
)

// Response messages shared with the HTTP layer.
const (
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid email or password"
	minPasswordLength     = 6
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput is a sign-up request; UserName and Email are normalised
// to trimmed lower case before storage.
type RegisterInput struct {
	UserName   string
	Email      string
	Password   string
	Profession string
}

// LoginResult is a fresh token pair plus the signed-in user.
type LoginResult struct {
	TokenPair
	User *models.User
}

// UserService provides account and session operations:
// - Register / Login / Logout
// - RefreshToken: rotate refresh tokens and mint new access tokens
// - ResolveCaller: map an access token to a live user
// - Profile, ChangePassword, UpdateDetails
type UserService struct {
	repomanager                  repomanager.RepositoryManager
	activities                   *ActivityService
	log                          logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService builds a UserService. Token secrets and lifetimes are
// taken from cfg.
func NewUserService(m repomanager.RepositoryManager, a *ActivityService, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		repomanager:                  m,
		activities:                   a,
		log:                          log.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

// Register creates a user. Handle and email are stored trimmed and lower-cased.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	userName := normalize(in.UserName)
	email := normalize(in.Email)

	if userName == "" || email == "" || in.Password == "" {
		return nil, common.NewValidationError("Username, email and password are required")
	}
	if !validEmail(email) {
		return nil, common.NewValidationError("Invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, common.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	repo := s.repomanager.Users(s.repomanager.DB())

	if _, err := repo.FindByEmailOrUserName(ctx, email, userName); err == nil {
		return nil, common.NewValidationError(MsgUserExists)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
		Profession:   strings.TrimSpace(in.Profession),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewValidationError(MsgUserExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies email and password and issues a fresh token pair. The new
// refresh token replaces any previous one.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.repomanager.DB())

	user, err := repo.GetByEmail(ctx, normalize(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthorizedError(MsgInvalidCredentials)
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.CheckPassword(user.PasswordHash, password)
	if err != nil {
		s.log.Error(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.NewUnauthorizedError(MsgInvalidCredentials)
	}

	pair, err := s.generateTokenPair(ctx, user, s.repomanager.DB())
	if err != nil {
		return nil, err
	}

	if _, err := s.activities.Record(ctx, user.ID, models.ActionLoggedIn, "User logged in"); err != nil {
		s.log.Warn(ctx, "login activity not recorded", "user_id", user.ID, "error", err)
	}

	return &LoginResult{TokenPair: *pair, User: user}, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.NewUnauthorizedError("Refresh token is required")
	}

	token, err := s.repomanager.RefreshTokens(s.repomanager.DB()).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthorizedError("Invalid refresh token")
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.repomanager.DB()).GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthorizedError("Invalid refresh token")
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	var pair *TokenPair
	if err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout drops the user's refresh credential.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.repomanager.RefreshTokens(s.repomanager.DB()).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	if _, err := s.activities.Record(ctx, userID, models.ActionLoggedOut, "User logged out"); err != nil {
		s.log.Warn(ctx, "logout activity not recorded", "user_id", userID, "error", err)
	}
	return nil
}

// ResolveCaller verifies an access token and returns the user it names.
func (s *UserService) ResolveCaller(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.repomanager.DB()).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthorizedError("User not found")
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// Profile returns the user with userID.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.repomanager.DB()).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError("User not found")
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

// ChangePassword replaces the password after checking the old one.
// newPassword and confirmPassword must match and be long enough.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirmPassword string) error {
	if oldPassword == "" || newPassword == "" || confirmPassword == "" {
		return common.NewValidationError("All password fields are required")
	}
	if newPassword != confirmPassword {
		return common.NewValidationError("New passwords do not match")
	}
	if len(newPassword) < minPasswordLength {
		return common.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	repo := s.repomanager.Users(s.repomanager.DB())
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error loading user: %w", err)
	}

	ok, err := cryptox.CheckPassword(user.PasswordHash, oldPassword)
	if err != nil {
		s.log.Error(ctx, "stored password hash unreadable", "user_id", userID, "error", err)
		return common.ErrorInternal
	}
	if !ok {
		return common.NewValidationError("Old password is incorrect")
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	s.log.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// UpdateDetails changes email and username, both of which must stay unique.
func (s *UserService) UpdateDetails(ctx context.Context, userID, email, userName string) (*models.User, error) {
	email = normalize(email)
	userName = normalize(userName)
	if email == "" || userName == "" {
		return nil, common.NewValidationError("Email and username are required")
	}
	if !validEmail(email) {
		return nil, common.NewValidationError("Invalid email address")
	}

	u, err := s.repomanager.Users(s.repomanager.DB()).UpdateDetails(ctx, userID, email, userName)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewValidationError("Email or username already in use")
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError("User not found")
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return u, nil
}

// --- helpers below ---

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		s.log.Error(ctx, "access token not signed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		s.log.Error(ctx, "refresh token not generated", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Upsert(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		s.log.Error(ctx, "refresh token not stored", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
