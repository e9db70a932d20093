package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/security"
	"vocabtrainer/internal/validation"
)

var (
	ErrEmailTaken      = errors.New("email already linked to another sign-in provider")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidRole     = errors.New("invalid role")
	ErrMissingIdentity = errors.New("missing oauth provider information")
)

// AuthService signs users in with an OAuth provider and issues access tokens
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *security.TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Session is the result of a successful sign-in
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// OAuthLogin authenticates or creates a user using an OAuth provider
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*Session, error) {
	if provider == "" || subject == "" {
		return nil, ErrMissingIdentity
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser != nil {
			if existingUser.OAuthProvider != "" {
				return nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(ctx, existingUser.ID, provider, subject); err != nil {
				return nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			newUser, err := s.userRepo.CreateUser(ctx, email, name)
			if err != nil {
				return nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
			if err := s.userRepo.LinkOAuthProvider(ctx, newUser.ID, provider, subject); err != nil {
				return nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = newUser
		}
		user.OAuthProvider = provider
		user.OAuthSubject = subject
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves an access token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Users lists every account
func (s *AuthService) Users(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAllUsers(ctx)
}

// SetRole promotes or demotes an account
func (s *AuthService) SetRole(ctx context.Context, userID, role string) error {
	if role != models.RoleStudent && role != models.RoleTeacher {
		return ErrInvalidRole
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.userRepo.UpdateRole(ctx, userID, role)
}

// DeleteUser removes an account
func (s *AuthService) DeleteUser(ctx context.Context, userID string) error {
	return s.userRepo.DeleteUser(ctx, userID)
}
