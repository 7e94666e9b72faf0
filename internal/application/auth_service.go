package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	repo "github.com/oksasatya/go-task-management-api/internal/domain/repository"
	"github.com/oksasatya/go-task-management-api/internal/infrastructure/metrics"
	"github.com/oksasatya/go-task-management-api/pkg/helpers"
	"github.com/oksasatya/go-task-management-api/pkg/mailer"
	"github.com/oksasatya/go-task-management-api/pkg/mailer/templates"
	"github.com/oksasatya/go-task-management-api/pkg/validation"
)

// AuthService registers users, verifies credentials and resolves token subjects.
// Cache, Jobs and Metrics are optional.
type AuthService struct {
	Users   repo.UserRepository
	Tokens  TokenIssuer
	Cache   UserCache
	Jobs    JobPublisher
	Metrics metrics.Recorder
	Logger  *logrus.Logger
	AppName string
}

func NewAuthService(users repo.UserRepository, tokens TokenIssuer, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:   users,
		Tokens:  tokens,
		Metrics: metrics.Nop{},
		Logger:  logger,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *entity.User `json:"user"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if fields := validation.Struct(in); fields != nil {
		return nil, NewValidationError(fields)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     entity.RoleUser,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.recorder().RecordUserRegistered()
	s.enqueue(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: templates.Welcome,
		Data: templates.NewWelcomeData(u.Username, u.Email,
			templates.WithAppName(s.AppName),
			templates.WithTime(u.CreatedAt)),
	})
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if fields := validation.Struct(in); fields != nil {
		return nil, NewValidationError(fields)
	}

	u, err := s.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		s.recorder().RecordLoginFailed()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		s.recorder().RecordLoginFailed()
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	return s.GetByID(ctx, userID)
}

// GetByID resolves a user through the profile cache, falling back to the repository.
func (s *AuthService) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	if s.Cache != nil {
		u, found, err := s.Cache.Get(ctx, userID)
		if err != nil {
			s.warn(err, "user cache read failed", userID)
		} else if found {
			return u, nil
		}
	}

	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, u); err != nil {
			s.warn(err, "user cache write failed", userID)
		}
	}
	return u, nil
}

// Evict drops a cached profile.
func (s *AuthService) Evict(ctx context.Context, userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, userID); err != nil {
		s.warn(err, "user cache evict failed", userID)
	}
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		helpers.LogError(s.Logger, "generate access token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *AuthService) enqueue(ctx context.Context, job mailer.EmailJob) {
	publishEmail(ctx, s.Jobs, s.Logger, job)
}

func (s *AuthService) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}

func (s *AuthService) warn(err error, msg, userID string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn(msg)
	}
}

// publishEmail enqueues job when a publisher is configured. Failures are logged only.
func publishEmail(ctx context.Context, jobs JobPublisher, logger *logrus.Logger, job mailer.EmailJob) {
	if jobs == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := jobs.PublishJSON(c, job); err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Warn("enqueue email failed")
	}
}
