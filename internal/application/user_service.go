package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-gis-markers/internal/domain/apperror"
	"github.com/oksasatya/go-gis-markers/internal/domain/entity"
	repo "github.com/oksasatya/go-gis-markers/internal/domain/repository"
	"github.com/oksasatya/go-gis-markers/pkg/helpers"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
)

var (
	ErrInvalidCredentials = apperror.Unauthorized("invalid credentials")
	ErrUserNotFound       = apperror.NotFound("user not found")
)

// dummyHash keeps login timing similar whether or not the username exists.
var dummyHash, _ = helpers.HashPassword("timing-equalizer")

var validate = validator.New()

// AccountPolicy holds the registration rules that are configurable per deployment.
type AccountPolicy struct {
	PasswordMinLength int
	RequireEmail      bool
}

type UserService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Events EventPublisher
	Logger *logrus.Logger
	Policy AccountPolicy
}

func NewUserService(r repo.UserRepository, jwt *helpers.JWTManager, events EventPublisher, logger *logrus.Logger, policy AccountPolicy) *UserService {
	if events == nil {
		events = NopPublisher{}
	}
	if policy.PasswordMinLength <= 0 {
		policy.PasswordMinLength = 6
	}
	return &UserService{Repo: r, JWT: jwt, Events: events, Logger: logger, Policy: policy}
}

type RegisterInput struct {
	Username string
	Password string
	Email    *string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

type UpdateProfileInput struct {
	Username    *string
	Email       *string
	NewPassword *string
}

func (s *UserService) validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength {
		return "", apperror.Validation("username", fmt.Sprintf("must be at least %d characters long", UsernameMinLength))
	}
	if n > UsernameMaxLength {
		return "", apperror.Validation("username", fmt.Sprintf("must be at most %d characters long", UsernameMaxLength))
	}
	return username, nil
}

func (s *UserService) validatePassword(field, password string) error {
	if utf8.RuneCountInString(password) < s.Policy.PasswordMinLength {
		return apperror.Validation(field, fmt.Sprintf("must be at least %d characters long", s.Policy.PasswordMinLength))
	}
	if len(password) > helpers.MaxPasswordBytes {
		return apperror.Validation(field, fmt.Sprintf("must be at most %d bytes long", helpers.MaxPasswordBytes))
	}
	return nil
}

func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		return "", apperror.Validation("email", "must be a valid email")
	}
	return email, nil
}

func (s *UserService) hash(password string) (string, error) {
	h, err := helpers.HashPassword(password)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("hash password: %w", err))
	}
	return h, nil
}

// Register validates the account, hashes the password and stores the user.
// Nothing reaches the store when validation fails.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	username, err := s.validateUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if err := s.validatePassword("password", in.Password); err != nil {
		return nil, err
	}
	var email *string
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		e, err := validateEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		email = &e
	} else if s.Policy.RequireEmail {
		return nil, apperror.Validation("email", "is required")
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Username: username, Email: email, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if apperror.KindOf(err) == apperror.KindConflict {
			return nil, err
		}
		return nil, apperror.Internal(fmt.Errorf("create user: %w", err))
	}
	u.Password = ""

	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID, "username": u.Username})
	data := map[string]any{"user_id": u.ID, "username": u.Username}
	if u.Email != nil {
		data["email"] = *u.Email
	}
	s.Events.Publish(ctx, NewEvent(EventUserRegistered, data))
	return u, nil
}

// Login never reveals whether the username or the password was wrong.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Internal(fmt.Errorf("lookup user: %w", err))
		}
		helpers.CompareHashAndPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.GenerateAccessToken(u.ID, u.Username)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, apperror.Internal(err)
	}
	u.Password = ""
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal(fmt.Errorf("get user: %w", err))
	}
	return u, nil
}

// UpdateProfile applies a sparse update. Absent fields are left untouched;
// an update with no fields at all is rejected before reaching the store.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*entity.User, error) {
	var patch entity.UserPatch
	if in.Username != nil {
		username, err := s.validateUsername(*in.Username)
		if err != nil {
			return nil, err
		}
		patch.Username = &username
	}
	if in.Email != nil {
		email, err := validateEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if in.NewPassword != nil {
		if err := s.validatePassword("newPassword", *in.NewPassword); err != nil {
			return nil, err
		}
		hash, err := s.hash(*in.NewPassword)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	if patch.Empty() {
		return nil, apperror.Validation("", "no fields to update")
	}

	u, err := s.Repo.Update(ctx, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUserNotFound
		case apperror.KindOf(err) != apperror.KindInternal:
			return nil, err
		default:
			return nil, apperror.Internal(fmt.Errorf("update user: %w", err))
		}
	}
	return u, nil
}

// Delete removes the account immediately. Deleting a missing account succeeds.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return apperror.Internal(fmt.Errorf("delete user: %w", err))
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", userID).Info("user deleted")
	}
	s.Events.Publish(ctx, NewEvent(EventUserDeleted, map[string]any{"user_id": userID}))
	return nil
}
