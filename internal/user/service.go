package user

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/validation"
)

const (
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeNameRequired       = "NAME_REQUIRED"
	CodeCollegeRequired    = "COLLEGE_REQUIRED"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"

	minPasswordLength = 6
	// bcrypt only looks at the first 72 bytes.
	maxPasswordBytes = 72
)

type Service struct {
	repo Repository
	cost int
	now  func() time.Time
}

func NewService(repo Repository, cost int) *Service {
	return &Service{repo: repo, cost: cost, now: time.Now}
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, validation.NormalizeEmail(email))
}

// Register validates the payload, hashes the password and stores the user.
// Validation failures are *apperr.Error; a duplicate email is ErrEmailExists
// whether it is caught by the lookup or by the store constraint.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if err := validateRegistration(in); err != nil {
		return User{}, err
	}

	email := validation.NormalizeEmail(in.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, err
	}

	user := User{
		Email:     email,
		Password:  string(hashed),
		Name:      strings.TrimSpace(in.Name),
		College:   strings.TrimSpace(in.College),
		CreatedAt: s.now().UTC(),
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		user.Phone = &phone
	}
	return s.repo.Create(ctx, user)
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// validateRegistration checks fields in a fixed order; the first failure wins.
func validateRegistration(in RegisterInput) error {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return apperr.Validation(CodeEmailRequired, "Email is required")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return apperr.Validation(CodeInvalidPassword, "Password must be at least 6 characters long")
	}
	if len(in.Password) > maxPasswordBytes {
		return apperr.Validation(CodeInvalidPassword, "Password must be at most 72 bytes long")
	}
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation(CodeNameRequired, "Name is required")
	}
	if strings.TrimSpace(in.College) == "" {
		return apperr.Validation(CodeCollegeRequired, "College is required")
	}
	if !validation.IsEmail(email) {
		return apperr.Validation(CodeInvalidEmail, "Invalid email format")
	}
	return nil
}
