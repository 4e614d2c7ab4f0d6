package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/admin-console-api/internal/domain"
	"github.com/admin-console-api/internal/pkg/id"
	"github.com/admin-console-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Operator, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type operatorStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Operator, error)
	Put(ctx context.Context, op *domain.Operator) error
}

type tokenSigner interface {
	Sign(operatorID, email, role string) (string, error)
}

type service struct {
	repo   operatorStore
	signer tokenSigner
}

func NewService(repo operatorStore, signer tokenSigner) Service {
	return &service{repo: repo, signer: signer}
}

// Login checks the credentials and mints a bearer token. Unknown emails and
// wrong passwords both come back as the same ErrUnauthorized so the response
// never tells one from the other.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Operator, error) {
	if err := validate.Struct(req); err != nil {
		return "", nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	op, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.signer.Sign(op.OperatorID, op.Email, op.Role)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, op, nil
}

// EnsureAdmin seeds the bootstrap operator on startup. An existing record
// wins; the seed never overwrites a password that was changed since.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	op := &domain.Operator{
		OperatorID:   id.New(),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, op); err != nil {
		return err
	}
	slog.Info("seeded admin operator", "email", email)
	return nil
}
