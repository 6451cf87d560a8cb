package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fileshare/internal/model"
	"fileshare/internal/repository"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// IdentityService registers and authenticates users and manages their bearer tokens.
type IdentityService interface {
	// Register validates every field, hashes the password and stores the user.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// Authenticate checks credentials. Unknown email and wrong password fail identically.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)

	// IssueToken returns a bearer credential for u.
	IssueToken(ctx context.Context, u *model.User) (string, error)

	// ResolveToken maps a bearer credential back to its user.
	ResolveToken(ctx context.Context, token string) (*model.User, *Claims, error)

	// Logout revokes the token described by claims.
	Logout(ctx context.Context, claims *Claims) error
}

type identityService struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	issuer     *TokenIssuer
	bcryptCost int
	dummyHash  []byte
}

// NewIdentityService constructs a new IdentityService.
func NewIdentityService(users repository.UserRepository, tokens repository.TokenRepository, issuer *TokenIssuer, bcryptCost int) IdentityService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	// compared against when the email is unknown so both failure paths cost the same
	dummy, _ := bcrypt.GenerateFromPassword([]byte("fileshare-timing-equalizer"), bcryptCost)
	return &identityService{
		users:      users,
		tokens:     tokens,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}
}

func (s *identityService) Register(ctx context.Context, in RegisterInput) (u *model.User, err error) {
	ctx, span := startSpan(ctx, "IdentityService.Register")
	defer func() { endSpan(span, err) }()

	email := model.NormalizeEmail(in.Email)
	fields := map[string][]string{}
	if email == "" {
		fields["email"] = append(fields["email"], "Field email can not be blank")
	} else if !validEmail(email) {
		fields["email"] = append(fields["email"], "Enter a valid email address")
	}
	if in.Password == "" {
		fields["password"] = append(fields["password"], "Field password can not be blank")
	} else if len(in.Password) > 72 {
		fields["password"] = append(fields["password"], "Password can not be longer than 72 bytes")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		fields["first_name"] = append(fields["first_name"], "Field first_name can not be blank")
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields["last_name"] = append(fields["last_name"], "Field last_name can not be blank")
	}
	if len(fields) > 0 {
		return nil, ValidationError("Invalid registration data", fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	stored, err := s.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return stored, nil
}

func (s *identityService) Authenticate(ctx context.Context, email, password string) (u *model.User, err error) {
	ctx, span := startSpan(ctx, "IdentityService.Authenticate")
	defer func() { endSpan(span, err) }()

	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		fields := map[string][]string{}
		if email == "" {
			fields["email"] = []string{"Field email can not be blank"}
		}
		if password == "" {
			fields["password"] = []string{"Field password can not be blank"}
		}
		return nil, ValidationError("Email and password are required", fields)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}
	return user, nil
}

func (s *identityService) IssueToken(_ context.Context, u *model.User) (string, error) {
	return s.issuer.Issue(u)
}

func (s *identityService) ResolveToken(ctx context.Context, token string) (*model.User, *Claims, error) {
	if token == "" {
		return nil, nil, ErrUnauthenticated
	}
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, nil, ErrUnauthenticated
	}
	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	return user, claims, nil
}

func (s *identityService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrUnauthenticated
	}
	expiresAt := time.Now().UTC()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.tokens.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// validEmail is a shape check only: one "@" with text on both sides and a dot in the domain.
func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
