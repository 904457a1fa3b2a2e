package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/user/entity"
)

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// IDGenerator hands out new primary keys.
type IDGenerator interface {
	NewID() string
}

// Service orchestrates signup, signin and user lookups.
type Service struct {
	users  store.UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	ids    IDGenerator
	now    func() time.Time

	// dummy is verified against when the email is unknown so that signin
	// costs one key derivation either way.
	dummy string
}

func NewService(users store.UserStore, hasher PasswordHasher, tokens TokenIssuer, ids IDGenerator) *Service {
	if hasher == nil {
		hasher = Pbkdf2Hasher{}
	}
	dummy, err := hasher.Hash("Dummy-Passw0rd!")
	if err != nil {
		dummy = fallbackDummy
	}
	return &Service{users: users, hasher: hasher, tokens: tokens, ids: ids, now: time.Now, dummy: dummy}
}

// fallbackDummy is a well-formed stored credential that matches no password.
// Verify still derives a full key against it.
var fallbackDummy = "00000000000000000000000000000000:" + strings.Repeat("0", 2*pbkdf2KeyLen)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	maxNameLen            = 64
	messageBadCredentials = "The credentials you provided are invalid."
	messageEmailTaken     = "User with this email address already exists."
)

// Session is the result of a successful signup or signin.
type Session struct {
	User        *entity.User
	AccessToken string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup validates the input, stores a new user and signs them in.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	var v apperr.Validation
	if email == "" {
		v.Add("email", "email is required")
	} else if !emailPattern.MatchString(email) {
		v.Add("email", "Invalid email format")
	}
	if password == "" {
		v.Add("password", "password is required")
	} else if ValidatePassword(password) != nil {
		v.Add("password", passwordPolicyMessage)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		v.Add("name", "Name cannot exceed 64 characters")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	u, err := s.insert(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: u, AccessToken: token}, nil
}

// Signin checks the credentials and returns a fresh token. Unknown emails
// and wrong passwords produce the same outcome.
func (s *Service) Signin(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.New(apperr.InvalidInput, "email", "Email is required.")
	}
	if password == "" {
		return nil, apperr.New(apperr.InvalidInput, "password", "Password is required.")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.hasher.Verify(s.dummy, password)
		return nil, apperr.New(apperr.InvalidCredentials, "", messageBadCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, apperr.New(apperr.InvalidCredentials, "", messageBadCredentials)
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: u.Sanitized(), AccessToken: token}, nil
}

// Create is the administrative variant of Signup: name, email and password
// are required, the password policy is not applied and no token is issued.
func (s *Service) Create(ctx context.Context, name, email, password string) (*entity.User, error) {
	email = normalizeEmail(email)
	switch {
	case name == "":
		return nil, apperr.New(apperr.InvalidInput, "name", "Name is required.")
	case email == "":
		return nil, apperr.New(apperr.InvalidInput, "email", "Email is required.")
	case password == "":
		return nil, apperr.New(apperr.InvalidInput, "password", "Password is required.")
	}
	return s.insert(ctx, name, email, password)
}

func (s *Service) insert(ctx context.Context, name, email, password string) (*entity.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Exists("email", messageEmailTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := &entity.User{
		ID:           s.ids.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.Exists("email", messageEmailTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u.Sanitized(), nil
}

// Get returns one user without its credential.
func (s *Service) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("", "User not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u.Sanitized(), nil
}

// List returns every user without credentials.
func (s *Service) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i, u := range users {
		users[i] = u.Sanitized()
	}
	return users, nil
}
