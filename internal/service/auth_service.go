package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionTTL = 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	UpsertOAuthUser(ctx context.Context, uid, email, name string, avatarURL *string) (*model.User, error)
	Profile(ctx context.Context, uid string) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string) AuthService {
	return &authService{userRepo: userRepo, jwtSecret: []byte(jwtSecret)}
}

// Register creates a credential account and returns a signed session
// token. Credential uids carry a "local:" prefix so they never collide
// with provider uids.
func (s *authService) Register(ctx context.Context, email, password, name string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", invalid("email", "must be a valid address")
	}
	if len(password) < 8 {
		return nil, "", invalid("password", "must be at least 8 characters")
	}
	if name == "" {
		return nil, "", invalid("name", "is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	hashStr := string(hash)
	user := &model.User{
		UID:          "local:" + uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: &hashStr,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", invalid("email", "already registered")
		}
		return nil, "", err
	}

	token, err := s.issueToken(user.UID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUnauthenticated
		}
		return nil, "", err
	}
	if user.PasswordHash == nil {
		// Provider-backed account with no password set.
		return nil, "", ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrUnauthenticated
	}

	token, err := s.issueToken(user.UID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UpsertOAuthUser records the identity-provider fact on first sign-in
// and refreshes name/avatar later. Role flags stay untouched.
func (s *authService) UpsertOAuthUser(ctx context.Context, uid, email, name string, avatarURL *string) (*model.User, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, invalid("email", "is required")
	}
	if name = strings.TrimSpace(name); name == "" {
		name = email
	}
	user := &model.User{
		UID:       uid,
		Name:      name,
		Email:     email,
		AvatarURL: avatarURL,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.FindByUID(ctx, uid)
}

func (s *authService) Profile(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) issueToken(uid string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
