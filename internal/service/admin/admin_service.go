package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/flyticket/flyticket/internal/logging"
	"github.com/flyticket/flyticket/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer            = "flyticket"
	minPasswordLength = 6
	statsWindow       = 7 * 24 * time.Hour
)

// Authenticator issues and checks admin bearer tokens. The HTTP layer depends
// on this alone, so the credential store can be swapped.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*Token, error)
	Verify(ctx context.Context, token string) (*domain.Admin, error)
}

type AdminUseCase interface {
	Authenticator
	Register(ctx context.Context, username, password string) (*domain.Admin, error)
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

type Token struct {
	AccessToken string
	ExpiresAt   time.Time
	Admin       domain.Admin
}

type Claims struct {
	AdminID int64 `json:"admin_id"`
	jwt.RegisteredClaims
}

type Config struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

type AdminService struct {
	admins repository.AdminRepository
	stats  repository.StatsRepository
	cfg    Config
	now    func() time.Time
	log    logrus.FieldLogger
}

func NewAdminService(admins repository.AdminRepository, stats repository.StatsRepository, cfg Config, log logrus.FieldLogger) *AdminService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = logging.Discard()
	}
	return &AdminService{admins: admins, stats: stats, cfg: cfg, now: time.Now, log: log}
}

func (s *AdminService) Login(ctx context.Context, username, password string) (*Token, error) {
	username = strings.TrimSpace(username)
	a, err := s.admins.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrAdminNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		s.log.WithField("username", username).Warn("admin login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	claims := Claims{
		AdminID: a.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   a.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.WithField("username", a.Username).Info("admin logged in")
	return &Token{AccessToken: signed, ExpiresAt: expires, Admin: *a}, nil
}

// Verify accepts a token only while its admin account still exists.
func (s *AdminService) Verify(ctx context.Context, token string) (*domain.Admin, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	a, err := s.admins.GetByUsername(ctx, claims.Subject)
	if errors.Is(err, domain.ErrAdminNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if a.ID != claims.AdminID {
		return nil, domain.ErrUnauthorized
	}
	return a, nil
}

func (s *AdminService) Register(ctx context.Context, username, password string) (*domain.Admin, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return nil, domain.NewInvalidInput("username", "is required")
	case len(password) < minPasswordLength:
		return nil, domain.NewInvalidInput("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &domain.Admin{Username: username, PasswordHash: string(hash)}
	if err := s.admins.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.WithField("username", a.Username).Info("admin registered")
	return a, nil
}

// EnsureAdmin creates the account unless one with that username exists.
// Reports whether it created one.
func (s *AdminService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.Register(ctx, username, password)
	if errors.Is(err, domain.ErrAdminExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *AdminService) Stats(ctx context.Context) (domain.Stats, error) {
	stats, err := s.stats.Stats(ctx, s.now().Add(-statsWindow))
	if err != nil {
		return domain.Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}

var _ AdminUseCase = (*AdminService)(nil)
