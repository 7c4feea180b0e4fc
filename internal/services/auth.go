package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/curator-backend/internal/data/repos"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/ctxutil"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const invalidCredentials = "Invalid email or password"

type JWTClaims struct {
	UserID         string `json:"id"`
	OrganisationID string `json:"organisationId"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NoopRevocations keeps nothing, so logout is purely client-side.
type NoopRevocations struct{}

func (NoopRevocations) Revoke(context.Context, string, time.Time) error { return nil }

func (NoopRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }

type LoginResult struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

type Session struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Role           types.Role `json:"role"`
	OrganisationID uuid.UUID  `json:"organisationId"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	Session(ctx context.Context) (*Session, error)
	Logout(ctx context.Context) error
	IssueToken(user *types.User) (string, error)
	TokenTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	orgRepo      repos.OrganisationRepo
	revocations  RevocationStore
	jwtSecretKey []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

func NewAuthService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	orgRepo repos.OrganisationRepo,
	revocations RevocationStore,
	jwtSecretKey string,
	tokenTTL time.Duration,
) AuthService {
	if revocations == nil {
		revocations = NoopRevocations{}
	}
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		orgRepo:      orgRepo,
		revocations:  revocations,
		jwtSecretKey: []byte(jwtSecretKey),
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

func (as *authService) TokenTTL() time.Duration { return as.tokenTTL }

func (as *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apierr.Validation("Email and password are required")
	}
	dbc := dbctx.Context{Ctx: ctx}

	user, err := as.userRepo.GetByEmail(dbc, email)
	if err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			return nil, apierr.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apierr.Unauthorized(invalidCredentials)
	}
	if _, err := as.orgRepo.GetByID(dbc, user.OrganisationID); err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			as.log.Warn("Login for user of deleted organisation", "user_id", user.ID)
			return nil, apierr.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("load organisation: %w", err)
	}

	token, err := as.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (as *authService) IssueToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		UserID:         user.ID.String(),
		OrganisationID: user.OrganisationID.String(),
		Role:           string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, apierr.Unauthorized("No token provided")
	}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&JWTClaims{},
		func(token *jwt.Token) (interface{}, error) { return as.jwtSecretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, apierr.New(apierr.KindUnauthorized, "Token expired", err)
		}
		return ctx, apierr.New(apierr.KindUnauthorized, "Invalid token", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, apierr.Unauthorized("Invalid token")
	}

	userID, uErr := uuid.Parse(claims.UserID)
	orgID, oErr := uuid.Parse(claims.OrganisationID)
	if uErr != nil || oErr != nil || claims.ID == "" || !types.Role(claims.Role).Valid() {
		return ctx, apierr.Unauthorized("Invalid token")
	}

	revoked, err := as.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return ctx, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return ctx, apierr.Unauthorized("Invalid token")
	}

	rd := &ctxutil.RequestData{
		UserID:         userID,
		OrganisationID: orgID,
		Role:           claims.Role,
		TokenID:        claims.ID,
		ExpiresAt:      claims.ExpiresAt.Time,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) Session(ctx context.Context) (*Session, error) {
	rd, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, rd.OrganisationID, rd.UserID)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:             user.ID,
		Email:          user.Email,
		Role:           user.Role,
		OrganisationID: user.OrganisationID,
	}, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd, err := requireIdentity(ctx)
	if err != nil {
		return err
	}
	if err := as.revocations.Revoke(ctx, rd.TokenID, rd.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	as.log.Info("User logged out", "user_id", rd.UserID)
	return nil
}

func requireIdentity(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil || rd.OrganisationID == uuid.Nil {
		return nil, apierr.Unauthorized("No token provided")
	}
	return rd, nil
}
