package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/harborwell/insurance-backend/internal/apierr"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/repos"
	"github.com/harborwell/insurance-backend/internal/types"
)

type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Role           string
	OrganizationID *uuid.UUID
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, input RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (*LoginResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, input RegisterInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("email and password are required"))
	}
	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check user email: %w", err)
	}
	if exists {
		return nil, apierr.Duplicate("user", "email")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = types.RoleAgent
	}
	orgID := uuid.New()
	if input.OrganizationID != nil {
		orgID = *input.OrganizationID
	}

	now := time.Now()
	user := &types.User{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          email,
		Password:       string(hashed),
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := as.userRepo.Create(ctx, nil, user); err != nil {
		if repos.IsDuplicateKey(err) {
			return nil, apierr.Duplicate("user", "email")
		}
		as.log.Error("RegisterUser failed", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, apierr.Unauthorized(fmt.Errorf("invalid email or password"))
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Unauthorized(fmt.Errorf("invalid email or password"))
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (as *authService) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	user, err := as.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, apierr.NotFound("user")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":             user.ID.String(),
		"organization_id": user.OrganizationID.String(),
		"role":            user.Role,
		"iat":             now.Unix(),
		"exp":             now.Add(as.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
