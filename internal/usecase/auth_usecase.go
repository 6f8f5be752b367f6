package usecase

import (
	"context"
	"log"
	"net/http"
	"time"

	"zabibufresh/internal/domain/entity"
	"zabibufresh/internal/domain/repository"
	"zabibufresh/pkg/errors"
)

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

type RegisterInput struct {
	FullName string
	Phone    string
	Email    string
	Password string
	Role     string
}

type AuthResult struct {
	User         *entity.User
	Token        string
	RefreshToken string
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Role != entity.RoleSeller && input.Role != entity.RoleBuyer {
		return nil, errors.ValidationFailed("Role must be either seller or buyer", nil)
	}

	// Phone is the unique contact handle
	if existing, err := uc.userRepo.GetByPhone(ctx, input.Phone); err == nil && existing != nil {
		return nil, errors.Conflict("Phone number already in use")
	}

	if existing, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, errors.Conflict("Email already in use")
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, input.Email, input.Password, input.FullName)
	if err != nil {
		return nil, errors.Internal("Failed to create user in authentication provider", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:        uid,
		Email:     input.Email,
		FullName:  input.FullName,
		Phone:     input.Phone,
		Role:      input.Role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		// Auth signup succeeded but the profile insert did not. Roll the
		// auth account back so the user can register again cleanly; if the
		// rollback itself fails, Login will detect the orphaned account.
		log.Printf("Register: profile creation failed for uid %s, rolling back auth user: %v", uid, err)
		if delErr := uc.firebaseAuth.DeleteUser(ctx, uid); delErr != nil {
			log.Printf("Register: rollback of auth user %s failed: %v", uid, delErr)
			return nil, errors.New("PROFILE_INCOMPLETE", "Account was created but the profile could not be saved, contact support", http.StatusConflict, err)
		}
		return nil, errors.WriteFailed("Failed to create user profile", err)
	}

	token, refreshToken, err := uc.firebaseAuth.SignInWithEmailPassword(input.Email, input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: refreshToken,
	}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	token, refreshToken, err := uc.firebaseAuth.SignInWithEmailPassword(email, password)
	if err != nil {
		log.Printf("Login failed for %s: %v", email, err)
		return nil, errors.Unauthenticated("Invalid credentials", err)
	}

	uid, err := uc.firebaseAuth.VerifyToken(ctx, token)
	if err != nil {
		log.Printf("Token verification failed: %v", err)
		return nil, errors.Internal("Failed to verify token", err)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			// Partial-failure state: the auth account exists but there is
			// no profile record. Never proceed as if fully onboarded.
			log.Printf("Login: auth account %s has no profile record", uid)
			return nil, errors.New("PROFILE_INCOMPLETE", "Your account exists but the profile is missing, contact support", http.StatusConflict, err)
		}
		return nil, err
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: refreshToken,
	}, nil
}

func (uc *AuthUseCase) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, newRefreshToken, err := uc.firebaseAuth.RefreshIdToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthenticated("Invalid refresh token", err)
	}

	uid, err := uc.firebaseAuth.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Internal("Failed to verify refreshed token", err)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: newRefreshToken,
	}, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	// Sessions are Firebase ID tokens; logout is handled client-side by
	// discarding the token.
	return nil
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}
