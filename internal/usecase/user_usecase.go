package usecase

import (
	"context"
	"log"

	"zabibufresh/internal/domain/entity"
	"zabibufresh/internal/domain/repository"
	"zabibufresh/pkg/errors"
)

type UserUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
}

func NewUserUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

type UpdateProfileInput struct {
	FullName string
	Phone    string
}

func (uc *UserUseCase) GetUserProfile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes display name and phone. Role is immutable after
// registration and deliberately not updatable here.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Phone != "" && input.Phone != user.Phone {
		if existing, err := uc.userRepo.GetByPhone(ctx, input.Phone); err == nil && existing != nil && existing.ID != userID {
			return nil, errors.Conflict("Phone number already in use")
		}
		user.Phone = input.Phone
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		log.Printf("UpdateProfile Error: failed to update user %s: %v", userID, err)
		return nil, err
	}

	return user, nil
}

// ResolveProfile populates a ProfileContext from the profile store. It is
// the single writer for the context: called when the session is first
// established and again on every auth-state change.
func (uc *UserUseCase) ResolveProfile(ctx context.Context, pc *ProfileContext, userID string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		pc.Clear()
		return err
	}

	pc.Set(user)
	return nil
}
