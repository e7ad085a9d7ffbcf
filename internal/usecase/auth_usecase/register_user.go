package auth

import (
	"context"
	"errors"
	"strings"

	"petshop/internal/domain/model"
	"petshop/internal/repository"
	"petshop/internal/validator"
)

type RegisterUserInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Phone           string
}

type RegisterUserOutput struct {
	User model.User
}

// RegisterUserUsecase signs up customers. Staff and admins are created from the admin screens.
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	idGen    IDGenerator
	clock    Clock
}

func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		idGen:    idGen,
		clock:    clock,
	}
}

// Execute returns validator.Errors for bad input and ErrUsernameTaken or
// ErrEmailTaken for duplicates.
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := validator.New().
		Username("username", in.Username).
		Email("email", in.Email).
		Password("password", in.Password).
		Matches("confirm_password", in.ConfirmPassword, in.Password).
		MaxLen("full_name", in.FullName, 255).
		Phone("phone", in.Phone).
		Err(); err != nil {
		return out, err
	}

	taken, err := u.userRepo.UsernameExists(ctx, in.Username)
	if err != nil {
		return out, err
	}
	if taken {
		return out, ErrUsernameTaken
	}
	taken, err = u.userRepo.EmailExists(ctx, in.Email)
	if err != nil {
		return out, err
	}
	if taken {
		return out, ErrEmailTaken
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(model.IDPrefixUser),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		FullName:     in.FullName,
		Phone:        in.Phone,
		RoleID:       model.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		// lost a race with another sign up
		if errors.Is(err, repository.ErrConflict) {
			return out, ErrUsernameTaken
		}
		return out, err
	}

	safe := *user
	safe.PasswordHash = ""
	out.User = safe
	return out, nil
}
