package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	repo "petshop/internal/repository"
	"petshop/internal/validator"
)

type ProfileUsecase struct {
	tx     repo.TransactionManager
	users  repo.UserRepository
	hasher PasswordHasher
	clock  Clock
}

func NewProfileUsecase(tx repo.TransactionManager, users repo.UserRepository, hasher PasswordHasher, clock Clock) *ProfileUsecase {
	return &ProfileUsecase{tx: tx, users: users, hasher: hasher, clock: clock}
}

type EditProfileInput struct {
	FullName string
	Phone    string
	Address  string
}

type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

func (u *ProfileUsecase) Get(ctx context.Context, userID string) (UserOutput, error) {
	if userID == "" {
		return UserOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return UserOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ToUserOutput(*user), nil
}

func (u *ProfileUsecase) Edit(ctx context.Context, userID string, in EditProfileInput) (UserOutput, error) {
	if userID == "" {
		return UserOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)

	err := validator.New().
		Required("full_name", in.FullName).
		MaxLen("full_name", in.FullName, 255).
		Phone("phone", in.Phone).
		MaxLen("address", in.Address, 500).
		Err()
	if err != nil {
		return UserOutput{}, validationError(err)
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return UserOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.FullName = in.FullName
	user.Phone = in.Phone
	user.Address = in.Address
	user.UpdatedAt = u.clock.Now()
	if err := u.users.Update(ctx, user); err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ToUserOutput(*user), nil
}

// ChangePassword revokes every session except currentSessionID, so other
// devices have to sign in again.
func (u *ProfileUsecase) ChangePassword(ctx context.Context, userID string, currentSessionID string, in ChangePasswordInput) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	err := validator.New().
		Required("old_password", in.OldPassword).
		Password("new_password", in.NewPassword).
		Matches("confirm_password", in.ConfirmPassword, in.NewPassword).
		Err()
	if err != nil {
		return validationError(err)
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !u.hasher.Verify(in.OldPassword, user.PasswordHash) {
			return &HTTPError{Status: http.StatusBadRequest, Message: "validation error", Fields: validator.Errors{"old_password": "is incorrect"}}
		}

		hash, err := u.hasher.Hash(in.NewPassword)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		now := u.clock.Now()
		user.PasswordHash = hash
		user.UpdatedAt = now
		if err := r.Users().Update(ctx, user); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Sessions().RevokeAllByUserID(ctx, userID, currentSessionID, now); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}
