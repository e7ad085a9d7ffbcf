package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"
	"petshop/internal/validator"
)

type AdminUserUsecase struct {
	tx     repo.TransactionManager
	users  repo.UserRepository
	hasher PasswordHasher
	ids    IDGenerator
	clock  Clock
}

func NewAdminUserUsecase(tx repo.TransactionManager, users repo.UserRepository, hasher PasswordHasher, ids IDGenerator, clock Clock) *AdminUserUsecase {
	return &AdminUserUsecase{tx: tx, users: users, hasher: hasher, ids: ids, clock: clock}
}

type UserListOutput struct {
	Items []UserOutput `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type AdminCreateUserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
	RoleID   string
	IsActive bool
}

type AdminUpdateUserInput struct {
	Email    string
	FullName string
	Phone    string
	Address  string
	RoleID   string
	IsActive bool
}

func (u *AdminUserUsecase) List(ctx context.Context, role string, q string, page int) (UserListOutput, error) {
	if page < 1 {
		page = 1
	}
	f := repo.UserListFilter{Q: strings.TrimSpace(q), Page: page, Limit: 20}
	if role != "" {
		r := model.Role(role)
		if !r.Valid() {
			return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
		f.Role = &r
	}

	users, total, err := u.users.List(ctx, f)
	if err != nil {
		return UserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := UserListOutput{Items: make([]UserOutput, 0, len(users)), Total: total, Page: f.Page, Limit: f.Limit}
	for _, usr := range users {
		out.Items = append(out.Items, ToUserOutput(usr))
	}
	return out, nil
}

func (u *AdminUserUsecase) Create(ctx context.Context, in AdminCreateUserInput) (UserOutput, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.RoleID == "" {
		in.RoleID = string(model.RoleCustomer)
	}

	err := validator.New().
		Username("username", in.Username).
		Email("email", in.Email).
		Password("password", in.Password).
		MaxLen("full_name", in.FullName, 255).
		Phone("phone", in.Phone).
		MaxLen("address", in.Address, 500).
		Check(model.Role(in.RoleID).Valid(), "role_id", "is not a known role").
		Err()
	if err != nil {
		return UserOutput{}, validationError(err)
	}

	if err := ensureUnique(ctx, u.users, in.Username, in.Email); err != nil {
		return UserOutput{}, err
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.ids.NewID(model.IDPrefixUser),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		RoleID:       model.Role(in.RoleID),
		IsActive:     in.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return UserOutput{}, NewHTTPError(http.StatusConflict, "username or email already exists")
		}
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ToUserOutput(*user), nil
}

type userAuditView struct {
	RoleID   model.Role `json:"role_id"`
	IsActive bool       `json:"is_active"`
	Email    string     `json:"email"`
}

// Update edits a user. Changing role or active state signs the user out everywhere.
func (u *AdminUserUsecase) Update(ctx context.Context, actorUserID string, userID string, in AdminUpdateUserInput) (UserOutput, error) {
	if actorUserID == "" {
		return UserOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	err := validator.New().
		Email("email", in.Email).
		MaxLen("full_name", in.FullName, 255).
		Phone("phone", in.Phone).
		MaxLen("address", in.Address, 500).
		Check(model.Role(in.RoleID).Valid(), "role_id", "is not a known role").
		Err()
	if err != nil {
		return UserOutput{}, validationError(err)
	}
	if actorUserID == userID && (model.Role(in.RoleID) != model.RoleAdmin || !in.IsActive) {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "cannot demote or deactivate yourself")
	}

	var out UserOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if in.Email != user.Email {
			taken, err := r.Users().EmailExists(ctx, in.Email)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if taken {
				return NewHTTPError(http.StatusConflict, "email already exists")
			}
		}

		before, _ := json.Marshal(userAuditView{RoleID: user.RoleID, IsActive: user.IsActive, Email: user.Email})
		signOut := user.RoleID != model.Role(in.RoleID) || user.IsActive != in.IsActive

		now := u.clock.Now()
		user.Email = in.Email
		user.FullName = in.FullName
		user.Phone = strings.TrimSpace(in.Phone)
		user.Address = strings.TrimSpace(in.Address)
		user.RoleID = model.Role(in.RoleID)
		user.IsActive = in.IsActive
		user.UpdatedAt = now
		if signOut {
			user.TokenVersion++
		}

		if err := r.Users().Update(ctx, user); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return NewHTTPError(http.StatusConflict, "email already exists")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if signOut {
			if err := r.Sessions().RevokeAllByUserID(ctx, user.ID, "", now); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		after, _ := json.Marshal(userAuditView{RoleID: user.RoleID, IsActive: user.IsActive, Email: user.Email})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateUser,
			ResourceType: model.AuditResourceUser,
			ResourceID:   user.ID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = ToUserOutput(*user)
		return nil
	})
	if err != nil {
		return UserOutput{}, err
	}
	return out, nil
}

func ensureUnique(ctx context.Context, users repo.UserRepository, username, email string) error {
	taken, err := users.UsernameExists(ctx, username)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if taken {
		return &HTTPError{Status: http.StatusConflict, Message: "username already exists", Fields: validator.Errors{"username": "is already taken"}}
	}

	taken, err = users.EmailExists(ctx, email)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if taken {
		return &HTTPError{Status: http.StatusConflict, Message: "email already exists", Fields: validator.Errors{"email": "is already taken"}}
	}
	return nil
}
