package service

import (
	"strings"

	"github.com/avesovich/reporting-with-rss-news/internal/auth"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/policy"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
	"github.com/avesovich/reporting-with-rss-news/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateUserInput carries a new account.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserInput carries account changes. An empty Password leaves the
// stored hash untouched.
type UpdateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserListing is one page of accounts.
type UserListing struct {
	Users    []*model.User `json:"users"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// AuthResult is a successful login: the actor plus a signed token.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// UserService handles authentication and admin-only account management.
type UserService interface {
	Authenticate(email, password string) (*AuthResult, error)
	List(actor *policy.Actor, search, role string, page int) (*UserListing, error)
	Create(actor *policy.Actor, in *CreateUserInput) (*model.User, error)
	Update(actor *policy.Actor, id string, in *UpdateUserInput) (*model.User, error)
	// Delete removes an account. Administrators cannot delete their own.
	Delete(actor *policy.Actor, id string) error
}

type userService struct {
	users  repository.UserRepository
	policy *policy.Policy
	oracle *auth.DBRoleOracle
	tokens *auth.TokenIssuer
	logger *logrus.Logger
}

// NewUserService creates the service. oracle is invalidated on role
// changes so policy checks see them promptly.
func NewUserService(
	users repository.UserRepository,
	pol *policy.Policy,
	oracle *auth.DBRoleOracle,
	tokens *auth.TokenIssuer,
	logger *logrus.Logger,
) UserService {
	return &userService{
		users:  users,
		policy: pol,
		oracle: oracle,
		tokens: tokens,
		logger: logger,
	}
}

func (s *userService) Authenticate(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, model.ErrForbidden
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if err == model.ErrNotFound {
			// Same denial for unknown email and wrong password.
			return nil, model.ErrForbidden
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, model.ErrForbidden
	}

	token, err := s.tokens.Issue(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user authenticated")

	return &AuthResult{User: user, Token: token}, nil
}

func (s *userService) List(actor *policy.Actor, search, role string, page int) (*UserListing, error) {
	if err := s.policy.CanManageUsers(actor.ID); err != nil {
		return nil, err
	}
	if role != "" && !model.IsValidRole(role) {
		return nil, model.NewValidationError("role", "unknown role")
	}

	users, total, err := s.users.List(&repository.UserFilter{
		Search:   search,
		Role:     role,
		Page:     page,
		PageSize: ArticlePageSize,
	})
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	return &UserListing{Users: users, Total: total, Page: page, PageSize: ArticlePageSize}, nil
}

func (s *userService) validateAccount(name, email, password, role string, passwordRequired bool, excludeID string) (map[string]string, error) {
	fields := map[string]string{}
	if !utils.RequiredText(name, 255) {
		fields["name"] = "required, at most 255 characters"
	}
	if !utils.RequiredText(email, 255) || !strings.Contains(email, "@") {
		fields["email"] = "must be a valid email address"
	}
	if passwordRequired || password != "" {
		if len(password) < auth.MinPasswordLength {
			fields["password"] = "must be at least 8 characters"
		}
	}
	if !model.IsValidRole(role) {
		fields["role"] = "unknown role"
	}

	if _, ok := fields["email"]; !ok {
		taken, err := s.users.EmailTaken(email, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			fields["email"] = "already in use"
		}
	}
	return fields, nil
}

func (s *userService) Create(actor *policy.Actor, in *CreateUserInput) (*model.User, error) {
	if err := s.policy.CanManageUsers(actor.ID); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	fields, err := s.validateAccount(in.Name, email, in.Password, in.Role, true, "")
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
		"by":      actor.ID,
	}).Info("user account created")

	return user, nil
}

func (s *userService) Update(actor *policy.Actor, id string, in *UpdateUserInput) (*model.User, error) {
	if err := s.policy.CanManageUsers(actor.ID); err != nil {
		return nil, err
	}
	if !utils.ValidateID(id) {
		return nil, model.ErrNotFound
	}

	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	fields, err := s.validateAccount(in.Name, email, in.Password, in.Role, false, user.ID)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Email = email
	user.Role = in.Role
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	s.oracle.Invalidate(user.ID)

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"by":      actor.ID,
	}).Info("user account updated")

	return user, nil
}

func (s *userService) Delete(actor *policy.Actor, id string) error {
	if err := s.policy.CanManageUsers(actor.ID); err != nil {
		return err
	}
	if !utils.ValidateID(id) {
		return model.ErrNotFound
	}
	if id == actor.ID {
		// An administrator removing their own account would orphan the
		// instance; rejected outright.
		return model.ErrForbidden
	}

	if err := s.users.Delete(id); err != nil {
		return err
	}
	s.oracle.Invalidate(id)

	s.logger.WithFields(logrus.Fields{
		"user_id": id,
		"by":      actor.ID,
	}).Info("user account deleted")

	return nil
}
