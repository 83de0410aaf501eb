package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/validators"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SuperAdminUsername is the username given to the seeded super-admin.
const SuperAdminUsername = "superadmin"

// RegisterInput is what a new account is created from.
type RegisterInput struct {
	Username   string `form:"username" validate:"required,min=4,max=20"`
	Email      string `form:"email" validate:"required,email,max=120"`
	Department string `form:"department" validate:"required,department"`
	JobTitle   string `form:"job_title" validate:"required,max=100"`
	Password   string `form:"password" validate:"required,max=72,password_policy"`
	Confirm    string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// CreateUser registers a new account with a bcrypt digest of the password.
// Username collisions are reported before email collisions.
func (b *Board) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Department = strings.TrimSpace(in.Department)
	in.JobTitle = strings.TrimSpace(in.JobTitle)

	fields := validators.FieldErrors(b.validate.Validate(in))
	if fields == nil {
		fields = map[string]string{}
	}
	if _, bad := fields["password"]; !bad && validators.PasswordContainsUsername(in.Password, in.Username) {
		fields["password"] = "Password cannot contain username"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := b.checkDuplicates(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), b.settings.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Department:   in.Department,
		JobTitle:     in.JobTitle,
		PasswordHash: string(hash),
	}
	if err := b.repos.Users.CreateUser(ctx, user); err != nil {
		// a concurrent registration may have won the unique index
		if dupErr := b.checkDuplicates(ctx, in.Username, in.Email); dupErr != nil {
			return nil, dupErr
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	b.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (b *Board) checkDuplicates(ctx context.Context, username, email string) error {
	taken, err := b.repos.Users.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return ErrDuplicateUsername
	}
	taken, err = b.repos.Users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrDuplicateEmail
	}
	return nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// VerifyCredentials returns the user whose password matches. Unknown users and
// wrong passwords both yield ErrAuthentication after a bcrypt comparison.
func (b *Board) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := b.repos.Users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load user: %w", err)
		}
		dummyHashOnce.Do(func() {
			dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), b.settings.BcryptCost)
		})
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrAuthentication
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthentication
	}
	return user, nil
}

// GetUser loads a user by id.
func (b *Board) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := b.repos.Users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// ListUsers returns every account; admins only.
func (b *Board) ListUsers(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := b.policy.Authorize(actor, ActionListUsers, nil); err != nil {
		return nil, err
	}
	var users []models.User
	err := retryRead(ctx, func() (err error) {
		users, err = b.repos.Users.GetUsers(ctx)
		return err
	})
	return users, err
}

// EnsureSuperAdmin seeds the configured super-admin account if it does not exist
// and makes sure an existing one carries the admin flag.
func (b *Board) EnsureSuperAdmin(ctx context.Context) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(b.settings.SuperAdminEmail))
	if email == "" {
		b.logger.Warn("SUPER_ADMIN_EMAIL is not set; no super admin will be seeded")
		return nil, nil
	}

	existing, err := b.repos.Users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if err := b.repos.Users.SetAdmin(ctx, existing.ID, true, nil); err != nil {
				return nil, fmt.Errorf("restore super admin flag: %w", err)
			}
			existing.IsAdmin = true
		}
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("look up super admin: %w", err)
	}

	if b.settings.AdminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD is required to seed the super admin account")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(b.settings.AdminPassword), b.settings.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		Username:     SuperAdminUsername,
		Email:        email,
		Department:   models.SuperAdminDepartment,
		JobTitle:     "Super Administrator",
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := b.repos.Users.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("seed super admin: %w", err)
	}
	b.logger.Info("super admin seeded", "user_id", admin.ID, "email", admin.Email)
	return admin, nil
}
