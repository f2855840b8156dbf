package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"oficina-backend/models"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserInput struct {
	Name       string
	Email      string
	Role       string
	Department string
	Password   string
	Status     string
}

// LoginResult is returned on a successful login. The user never carries the
// password hash when serialized.
type LoginResult struct {
	User         models.User `json:"usuario"`
	WorkshopName string      `json:"oficina_nome"`
	Token        string      `json:"token,omitempty"`
}

type UserService struct {
	db     *gorm.DB
	log    *zap.Logger
	issuer *utils.TokenIssuer
	now    func() time.Time
}

// NewUserService wires credential checks. issuer may be nil, in which case
// logins succeed without a token.
func NewUserService(db *gorm.DB, log *zap.Logger, issuer *utils.TokenIssuer) *UserService {
	return &UserService{db: db, log: log, issuer: issuer, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) List(ctx context.Context, tenantID uuid.UUID) ([]models.User, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := t.Model(ctx, &models.User{}).Order("name").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// emailTaken checks uniqueness across every workshop since email is the
// login key.
func (s *UserService) emailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

func (s *UserService) Create(ctx context.Context, tenantID uuid.UUID, in UserInput) (*models.User, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	name, email := strings.TrimSpace(in.Name), normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, utils.ValidationError("name, email and password are required")
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if taken, err := s.emailTaken(ctx, email, uuid.Nil); err != nil {
		return nil, err
	} else if taken {
		return nil, utils.ConflictError("email already registered")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:       name,
		Email:      email,
		Role:       in.Role,
		Department: in.Department,
		Password:   hash,
		Status:     status,
	}
	if err := t.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Update replaces the profile fields. The password is re-hashed only when a
// new one is given.
func (s *UserService) Update(ctx context.Context, tenantID, id uuid.UUID, in UserInput) (*models.User, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := t.First(ctx, &user, id); err != nil {
		return nil, notFoundOr(err, "user")
	}

	name, email := strings.TrimSpace(in.Name), normalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, utils.ValidationError("name and email are required")
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if taken, err := s.emailTaken(ctx, email, id); err != nil {
		return nil, err
	} else if taken {
		return nil, utils.ConflictError("email already registered")
	}

	user.Name = name
	user.Email = email
	user.Role = in.Role
	user.Department = in.Department
	user.Status = status
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hash
	}
	if err := t.Save(ctx, &user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return err
	}
	res := t.Model(ctx, &models.User{}).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFoundError("user not found")
	}
	return nil
}

// Login checks the credentials of an active user. Unknown or inactive emails
// are NotFound; a wrong password is Unauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.ValidationError("email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND status = ?", email, models.StatusActive).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, utils.UnauthorizedError("incorrect password")
	}

	result := &LoginResult{User: user}
	var workshop models.Workshop
	if err := s.db.WithContext(ctx).First(&workshop, "id = ?", user.TenantID).Error; err == nil {
		result.WorkshopName = workshop.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find workshop: %w", err)
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("last_login", now).Error; err != nil {
		s.log.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		result.User.LastLogin = &now
	}

	if s.issuer != nil {
		token, err := s.issuer.GenerateToken(user.ID.String(), user.TenantID.String())
		if err != nil && !errors.Is(err, utils.ErrMissingSecret) {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		result.Token = token
	}
	return result, nil
}

// HashStoredPasswords bcrypt-hashes every stored password that is not a hash
// yet and returns how many were converted.
func (s *UserService) HashStoredPasswords(ctx context.Context) (int, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return 0, fmt.Errorf("load users: %w", err)
	}
	converted := 0
	for _, u := range users {
		if u.Password == "" || utils.IsPasswordHashed(u.Password) {
			continue
		}
		hash, err := utils.HashPassword(u.Password)
		if err != nil {
			return converted, fmt.Errorf("hash password of %s: %w", u.Email, err)
		}
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", u.ID).
			Update("password", hash).Error; err != nil {
			return converted, fmt.Errorf("store password of %s: %w", u.Email, err)
		}
		converted++
	}
	return converted, nil
}
