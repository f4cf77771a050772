package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
)

type CreateUserInput struct {
	Email    string
	Password string
	Role     string
	TMCID    *uint
	Name     string
	Phone    string
}

type UpdateUserInput struct {
	Email string
	Role  string
	TMCID *uint
	Name  string
	Phone string
}

// UserView is a user row joined with its TMC name.
type UserView struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TMCID     *uint     `gorm:"column:tmc_id" json:"tmc_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	TMCName   *string   `gorm:"column:tmc_name" json:"tmc_name"`
}

// UserService manages accounts and checks credentials.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(ctx context.Context) ([]UserView, error) {
	users := []UserView{}
	err := s.db.WithContext(ctx).Table("users AS u").
		Select("u.id, u.email, u.role, u.tmc_id, u.name, u.phone, u.created_at, t.name AS tmc_name").
		Joins("LEFT JOIN tmc_centers t ON u.tmc_id = t.id").
		Order("u.created_at DESC").
		Scan(&users).Error
	if err != nil {
		return nil, apperrors.Internal(err, "could not list users")
	}
	return users, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}
	if in.Email == "" || in.Password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err, "could not hash password")
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		Role:         role,
		TMCID:        in.TMCID,
		Name:         in.Name,
		Phone:        in.Phone,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("email already in use")
		}
		return nil, apperrors.Internal(err, "could not create user")
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User created")
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, userID uint, in UpdateUserInput) (*models.User, error) {
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user %d not found", userID)
			}
			return apperrors.Internal(err, "could not load user")
		}
		err := tx.Model(&user).Updates(map[string]interface{}{
			"email":  strings.ToLower(strings.TrimSpace(in.Email)),
			"role":   role,
			"tmc_id": in.TMCID,
			"name":   in.Name,
			"phone":  in.Phone,
		}).Error
		if isUniqueViolation(err) {
			return apperrors.Conflict("email already in use")
		}
		if err != nil {
			return apperrors.Internal(err, "could not update user")
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Delete(ctx context.Context, userID uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, userID)
	if res.Error != nil {
		return apperrors.Internal(res.Error, "could not delete user")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user %d not found", userID)
	}
	return nil
}

// Authenticate checks an email/password pair. Both failure modes return the
// same unauthenticated error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, apperrors.Internal(err, "could not load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	return &user, nil
}

func normalizeRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !models.ValidRole(role) {
		return "", apperrors.Validation("invalid role %q", role)
	}
	return role, nil
}
