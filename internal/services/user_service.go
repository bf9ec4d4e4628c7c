package services

import (
	"errors"
	"time"

	"powerpay-gateway/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("account is not active")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("username or email already exists")
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Login verifies a username/password pair and stamps last_login.
func (s *UserService) Login(username, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Status != models.UserActive {
		return nil, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	s.DB.Model(&user).Update("last_login", now)
	user.LastLogin = &now
	return &user, nil
}

type CreateUserDTO struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	Role      string
	CreatedBy *uint
}

func (s *UserService) Create(dto CreateUserDTO) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:  dto.Username,
		Email:     dto.Email,
		Password:  string(hash),
		FullName:  dto.FullName,
		Role:      defaultString(dto.Role, models.RoleViewer),
		Status:    models.UserActive,
		CreatedBy: dto.CreatedBy,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) List(limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	var users []models.User
	err := s.DB.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, err
}

// ChangePassword rotates a user's password after verifying the current one.
func (s *UserService) ChangePassword(id uint, current, next string) error {
	user, err := s.FindByID(id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.DB.Model(user).Update("password", string(hash)).Error
}

// SetStatus activates, deactivates or suspends an account.
func (s *UserService) SetStatus(id uint, status string) error {
	user, err := s.FindByID(id)
	if err != nil {
		return err
	}
	return s.DB.Model(user).Update("status", status).Error
}
