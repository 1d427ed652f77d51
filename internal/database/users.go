package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email is already registered")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash string) (User, error) {
	user := User{
		Id:           uuid.New(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		CreationTime: time.Now().UTC(),
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (User, error) {
	var user User
	if err := db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

func UpdatePasswordHash(ctx context.Context, db *gorm.DB, userId uuid.UUID, passwordHash string) error {
	result := db.WithContext(ctx).Model(&User{}).Where("id = ?", userId).Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("error updating password for user %s: %w", userId, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
