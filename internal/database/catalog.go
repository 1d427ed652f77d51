package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSnakeNotFound = errors.New("snake not found")
	ErrSnakeExists   = errors.New("snake already exists")
)

// SnakeUpdate holds the fields of a partial catalog update. Nil fields are
// left unchanged.
type SnakeUpdate struct {
	Image       *string
	Description *string
	Endemism    *string
	WikiLink    *string
}

func (u SnakeUpdate) columns() map[string]any {
	updates := map[string]any{}
	if u.Image != nil {
		updates["image"] = *u.Image
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Endemism != nil {
		updates["endemism"] = *u.Endemism
	}
	if u.WikiLink != nil {
		updates["wiki_link"] = *u.WikiLink
	}
	return updates
}

type SnakeFilter struct {
	Endemism string
	Limit    int
	Offset   int
}

func CreateSnake(ctx context.Context, db *gorm.DB, snake Snake) (Snake, error) {
	if snake.Id == uuid.Nil {
		snake.Id = uuid.New()
	}

	if err := db.WithContext(ctx).Create(&snake).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Snake{}, ErrSnakeExists
		}
		return Snake{}, fmt.Errorf("error creating snake: %w", err)
	}

	return snake, nil
}

func FindSnakeByName(ctx context.Context, db *gorm.DB, name string) (Snake, error) {
	var snake Snake
	if err := db.WithContext(ctx).Where("name = ?", name).First(&snake).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snake{}, ErrSnakeNotFound
		}
		return Snake{}, fmt.Errorf("error loading snake %q: %w", name, err)
	}
	return snake, nil
}

func UpdateSnake(ctx context.Context, db *gorm.DB, name string, update SnakeUpdate) error {
	return db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		var snake Snake
		if err := txn.Where("name = ?", name).First(&snake).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSnakeNotFound
			}
			return fmt.Errorf("error loading snake %q: %w", name, err)
		}

		columns := update.columns()
		if len(columns) == 0 {
			return nil
		}

		if err := txn.Model(&Snake{}).Where("id = ?", snake.Id).Updates(columns).Error; err != nil {
			return fmt.Errorf("error updating snake %q: %w", name, err)
		}
		return nil
	})
}

func DeleteSnake(ctx context.Context, db *gorm.DB, name string) error {
	result := db.WithContext(ctx).Where("name = ?", name).Delete(&Snake{})
	if result.Error != nil {
		return fmt.Errorf("error deleting snake %q: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSnakeNotFound
	}
	return nil
}

func ListSnakes(ctx context.Context, db *gorm.DB, filter SnakeFilter) ([]Snake, error) {
	query := db.WithContext(ctx).Model(&Snake{}).Order("name ASC")
	if filter.Endemism != "" {
		query = query.Where("endemism = ?", filter.Endemism)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var snakes []Snake
	if err := query.Find(&snakes).Error; err != nil {
		return nil, fmt.Errorf("error listing snakes: %w", err)
	}
	return snakes, nil
}

// SeedSnakes inserts a name-only entry for every name not already present.
// It returns the number of entries created.
func SeedSnakes(ctx context.Context, db *gorm.DB, names []string) (int, error) {
	created := 0
	for _, name := range names {
		_, err := CreateSnake(ctx, db, Snake{Name: name})
		if errors.Is(err, ErrSnakeExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("error seeding snake %q: %w", name, err)
		}
		created++
	}
	return created, nil
}
