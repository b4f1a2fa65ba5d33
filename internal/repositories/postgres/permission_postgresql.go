package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"gorm.io/gorm"
)

type PermissionPostgreSQL struct {
	db *gorm.DB
}

func NewPermissionPostgreSQL(db *gorm.DB) repositories.PermissionRepository {
	return &PermissionPostgreSQL{db: db}
}

func (p *PermissionPostgreSQL) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := p.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListForRole returns the live grants of a role
func (p *PermissionPostgreSQL) ListForRole(ctx context.Context, roleID string) ([]models.Permission, error) {
	var permissions []models.Permission
	if err := p.db.WithContext(ctx).Where("role_id = ?", roleID).Find(&permissions).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return permissions, nil
}
