package db

import (
	"context"

	"github.com/medlembra/medlembra/internal/models"
	"gorm.io/gorm"
)

type FamilyRepository struct {
	database *gorm.DB
}

func NewFamilyRepository(database *gorm.DB) *FamilyRepository {
	return &FamilyRepository{database: database}
}

func (repo *FamilyRepository) withParticipants(ctx context.Context) *gorm.DB {
	return repo.database.WithContext(ctx).Preload("Requester").Preload("Requested")
}

func (repo *FamilyRepository) ListAcceptedForUser(ctx context.Context, userID string) ([]models.FamilyConnection, error) {
	connections := make([]models.FamilyConnection, 0)
	err := repo.withParticipants(ctx).
		Where("(requester_id = ? OR requested_id = ?) AND status = ?", userID, userID, models.ConnectionAccepted).
		Order("created_at DESC").
		Find(&connections).Error
	if err != nil {
		return nil, err
	}
	return connections, nil
}

func (repo *FamilyRepository) ListPendingForRequested(ctx context.Context, userID string) ([]models.FamilyConnection, error) {
	connections := make([]models.FamilyConnection, 0)
	err := repo.withParticipants(ctx).
		Where("requested_id = ? AND status = ?", userID, models.ConnectionPending).
		Order("created_at DESC").
		Find(&connections).Error
	if err != nil {
		return nil, err
	}
	return connections, nil
}

func (repo *FamilyRepository) FindByID(ctx context.Context, connectionID string) (models.FamilyConnection, bool, error) {
	var connection models.FamilyConnection
	result := repo.withParticipants(ctx).Where("id = ?", connectionID).Limit(1).Find(&connection)
	if result.Error != nil {
		return models.FamilyConnection{}, false, result.Error
	}
	return connection, result.RowsAffected > 0, nil
}

// FindBetween matches the pair in either direction and any status.
func (repo *FamilyRepository) FindBetween(ctx context.Context, firstUserID string, secondUserID string) (models.FamilyConnection, bool, error) {
	var connection models.FamilyConnection
	result := repo.database.WithContext(ctx).
		Where("(requester_id = ? AND requested_id = ?) OR (requester_id = ? AND requested_id = ?)",
			firstUserID, secondUserID, secondUserID, firstUserID).
		Limit(1).
		Find(&connection)
	if result.Error != nil {
		return models.FamilyConnection{}, false, result.Error
	}
	return connection, result.RowsAffected > 0, nil
}

func (repo *FamilyRepository) Create(ctx context.Context, connection *models.FamilyConnection) error {
	return repo.database.WithContext(ctx).Create(connection).Error
}

func (repo *FamilyRepository) UpdateByID(ctx context.Context, connectionID string, updates map[string]any) error {
	return repo.database.WithContext(ctx).
		Model(&models.FamilyConnection{}).
		Where("id = ?", connectionID).
		Updates(updates).Error
}

func (repo *FamilyRepository) DeleteByID(ctx context.Context, connectionID string) error {
	return repo.database.WithContext(ctx).Where("id = ?", connectionID).Delete(&models.FamilyConnection{}).Error
}
