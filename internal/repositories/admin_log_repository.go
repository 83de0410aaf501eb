package repositories

import (
	"context"

	"github.com/anonto42/celebration-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminLogRepository stores the append-only admin action log
type AdminLogRepository interface {
	CreateLog(ctx context.Context, entry *models.AdminActionLog) error
	LatestForTarget(ctx context.Context, targetUserID uint) (*models.AdminActionLog, error)
	Recent(ctx context.Context, limit int) ([]models.AdminActionLog, error)
}

type gormAdminLogRepository struct {
	db *gorm.DB
}

func NewGormAdminLogRepository(db *gorm.DB) AdminLogRepository {
	return &gormAdminLogRepository{db: db}
}

func (r *gormAdminLogRepository) CreateLog(ctx context.Context, entry *models.AdminActionLog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}

func (r *gormAdminLogRepository) LatestForTarget(ctx context.Context, targetUserID uint) (*models.AdminActionLog, error) {
	var entry models.AdminActionLog
	err := r.db.WithContext(ctx).Where("target_user_id = ?", targetUserID).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *gormAdminLogRepository) Recent(ctx context.Context, limit int) ([]models.AdminActionLog, error) {
	var entries []models.AdminActionLog
	q := r.db.WithContext(ctx).Preload("Admin").Preload("TargetUser").Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}
