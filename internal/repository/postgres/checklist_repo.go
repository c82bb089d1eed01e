package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dom/tickify/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type checklistRepository struct {
	db *gorm.DB
}

func NewChecklistRepository(db *gorm.DB) *checklistRepository {
	return &checklistRepository{db: db}
}

func (r *checklistRepository) Create(ctx context.Context, item *domain.ChecklistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *checklistRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistItem, error) {
	var item domain.ChecklistItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *checklistRepository) List(ctx context.Context) ([]*domain.ChecklistItem, error) {
	var items []*domain.ChecklistItem
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *checklistRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.ChecklistItem, error) {
	var items []*domain.ChecklistItem
	err := r.db.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *checklistRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ItemPatch) (*domain.ChecklistItem, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if patch.Text != nil {
		updates["text"] = *patch.Text
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}

	result := r.db.WithContext(ctx).
		Model(&domain.ChecklistItem{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrItemNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *checklistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.ChecklistItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *checklistRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, int, error) {
	var counts struct {
		Total     int
		Completed int
	}
	err := r.db.WithContext(ctx).
		Model(&domain.ChecklistItem{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed").
		Where("created_by = ?", ownerID).
		Scan(&counts).Error
	if err != nil {
		return 0, 0, err
	}
	return counts.Total, counts.Completed, nil
}
