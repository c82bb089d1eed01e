package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dom/tickify/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var itemColumns = []string{"id", "text", "completed", "priority", "created_by", "created_at", "updated_at"}

type checklistRepository struct {
	db *sqlx.DB
}

func NewChecklistRepository(db *sqlx.DB) *checklistRepository {
	return &checklistRepository{db: db}
}

func (r *checklistRepository) Create(ctx context.Context, item *domain.ChecklistItem) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	query, args, err := psql.Insert("checklist_items").
		Columns(itemColumns...).
		Values(item.ID, item.Text, item.Completed, item.Priority, item.CreatedBy, item.CreatedAt, item.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *checklistRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistItem, error) {
	query, args, err := psql.Select(itemColumns...).From("checklist_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var item domain.ChecklistItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

func (r *checklistRepository) List(ctx context.Context) ([]*domain.ChecklistItem, error) {
	return r.list(ctx, psql.Select(itemColumns...).From("checklist_items"))
}

func (r *checklistRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.ChecklistItem, error) {
	return r.list(ctx, psql.Select(itemColumns...).From("checklist_items").Where(sq.Eq{"created_by": ownerID}))
}

func (r *checklistRepository) list(ctx context.Context, builder sq.SelectBuilder) ([]*domain.ChecklistItem, error) {
	query, args, err := builder.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	items := []*domain.ChecklistItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *checklistRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ItemPatch) (*domain.ChecklistItem, error) {
	update := psql.Update("checklist_items").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})
	if patch.Text != nil {
		update = update.Set("text", *patch.Text)
	}
	if patch.Completed != nil {
		update = update.Set("completed", *patch.Completed)
	}
	if patch.Priority != nil {
		update = update.Set("priority", *patch.Priority)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if err := requireRow(result, domain.ErrItemNotFound); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *checklistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM checklist_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireRow(result, domain.ErrItemNotFound)
}

func (r *checklistRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, int, error) {
	var counts struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
	}
	err := r.db.GetContext(ctx, &counts,
		"SELECT COUNT(*) AS total, COALESCE(SUM(completed), 0) AS completed FROM checklist_items WHERE created_by = ?",
		ownerID)
	if err != nil {
		return 0, 0, fmt.Errorf("count items: %w", err)
	}
	return counts.Total, counts.Completed, nil
}
