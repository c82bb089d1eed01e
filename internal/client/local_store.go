package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dom/tickify/internal/client/migrations"
	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/repository/sqlite"
	"github.com/jmoiron/sqlx"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const guestColumns = "id, text, completed, priority, created_at, updated_at"

// LocalStore keeps guest items in a SQLite file. Ids are millisecond
// timestamps, bumped so that they strictly increase.
type LocalStore struct {
	db  *sqlx.DB
	now func() time.Time

	mu     sync.Mutex
	lastID int64
}

// OpenLocalStore opens or creates the guest database at path. Use ":memory:"
// for a throwaway store.
func OpenLocalStore(ctx context.Context, path string) (*LocalStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := sqlite.OpenWithMigrations(ctx, path, migrations.Migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("open guest store: %w", err)
	}

	store := &LocalStore{db: db, now: time.Now}

	var last sql.NullInt64
	if err := db.GetContext(ctx, &last, "SELECT MAX(CAST(id AS INTEGER)) FROM guest_items"); err != nil {
		db.Close()
		return nil, fmt.Errorf("read last id: %w", err)
	}
	store.lastID = last.Int64

	return store, nil
}

func (s *LocalStore) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *LocalStore) List(ctx context.Context) ([]Item, error) {
	query, args, err := builder.Select(guestColumns).
		From("guest_items").
		OrderBy("CAST(id AS INTEGER) DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	items := []Item{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list guest items: %w", err)
	}
	return items, nil
}

func (s *LocalStore) get(ctx context.Context, id string) (*Item, error) {
	query, args, err := builder.Select(guestColumns).
		From("guest_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var item Item
	if err := s.db.GetContext(ctx, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("get guest item: %w", err)
	}
	return &item, nil
}

func (s *LocalStore) Add(ctx context.Context, input NewItem) (*Item, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, domain.NewValidationError("text", "Text field is required!")
	}
	priority, err := domain.ParsePriority(string(input.Priority))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item := &Item{
		ID:        s.nextID(),
		Text:      text,
		Completed: input.Completed,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query, args, err := builder.Insert("guest_items").
		Columns("id", "text", "completed", "priority", "created_at", "updated_at").
		Values(item.ID, item.Text, item.Completed, item.Priority, item.CreatedAt, item.UpdatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert guest item: %w", err)
	}
	return item, nil
}

// Update merges patch into the item. An empty patch returns it unchanged.
func (s *LocalStore) Update(ctx context.Context, id string, patch domain.ItemPatch) (*Item, error) {
	item, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return item, nil
	}

	update := builder.Update("guest_items").
		Set("updated_at", s.now().UTC()).
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
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update guest item: %w", err)
	}
	return s.get(ctx, id)
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	query, args, err := builder.Delete("guest_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete guest item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}
