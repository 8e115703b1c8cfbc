package storage

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const itemColumns = `id, owner_id, title, description, category, attributes, status, created_at, expires_at`

// UpsertItem inserts or replaces a catalog item.
func (s *SQLiteStorage) UpsertItem(ctx context.Context, item Item) error {
	return s.UpsertItems(ctx, []Item{item})
}

// UpsertItems inserts or replaces items in one transaction.
func (s *SQLiteStorage) UpsertItems(ctx context.Context, items []Item) error {
	if !s.Enabled() || len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			attributes = excluded.attributes,
			status = excluded.status,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("item id is required")
		}
		if item.Status == "" {
			item.Status = StatusActive
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}

		attrs, err := encodeMap(item.Attributes)
		if err != nil {
			return fmt.Errorf("failed to encode attributes for %s: %w", item.ID, err)
		}

		var expires any
		if item.ExpiresAt != nil {
			expires = formatTime(*item.ExpiresAt)
		}

		if _, err := stmt.ExecContext(ctx,
			item.ID,
			item.OwnerID,
			item.Title,
			item.Description,
			item.Category,
			attrs,
			item.Status,
			formatTime(item.CreatedAt),
			expires,
		); err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit items: %w", err)
	}
	return nil
}

// DeleteItem removes an item by id.
func (s *SQLiteStorage) DeleteItem(ctx context.Context, id string) error {
	if !s.Enabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}

// FindItems returns items matching filter in the given order. A limit of zero
// means no limit.
func (s *SQLiteStorage) FindItems(ctx context.Context, filter ItemFilter, order Order, limit int) ([]Item, error) {
	if !s.Enabled() {
		return []Item{}, nil
	}
	if filter.IDIn != nil && len(filter.IDIn) == 0 {
		return []Item{}, nil
	}

	query, args := buildItemQuery(filter, order, limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	return items, nil
}

// buildItemQuery renders filter as a parameterised SELECT.
func buildItemQuery(f ItemFilter, order Order, limit int) (string, []any) {
	var where []string
	var args []any

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if !f.ActiveAt.IsZero() {
		where = append(where, "(expires_at IS NULL OR expires_at > ?)")
		args = append(args, formatTime(f.ActiveAt))
	}
	if f.OwnerNot != "" {
		where = append(where, "owner_id <> ?")
		args = append(args, f.OwnerNot)
	}
	if len(f.IDIn) > 0 {
		where = append(where, "id IN ("+placeholders(len(f.IDIn))+")")
		args = appendStrings(args, f.IDIn)
	}
	if len(f.IDNotIn) > 0 {
		where = append(where, "id NOT IN ("+placeholders(len(f.IDNotIn))+")")
		args = appendStrings(args, f.IDNotIn)
	}
	for _, key := range sortedKeys(f.AttributeEquals) {
		where = append(where, "json_extract(attributes, ?) = ?")
		args = append(args, attributePath(key), f.AttributeEquals[key])
	}

	var interest []string
	if len(f.CategoryIn) > 0 {
		interest = append(interest, "category IN ("+placeholders(len(f.CategoryIn))+")")
		args = appendStrings(args, f.CategoryIn)
	}
	for _, term := range f.TextContains {
		pattern := "%" + escapeLike(term) + "%"
		interest = append(interest, `title LIKE ? ESCAPE '\'`, `description LIKE ? ESCAPE '\'`)
		args = append(args, pattern, pattern)
	}
	if len(interest) > 0 {
		where = append(where, "("+strings.Join(interest, " OR ")+")")
	}

	var b strings.Builder
	b.WriteString("SELECT " + itemColumns + " FROM items")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	switch order {
	case OrderOldest:
		b.WriteString(" ORDER BY created_at ASC, id ASC")
	default:
		b.WriteString(" ORDER BY created_at DESC, id ASC")
	}
	if limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	return b.String(), args
}

func scanItem(rows *sql.Rows) (Item, error) {
	var item Item
	var attrs, created string
	var expires sql.NullString

	if err := rows.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Title,
		&item.Description,
		&item.Category,
		&attrs,
		&item.Status,
		&created,
		&expires,
	); err != nil {
		return Item{}, fmt.Errorf("failed to scan item: %w", err)
	}

	var err error
	if item.CreatedAt, err = parseTime(created); err != nil {
		return Item{}, fmt.Errorf("item %s: bad created_at: %w", item.ID, err)
	}
	if expires.Valid {
		t, err := parseTime(expires.String)
		if err != nil {
			return Item{}, fmt.Errorf("item %s: bad expires_at: %w", item.ID, err)
		}
		item.ExpiresAt = &t
	}
	if item.Attributes, err = decodeMap(attrs); err != nil {
		return Item{}, fmt.Errorf("item %s: bad attributes: %w", item.ID, err)
	}

	return item, nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func appendStrings(args []any, values []string) []any {
	for _, v := range values {
		args = append(args, v)
	}
	return args
}

// attributePath quotes key as a JSON path member.
func attributePath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, "") + `"`
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func encodeMap(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMap(s string) (map[string]string, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	m := make(map[string]string)
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}
