package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/goliatone/go-formfields/components/choices"
)

// TableSource pulls choice options from an arbitrary table, for example
// posts, terms or users. Column names come from trusted configuration and
// are quoted by GORM.
type TableSource struct {
	db          *gorm.DB
	table       string
	valueColumn string
	labelColumn string
	where       string
	whereArgs   []any
	limit       int
}

var _ choices.Source = (*TableSource)(nil)

// TableOption customises a TableSource.
type TableOption func(*TableSource)

// WithWhere restricts the rows considered, e.g. WithWhere("status = ?", "publish").
func WithWhere(query string, args ...any) TableOption {
	return func(s *TableSource) {
		s.where = strings.TrimSpace(query)
		s.whereArgs = append([]any(nil), args...)
	}
}

// WithLimit caps the number of rows loaded.
func WithLimit(limit int) TableOption {
	return func(s *TableSource) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// NewTableSource builds a choices source reading value/label pairs.
func NewTableSource(db *gorm.DB, table, valueColumn, labelColumn string, opts ...TableOption) (*TableSource, error) {
	if db == nil {
		return nil, errors.New("sqlstore: db is required")
	}
	src := &TableSource{
		db:          db,
		table:       strings.TrimSpace(table),
		valueColumn: strings.TrimSpace(valueColumn),
		labelColumn: strings.TrimSpace(labelColumn),
	}
	if src.table == "" || src.valueColumn == "" {
		return nil, errors.New("sqlstore: table and value column are required")
	}
	if src.labelColumn == "" {
		src.labelColumn = src.valueColumn
	}
	for _, opt := range opts {
		if opt != nil {
			opt(src)
		}
	}
	return src, nil
}

// Options loads the rows ordered by label.
func (s *TableSource) Options(ctx context.Context) ([]choices.Option, error) {
	var rows []struct {
		Value string
		Label string
	}

	query := s.db.WithContext(ctx).
		Table(s.table).
		Select("? AS value, ? AS label", clause.Column{Name: s.valueColumn}, clause.Column{Name: s.labelColumn}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: s.labelColumn}})
	if s.where != "" {
		query = query.Where(s.where, s.whereArgs...)
	}
	if s.limit > 0 {
		query = query.Limit(s.limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: load options from %s: %w", s.table, err)
	}

	out := make([]choices.Option, 0, len(rows))
	for _, row := range rows {
		out = append(out, choices.Option{Value: row.Value, Label: row.Label})
	}
	return out, nil
}
