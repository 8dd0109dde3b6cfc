// Package schema holds the cached catalog of table and column metadata.
//
// The catalog is loaded once at process start, shared by reference, and
// treated as immutable afterwards. Tests construct a catalog directly from
// Table values instead of going through SQLite.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Column describes one column of a table.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	HasDefault bool   `json:"has_default"`
	PrimaryKey bool   `json:"primary_key"`
}

// Table describes one table and its columns.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Catalog is a read-only view of the store's table metadata.
type Catalog struct {
	tables map[string]Table
	names  []string
}

// New builds a catalog from explicit table definitions. Used by tests to
// inject a fake catalog.
func New(tables []Table) *Catalog {
	c := &Catalog{tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		c.tables[t.Name] = t
		c.names = append(c.names, t.Name)
	}
	sort.Strings(c.names)
	return c
}

// Load introspects every table in the database via sqlite_master and
// PRAGMA table_info. Called once at startup; the result is reused for the
// life of the process.
func Load(ctx context.Context, db *sql.DB) (*Catalog, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query table names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table names: %w", err)
	}

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		columns, err := loadColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{Name: name, Columns: columns})
	}
	return New(tables), nil
}

func loadColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("table_info for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			cid        int
			name       string
			ctype      string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		columns = append(columns, Column{
			Name:       name,
			Type:       ctype,
			NotNull:    notNull != 0,
			HasDefault: defaultVal.Valid,
			PrimaryKey: pk != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}
	return columns, nil
}

// Table returns the metadata for a table name.
func (c *Catalog) Table(name string) (Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// HasTable reports whether the catalog knows a table by this name.
func (c *Catalog) HasTable(name string) bool {
	_, ok := c.tables[name]
	return ok
}

// Tables returns all known table names in sorted order.
func (c *Catalog) Tables() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// All returns all table definitions in name order.
func (c *Catalog) All() []Table {
	out := make([]Table, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.tables[name])
	}
	return out
}

// RequiredColumns returns the columns of a table that an insert row must
// carry: NOT NULL, no default, and not the primary key.
func (c *Catalog) RequiredColumns(name string) []string {
	t, ok := c.tables[name]
	if !ok {
		return nil
	}
	var required []string
	for _, col := range t.Columns {
		if col.PrimaryKey || !col.NotNull || col.HasDefault {
			continue
		}
		required = append(required, col.Name)
	}
	return required
}
