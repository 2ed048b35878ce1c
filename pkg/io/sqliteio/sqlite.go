// Package sqliteio stores frame snapshots in a SQLite database. Each snapshot
// replaces the table wholesale; column kinds are kept in a side table so a
// reload restores booleans and timestamps.
package sqliteio

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// DefaultTable receives snapshots when no table is configured.
const DefaultTable = "dados_para_analise"

const columnsTable = "surveyframe_columns"

// Sink writes snapshots into one table of a SQLite database.
type Sink struct {
	db    *sql.DB
	table string
}

// Open opens (or creates) the database at path.
func Open(path, table string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	if table == "" {
		table = DefaultTable
	}
	s := &Sink{db: db, table: table}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + columnsTable + ` (
		tbl TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (tbl, position)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Sink) Table() string { return s.table }

func (s *Sink) Close() error { return s.db.Close() }

func (s *Sink) Write(f *frame.Frame) error { return s.WriteContext(context.Background(), f) }

// WriteContext replaces the table with f inside one transaction.
func (s *Sink) WriteContext(ctx context.Context, f *frame.Frame) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quote(s.table)); err != nil {
		return fmt.Errorf("drop table %s: %w", s.table, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+columnsTable+` WHERE tbl = ?`, s.table); err != nil {
		return fmt.Errorf("clear columns of %s: %w", s.table, err)
	}
	if f.Cols() == 0 {
		return tx.Commit()
	}

	schema := f.Schema()
	defs := make([]string, len(schema.Columns))
	for i, cs := range schema.Columns {
		defs[i] = quote(cs.Name) + " " + affinity(cs.Type)
		if _, err := tx.ExecContext(ctx, `INSERT INTO `+columnsTable+` (tbl, position, name, kind) VALUES (?, ?, ?, ?)`,
			s.table, i, cs.Name, cs.Type.String()); err != nil {
			return fmt.Errorf("record column %s: %w", cs.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+quote(s.table)+` (`+strings.Join(defs, ", ")+`)`); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", f.Cols()), ", ")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+quote(s.table)+` VALUES (`+marks+`)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	args := make([]any, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := range args {
			args[c] = toSQL(f.At(r, c))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", r, err)
		}
	}
	return tx.Commit()
}

// ReadAll reloads the snapshot table, in insertion order.
func (s *Sink) ReadAll(ctx context.Context) (*frame.Frame, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, kind FROM `+columnsTable+` WHERE tbl = ? ORDER BY position`, s.table)
	if err != nil {
		return nil, err
	}
	var names []string
	var kinds []frame.Kind
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			_ = rows.Close()
			return nil, err
		}
		names = append(names, name)
		kinds = append(kinds, parseKind(kind))
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return frame.Empty(), nil
	}

	data, err := s.db.QueryContext(ctx, `SELECT * FROM `+quote(s.table)+` ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = data.Close() }()
	b := frame.NewBuilder(names)
	for data.Next() {
		raw := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := data.Scan(ptrs...); err != nil {
			return nil, err
		}
		vals := make([]frame.Value, len(names))
		for i, x := range raw {
			vals[i] = fromSQL(kinds[i], x)
		}
		b.Append(vals...)
	}
	if err := data.Err(); err != nil {
		return nil, err
	}
	return b.Frame()
}

// ReadFile opens the database at path, reloads table and closes it.
func ReadFile(path, table string) (*frame.Frame, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	s, err := Open(path, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()
	return s.ReadAll(context.Background())
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func affinity(k frame.Kind) string {
	switch k {
	case frame.KindInt, frame.KindBool:
		return "INTEGER"
	case frame.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func parseKind(s string) frame.Kind {
	for k := frame.KindNull; k <= frame.KindList; k++ {
		if k.String() == s {
			return k
		}
	}
	return frame.KindString
}

func toSQL(v frame.Value) any {
	switch v.Kind() {
	case frame.KindNull:
		return nil
	case frame.KindBool:
		b, _ := v.Bool()
		if b {
			return int64(1)
		}
		return int64(0)
	case frame.KindInt:
		i, _ := v.Int()
		return i
	case frame.KindFloat:
		x, _ := v.Float()
		return x
	default:
		return v.Text()
	}
}

// fromSQL converts a scanned cell back into a value of the column's kind.
// Non-scalar columns come back as their JSON text.
func fromSQL(k frame.Kind, x any) frame.Value {
	if x == nil {
		return frame.Null()
	}
	if b, ok := x.([]byte); ok {
		x = string(b)
	}
	switch k {
	case frame.KindBool:
		if i, ok := x.(int64); ok {
			return frame.Bool(i != 0)
		}
	case frame.KindTime:
		if s, ok := x.(string); ok {
			if t, err := time.Parse(frame.TimeLayout, s); err == nil {
				return frame.Time(t)
			}
		}
	case frame.KindFloat:
		switch t := x.(type) {
		case float64:
			return frame.Float(t)
		case int64:
			return frame.Float(float64(t))
		}
	}
	return frame.FromAny(x)
}
