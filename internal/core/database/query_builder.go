package db

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/markdave123-py/storage-indexer/internal/core"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quoteIdent validates and quotes a (optionally schema-qualified) identifier.
func quoteIdent(name string) (string, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	for _, p := range parts {
		if !identRe.MatchString(p) {
			return "", fmt.Errorf("invalid identifier %q", name)
		}
	}
	return pgx.Identifier(parts).Sanitize(), nil
}

// buildInsert returns the single-row INSERT statement for rows and the column
// order its placeholders follow. Every row must carry the same columns.
func buildInsert(table string, rows []core.Record) (string, []string, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("no rows")
	}
	tbl, err := quoteIdent(table)
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, 0, len(rows[0]))
	for c := range rows[0] {
		cols = append(cols, c)
	}
	slices.Sort(cols)

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		if quoted[i], err = quoteIdent(c); err != nil {
			return "", nil, err
		}
		marks[i] = fmt.Sprintf("$%d", i+1)
	}

	for i, r := range rows[1:] {
		if len(r) != len(cols) {
			return "", nil, fmt.Errorf("row %d has %d columns, want %d", i+1, len(r), len(cols))
		}
		for _, c := range cols {
			if _, ok := r[c]; !ok {
				return "", nil, fmt.Errorf("row %d missing column %q", i+1, c)
			}
		}
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tbl, strings.Join(quoted, ", "), strings.Join(marks, ", "))
	return q, cols, nil
}

// rowArgs encodes one record in column order.
func rowArgs(r core.Record, cols []string) ([]any, error) {
	args := make([]any, len(cols))
	for i, c := range cols {
		v, err := encodeValue(r[c])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c, err)
		}
		args[i] = v
	}
	return args, nil
}

// encodeValue maps Go values onto what the pgx stdlib driver accepts:
// float vectors become pgvector values, composite values become JSON text.
func encodeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int, int32, int64, float32, float64, time.Time, []byte:
		return val, nil
	case []float32:
		return pgvector.NewVector(val), nil
	case pgvector.Vector:
		return val, nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
}

// buildDelete renders a DELETE for one filter predicate.
func buildDelete(table string, f core.Filter) (string, []any, error) {
	tbl, err := quoteIdent(table)
	if err != nil {
		return "", nil, err
	}
	col, err := quoteIdent(f.Column)
	if err != nil {
		return "", nil, err
	}
	switch f.Op {
	case core.FilterEq:
		return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", tbl, col), []any{f.Value}, nil
	case core.FilterStartsWith:
		if f.Value == "" {
			return "", nil, fmt.Errorf("empty prefix would match every row")
		}
		return fmt.Sprintf(`DELETE FROM %s WHERE %s LIKE $1 ESCAPE '\'`, tbl, col), []any{escapeLike(f.Value) + "%"}, nil
	default:
		return "", nil, fmt.Errorf("unsupported filter op %d", f.Op)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
