package postgres

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrEmptyPatch        = errors.New("patch has no fields to update")
	ErrInvalidIdentifier = errors.New("invalid sql identifier")
	ErrDuplicateColumn   = errors.New("column assigned more than once")
)

// Identifiers are code constants, optionally schema-qualified. User input never
// reaches them; values are always bound as parameters.
var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

type assignment struct {
	column string
	value  any
}

// Patch builds a single-row parameterized UPDATE from a sparse set of fields.
//
//	sql, args, err := NewPatch("gis_schema.users", "id", 7).
//		Set("username", "alice").
//		Touch("updated_at").
//		Returning("id", "username").
//		Build()
//	// UPDATE gis_schema.users SET username = $1, updated_at = now() WHERE id = $2 RETURNING id, username
type Patch struct {
	table     string
	keyColumn string
	key       any
	sets      []assignment
	touch     []string
	returning []string
}

func NewPatch(table, keyColumn string, key any) *Patch {
	return &Patch{table: table, keyColumn: keyColumn, key: key}
}

// Set assigns value to column.
func (p *Patch) Set(column string, value any) *Patch {
	p.sets = append(p.sets, assignment{column: column, value: value})
	return p
}

// SetIf assigns value to column only when present is true.
func (p *Patch) SetIf(present bool, column string, value any) *Patch {
	if present {
		p.Set(column, value)
	}
	return p
}

// Touch sets column to now() whenever the patch is applied. Touched columns
// do not count as fields: a patch with only touched columns is still empty.
func (p *Patch) Touch(column string) *Patch {
	p.touch = append(p.touch, column)
	return p
}

func (p *Patch) Returning(columns ...string) *Patch {
	p.returning = append(p.returning, columns...)
	return p
}

// Build renders the statement and its positional arguments. The key is always
// the last argument and the WHERE clause always restricts to that single key.
func (p *Patch) Build() (string, []any, error) {
	if len(p.sets) == 0 {
		return "", nil, ErrEmptyPatch
	}
	for _, ident := range []string{p.table, p.keyColumn} {
		if !identRe.MatchString(ident) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, ident)
		}
	}

	seen := make(map[string]struct{}, len(p.sets)+len(p.touch))
	clauses := make([]string, 0, len(p.sets)+len(p.touch))
	args := make([]any, 0, len(p.sets)+1)

	for _, a := range p.sets {
		if err := checkColumn(a.column, seen); err != nil {
			return "", nil, err
		}
		args = append(args, a.value)
		clauses = append(clauses, a.column+" = $"+strconv.Itoa(len(args)))
	}
	for _, col := range p.touch {
		if err := checkColumn(col, seen); err != nil {
			return "", nil, err
		}
		clauses = append(clauses, col+" = now()")
	}
	for _, col := range p.returning {
		if !identRe.MatchString(col) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, col)
		}
	}

	args = append(args, p.key)

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(p.table)
	b.WriteString(" SET ")
	b.WriteString(strings.Join(clauses, ", "))
	b.WriteString(" WHERE ")
	b.WriteString(p.keyColumn)
	b.WriteString(" = $")
	b.WriteString(strconv.Itoa(len(args)))
	if len(p.returning) > 0 {
		b.WriteString(" RETURNING ")
		b.WriteString(strings.Join(p.returning, ", "))
	}
	return b.String(), args, nil
}

func checkColumn(col string, seen map[string]struct{}) error {
	if !identRe.MatchString(col) || strings.Contains(col, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, col)
	}
	if _, dup := seen[col]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, col)
	}
	seen[col] = struct{}{}
	return nil
}
