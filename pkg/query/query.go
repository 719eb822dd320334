// Package query synthesizes the validation SQL for declared data-quality
// constraints. Every statement returns exactly one row with exactly one
// numeric column: the count of constraint-violating rows.
//
// Identifiers (schema, table, field names) are trusted, administrator-
// supplied configuration literals and are spliced into the statement text.
// SQL offers no placeholder mechanism for identifiers, so this is an
// explicit trust boundary rather than a general escaping facility. As a
// hardening measure each identifier is checked against a conservative
// allow-list before substitution.
package query

import (
	"fmt"
	"strings"
)

// NotNullParams parameterizes a not-null check.
type NotNullParams struct {
	Schema string
	Table  string
	Field  string
}

// UniqueParams parameterizes a uniqueness check.
type UniqueParams struct {
	Schema string
	Table  string
	Field  string
}

// RelationshipParams parameterizes a referential-integrity check. The check
// counts rows of the child table whose child field is non-null and missing
// from the parent table's parent field.
type RelationshipParams struct {
	Schema      string
	ParentTable string
	ParentField string
	ChildTable  string
	ChildField  string
}

// NotNull returns a statement counting rows of schema.table where field is
// null.
func NotNull(p NotNullParams) (string, error) {
	if err := validateIdentifiers(p.Schema, p.Table, p.Field); err != nil {
		return "", err
	}
	return fmt.Sprintf(`with validation as (
  select %s as f
  from %s.%s
)
select count(*) from validation where f is null`,
		quoteIdent(p.Field), quoteIdent(p.Schema), quoteIdent(p.Table)), nil
}

// Unique returns a statement counting the number of duplicate groups in
// schema.table's field: distinct values occurring more than once, not the
// number of duplicated rows.
func Unique(p UniqueParams) (string, error) {
	if err := validateIdentifiers(p.Schema, p.Table, p.Field); err != nil {
		return "", err
	}
	return fmt.Sprintf(`with validation as (
  select %s as f
  from %s.%s
)
select count(*) from (
  select f from validation group by f having count(*) > 1
) duplicated`,
		quoteIdent(p.Field), quoteIdent(p.Schema), quoteIdent(p.Table)), nil
}

// Relationship returns a statement counting orphaned child rows: non-null
// child field values with no matching parent field value. Nulls are exempt
// from the violation count.
func Relationship(p RelationshipParams) (string, error) {
	if err := validateIdentifiers(p.Schema, p.ParentTable, p.ParentField, p.ChildTable, p.ChildField); err != nil {
		return "", err
	}
	return fmt.Sprintf(`with parent as (
  select %s as id
  from %s.%s
), child as (
  select %s as id
  from %s.%s
)
select count(*) from child
where id not in (select id from parent) and id is not null`,
		quoteIdent(p.ParentField), quoteIdent(p.Schema), quoteIdent(p.ParentTable),
		quoteIdent(p.ChildField), quoteIdent(p.Schema), quoteIdent(p.ChildTable)), nil
}

// ValidIdentifier reports whether name is acceptable as a schema, table, or
// field identifier: a letter or underscore followed by letters, digits,
// underscores, or dollar signs.
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '$'):
		default:
			return false
		}
	}
	return true
}

func validateIdentifiers(names ...string) error {
	for _, name := range names {
		if !ValidIdentifier(name) {
			return fmt.Errorf("invalid identifier %q: identifiers must match [A-Za-z_][A-Za-z0-9_$]*", name)
		}
	}
	return nil
}

// quoteIdent double-quotes an identifier. Callers must have validated the
// identifier first; quoting keeps case-sensitive and reserved-word names
// working.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
