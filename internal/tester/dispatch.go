package tester

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/leapstack-labs/leapcheck/pkg/query"
)

// ValidateConstraint dispatches one declared constraint group to its
// handler. The constraint-type set is closed; an unrecognized tag returns a
// *CheckError naming the model and tag so the orchestrator can report it
// and keep going.
func (t *SchemaTester) ValidateConstraint(ctx context.Context, model core.ModelID, c core.Constraint) error {
	switch c.Type {
	case core.ConstraintNotNull:
		return t.validateFields(ctx, model, core.ConstraintNotNull, "VALIDATE NOT NULL", c.Fields, func(field string) (string, error) {
			return query.NotNull(query.NotNullParams{Schema: t.schema, Table: model.Name, Field: field})
		})
	case core.ConstraintUnique:
		return t.validateFields(ctx, model, core.ConstraintUnique, "VALIDATE UNIQUE", c.Fields, func(field string) (string, error) {
			return query.Unique(query.UniqueParams{Schema: t.schema, Table: model.Name, Field: field})
		})
	case core.ConstraintRelationships:
		return t.validateRelationships(ctx, model, c.References)
	default:
		// No entry-level observation precedes this error, so the group
		// itself is observed to keep error accounting complete.
		cerr := newCheckError(model, "invalid constraint %q specified for %q in schema.yml", string(c.Type), model.String())
		t.observe(model, c.Type, "", core.CheckStatusError, 0, cerr.Message)
		return cerr
	}
}

// validateFields runs a field-per-entry constraint (not_null, unique).
// Entries execute strictly in declared order; an errored entry is reported
// and its siblings still run, but any error withholds the group's
// validated status.
func (t *SchemaTester) validateFields(ctx context.Context, model core.ModelID, constraint core.ConstraintType, kind string, fields []string, synth func(field string) (string, error)) error {
	var errs []error

	for _, field := range fields {
		if err := ctx.Err(); err != nil {
			return err
		}

		t.rep.Check(kind, fmt.Sprintf("%q.%q", model.Name, field))

		stmt, err := synth(field)
		if err != nil {
			cerr := &CheckError{Model: model, Message: err.Error(), Err: err}
			t.rep.Errored(cerr)
			t.observe(model, constraint, field, core.CheckStatusError, 0, cerr.Message)
			errs = append(errs, cerr)
			continue
		}

		if err := t.runEntry(ctx, model, constraint, field, stmt); err != nil {
			var cerr *CheckError
			if !errors.As(err, &cerr) {
				return err
			}
			errs = append(errs, cerr)
		}
	}

	return groupResult(model, constraint, errs, len(fields))
}

// validateRelationships runs referential-integrity checks: the declaring
// model is the parent, each reference names the child table and field.
func (t *SchemaTester) validateRelationships(ctx context.Context, model core.ModelID, refs []core.Reference) error {
	var errs []error

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}

		subject := fmt.Sprintf("%s -> %s.%s", ref.From, ref.To, ref.Field)
		t.rep.Check("VALIDATE REFERENTIAL INTEGRITY",
			fmt.Sprintf("%q.%q to %q.%q", model.Name, ref.From, ref.To, ref.Field))

		stmt, err := query.Relationship(query.RelationshipParams{
			Schema:      t.schema,
			ParentTable: model.Name,
			ParentField: ref.From,
			ChildTable:  ref.To,
			ChildField:  ref.Field,
		})
		if err != nil {
			cerr := &CheckError{Model: model, Message: err.Error(), Err: err}
			t.rep.Errored(cerr)
			t.observe(model, core.ConstraintRelationships, subject, core.CheckStatusError, 0, cerr.Message)
			errs = append(errs, cerr)
			continue
		}

		if err := t.runEntry(ctx, model, core.ConstraintRelationships, subject, stmt); err != nil {
			var cerr *CheckError
			if !errors.As(err, &cerr) {
				return err
			}
			errs = append(errs, cerr)
		}
	}

	return groupResult(model, core.ConstraintRelationships, errs, len(refs))
}

// runEntry executes one synthesized statement and reports its outcome.
// Entry-level failures come back as *CheckError so the caller can isolate
// them; infrastructure errors pass through untouched.
func (t *SchemaTester) runEntry(ctx context.Context, model core.ModelID, constraint core.ConstraintType, subject, stmt string) error {
	count, err := t.executeScalar(ctx, model, stmt)
	if err != nil {
		var cerr *CheckError
		if !errors.As(err, &cerr) {
			return err
		}
		t.rep.Errored(cerr)
		t.observe(model, constraint, subject, core.CheckStatusError, 0, cerr.Message)
		return cerr
	}
	t.reportCount(model, constraint, subject, count)
	return nil
}

// groupResult folds per-entry errors into the handler's return value.
func groupResult(model core.ModelID, constraint core.ConstraintType, errs []error, total int) error {
	if len(errs) == 0 {
		return nil
	}
	return &CheckError{
		Model:   model,
		Message: fmt.Sprintf("%d of %d %s checks errored", len(errs), total, constraint),
		Err:     errors.Join(errs...),
	}
}
