package tester

import (
	"context"
	"errors"
	"iter"

	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// Test walks every model in every group of the schema snapshot, validating
// the constraints of enabled models. It returns a lazy sequence that yields
// (model, nil) once per successfully dispatched constraint group — a model
// with three constraint types yields three times, which downstream
// consumers count on — as each group completes, so a caller observes
// progress without waiting for the full run.
//
// A *CheckError from a dispatch is reported and the walk continues with the
// next constraint or model. Any other error is fatal: the sequence yields
// (zero ModelID, err) exactly once and stops. Cancellation via ctx is
// checked between models and constraint groups and surfaces as a fatal
// error.
func (t *SchemaTester) Test(ctx context.Context, groups []*core.GroupSchemas, compiler ModelCompiler) iter.Seq2[core.ModelID, error] {
	return func(yield func(core.ModelID, error) bool) {
		for _, group := range groups {
			for _, ms := range group.Models {
				if err := ctx.Err(); err != nil {
					yield(core.ModelID{}, err)
					return
				}

				model := core.ModelID{Group: group.Group, Name: ms.Name}

				cfg := compiler.GetModelConfig(group.Group, ms.Name)
				if !cfg.Enabled {
					t.logger.Debug("skipping disabled model", "model", model.String())
					continue
				}

				for _, c := range ms.Schema.Constraints {
					if err := ctx.Err(); err != nil {
						yield(core.ModelID{}, err)
						return
					}

					err := t.ValidateConstraint(ctx, model, c)

					var cerr *CheckError
					switch {
					case err == nil:
						if !yield(model, nil) {
							return
						}
					case errors.As(err, &cerr):
						t.rep.Error(cerr)
						t.logger.Debug("constraint validation errored",
							"model", model.String(), "constraint", string(c.Type), "error", cerr.Message)
					default:
						yield(core.ModelID{}, err)
						return
					}
				}
			}
		}
	}
}
