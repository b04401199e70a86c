package reconciler

import (
	"context"

	"github.com/agentstation/locsync/pkg/differ"
	"github.com/agentstation/locsync/pkg/errors"
)

// Flush replaces the attribute's allowed values with the single placeholder,
// removing every location from every object that carries one. The source is
// not read.
func (r *Reconciler) Flush(ctx context.Context, placeholder string) (*Result, error) {
	rn := r.begin(ctx)
	rn.logger.Warn().Str("placeholder", placeholder).Msg("Flushing allowed values")

	if placeholder == "" {
		return rn.fail(errors.NewValidationError("placeholder", placeholder, "cannot be empty"))
	}
	return r.replace(rn, []string{placeholder})
}

// Restore replaces the attribute's allowed values with a previously saved list.
func (r *Reconciler) Restore(ctx context.Context, values []string) (*Result, error) {
	rn := r.begin(ctx)
	rn.logger.Info().Int("count", len(values)).Msg("Restoring allowed values")
	return r.replace(rn, values)
}

func (r *Reconciler) replace(rn *run, values []string) (*Result, error) {
	def, err := r.target.GetAttributeDefinition(rn.ctx, r.opts.attribute)
	if err != nil {
		return rn.fail(err)
	}
	rn.result.CurrentCount = def.Values.Len()

	raw := differ.NewSet(values...)
	rn.result.SourceCount = raw.Len()
	return r.apply(rn, def, r.desiredSet(rn, raw))
}
