package imlearn

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Dataset is the cumulative training set: one ordered sequence per
// observation field plus parallel target, action, and reward sequences.
// Invariant: every field sequence and the three parallel sequences have the
// same length, and index i across all of them refers to the same timestep.
//
// The field schema is fixed by the first record or batch appended. Later
// data introducing an unknown field is rejected with UnknownFieldError
// unless the dataset was created with AllowSchemaGrowth.
type Dataset struct {
	Observations map[string][][]float64 `json:"observations"`
	Targets      [][]float64            `json:"targets"`
	Actions      [][]float64            `json:"actions"`
	Rewards      []float64              `json:"rewards"`

	growSchema bool
	logger     *logrus.Entry
}

// DatasetOption configures a Dataset at construction.
type DatasetOption func(*Dataset)

// AllowSchemaGrowth lets later batches introduce fields unseen by earlier
// ones. The new field is backfilled with zero vectors for all prior samples
// so the alignment invariant keeps holding.
func AllowSchemaGrowth() DatasetOption {
	return func(d *Dataset) { d.growSchema = true }
}

// WithDatasetLogger sets the log sink used for schema-growth warnings.
func WithDatasetLogger(logger *logrus.Entry) DatasetOption {
	return func(d *Dataset) { d.logger = logger }
}

// NewDataset returns an empty dataset with a strict (fixed) field schema
// unless options say otherwise.
func NewDataset(opts ...DatasetOption) *Dataset {
	d := &Dataset{Observations: make(map[string][][]float64)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len returns the number of samples held.
func (d *Dataset) Len() int {
	return len(d.Rewards)
}

// Fields returns the schema field names in sorted order.
func (d *Dataset) Fields() []string {
	fields := make([]string, 0, len(d.Observations))
	for f := range d.Observations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Append adds one trajectory record: the per-field observation, the executed
// target, the learner's candidate action, and the reward. All four are
// recorded together or not at all.
func (d *Dataset) Append(obs Observation, target, action Action, reward float64) error {
	if d.Observations == nil {
		d.Observations = make(map[string][][]float64)
	}
	if err := d.admitFields(obs); err != nil {
		return err
	}
	for field, value := range obs {
		d.Observations[field] = append(d.Observations[field], value)
	}
	d.Targets = append(d.Targets, target)
	d.Actions = append(d.Actions, action)
	d.Rewards = append(d.Rewards, reward)
	return nil
}

// Extend merges batch into d in place. The caller's reference to d reflects
// the merged state afterwards; batch is not modified. A failed Extend leaves
// d unchanged.
func (d *Dataset) Extend(batch *Dataset) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}
	if err := batch.checkAligned(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if d.Observations == nil {
		d.Observations = make(map[string][][]float64)
	}
	if err := d.admitFields(fieldSet(batch.Observations)); err != nil {
		return err
	}
	for field, values := range batch.Observations {
		d.Observations[field] = append(d.Observations[field], values...)
	}
	d.Targets = append(d.Targets, batch.Targets...)
	d.Actions = append(d.Actions, batch.Actions...)
	d.Rewards = append(d.Rewards, batch.Rewards...)
	return nil
}

// admitFields validates incoming field names against the schema without
// mutating any sequence, except for zero-backfill of grown fields. incoming
// maps field name to one representative per-sample vector, used only for
// its dimension.
func (d *Dataset) admitFields(incoming map[string][]float64) error {
	if len(d.Observations) == 0 {
		// First field-bearing data fixes the schema, but only while no
		// fieldless samples exist that the new fields could misalign with.
		if d.Len() > 0 && len(incoming) > 0 {
			return fmt.Errorf("cannot introduce observation fields after %d fieldless samples", d.Len())
		}
		return nil
	}
	for field := range d.Observations {
		if _, ok := incoming[field]; !ok {
			return fmt.Errorf("batch omits schema field %q, cannot keep sequences aligned", field)
		}
	}
	var grown []string
	for field := range incoming {
		if _, ok := d.Observations[field]; !ok {
			if !d.growSchema {
				return &UnknownFieldError{Field: field}
			}
			grown = append(grown, field)
		}
	}
	for _, field := range grown {
		dim := len(incoming[field])
		backfill := make([][]float64, d.Len())
		for i := range backfill {
			backfill[i] = make([]float64, dim)
		}
		d.Observations[field] = backfill
		if d.logger != nil {
			d.logger.Warnf("schema grew: field %q backfilled with %d zero samples", field, d.Len())
		}
	}
	return nil
}

// checkAligned verifies the alignment invariant over all sequences.
func (d *Dataset) checkAligned() error {
	n := d.Len()
	if len(d.Targets) != n || len(d.Actions) != n {
		return fmt.Errorf("misaligned dataset: %d targets, %d actions, %d rewards",
			len(d.Targets), len(d.Actions), n)
	}
	for field, values := range d.Observations {
		if len(values) != n {
			return fmt.Errorf("misaligned dataset: field %q has %d samples, want %d", field, len(values), n)
		}
	}
	return nil
}

// fieldSet reduces per-field sample sequences to one representative vector
// per field, the shape admitFields wants for dimension lookups.
func fieldSet(obs map[string][][]float64) map[string][]float64 {
	out := make(map[string][]float64, len(obs))
	for field, values := range obs {
		if len(values) > 0 {
			out[field] = values[0]
		} else {
			out[field] = nil
		}
	}
	return out
}
