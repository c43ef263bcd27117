package imlearn

import "fmt"

// MissingFieldError reports an observation field a Learner needs but the
// dataset or observation does not carry. Phase says where the lookup failed.
type MissingFieldError struct {
	Field string
	Phase string // "fit" or "predict"
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("observation field %q missing during %s", e.Field, e.Phase)
}

// UnknownFieldError reports a batch field outside the dataset's fixed schema.
// Surfaced instead of silently growing the schema; opt in to growth with
// AllowSchemaGrowth.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field %q not in dataset schema (schema is fixed after the first batch)", e.Field)
}
