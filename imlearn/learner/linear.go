// Package learner provides concrete Learner implementations for the
// imitation-learning loop. Linear is a multi-output least-squares model over
// a declared subset of observation fields, the smallest thing that closes
// the fit/predict/save/load contract end to end.
package learner

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/ACDSLab/imitation-learning/imlearn"
)

// Field declares one observation field the model consumes and its expected
// per-sample dimension.
type Field struct {
	Name string `json:"name"`
	Dim  int    `json:"dim"`
}

// Linear is a least-squares linear model with a bias term, mapping the
// concatenation of the declared observation fields to an action vector.
// An optional "ridge" float64 fit option adds L2 regularization.
type Linear struct {
	fields  []Field
	outDim  int
	weights *mat.Dense // (inDim+1) x outDim, nil until the first Fit
	logger  *logrus.Entry
}

// NewLinear builds an untrained model over the given fields. Until the
// first Fit its policy outputs the zero action of dimension outDim.
func NewLinear(fields []Field, outDim int, logger *logrus.Entry) (*Linear, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("linear learner: at least one field required")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Dim <= 0 {
			return nil, fmt.Errorf("linear learner: field %q has non-positive dim %d", f.Name, f.Dim)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("linear learner: duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}
	if outDim <= 0 {
		return nil, fmt.Errorf("linear learner: output dim must be positive, got %d", outDim)
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Linear{
		fields: fields,
		outDim: outDim,
		logger: logger.WithField("component", "learner"),
	}, nil
}

// inDim is the concatenated input dimension, without the bias term.
func (l *Linear) inDim() int {
	d := 0
	for _, f := range l.fields {
		d += f.Dim
	}
	return d
}

// Fit solves the regularized least-squares problem over all samples.
func (l *Linear) Fit(observations map[string][][]float64, targets []imlearn.Action, opts imlearn.FitOptions) error {
	n := len(targets)
	if n == 0 {
		return fmt.Errorf("linear learner: fit with no samples")
	}
	for i, tgt := range targets {
		if len(tgt) != l.outDim {
			return fmt.Errorf("linear learner: target %d has dim %d, want %d", i, len(tgt), l.outDim)
		}
	}

	cols := l.inDim() + 1
	ridge := 0.0
	if v, ok := opts["ridge"].(float64); ok {
		ridge = v
	}
	rows := n
	if ridge > 0 {
		rows += cols
	}

	x := mat.NewDense(rows, cols, nil)
	y := mat.NewDense(rows, l.outDim, nil)
	col := 0
	for _, f := range l.fields {
		values, ok := observations[f.Name]
		if !ok {
			err := &imlearn.MissingFieldError{Field: f.Name, Phase: "fit"}
			l.logger.Error(err)
			return err
		}
		if len(values) != n {
			return fmt.Errorf("linear learner: field %q has %d samples, want %d", f.Name, len(values), n)
		}
		for i, v := range values {
			if len(v) != f.Dim {
				return fmt.Errorf("linear learner: field %q sample %d has dim %d, want %d", f.Name, i, len(v), f.Dim)
			}
			for j, val := range v {
				x.Set(i, col+j, val)
			}
		}
		col += f.Dim
	}
	for i := 0; i < n; i++ {
		x.Set(i, cols-1, 1) // bias
		for j, val := range targets[i] {
			y.Set(i, j, val)
		}
	}
	if ridge > 0 {
		// Tikhonov rows: sqrt(ridge)*I against zero targets.
		r := math.Sqrt(ridge)
		for j := 0; j < cols; j++ {
			x.Set(n+j, j, r)
		}
	}

	var w mat.Dense
	if err := w.Solve(x, y); err != nil {
		return fmt.Errorf("linear learner: least-squares solve: %w", err)
	}
	l.weights = &w
	l.logger.Infof("fit with %d samples, %d inputs, %d outputs", n, cols-1, l.outDim)
	return nil
}

// GetPolicy returns a prediction closure over the current weights. The
// closure captures the weights at call time, so refitting and calling
// GetPolicy again yields an updated policy without invalidating old ones.
func (l *Linear) GetPolicy() (imlearn.Policy, error) {
	weights := l.weights
	return func(obs imlearn.Observation) (imlearn.Action, error) {
		if weights == nil {
			return make(imlearn.Action, l.outDim), nil
		}
		x := make([]float64, l.inDim()+1)
		col := 0
		for _, f := range l.fields {
			v, ok := obs[f.Name]
			if !ok {
				err := &imlearn.MissingFieldError{Field: f.Name, Phase: "predict"}
				l.logger.Error(err)
				return nil, err
			}
			if len(v) != f.Dim {
				return nil, fmt.Errorf("linear learner: field %q has dim %d, want %d", f.Name, len(v), f.Dim)
			}
			copy(x[col:], v)
			col += f.Dim
		}
		x[len(x)-1] = 1
		var out mat.VecDense
		out.MulVec(weights.T(), mat.NewVecDense(len(x), x))
		action := make(imlearn.Action, l.outDim)
		copy(action, out.RawVector().Data)
		return action, nil
	}, nil
}

// modelFile is the on-disk representation.
type modelFile struct {
	Fields  []Field     `json:"fields"`
	OutDim  int         `json:"out_dim"`
	Weights [][]float64 `json:"weights,omitempty"` // (inDim+1) rows of outDim values
}

// Save writes the model as <name>.json inside dir.
func (l *Linear) Save(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	mf := modelFile{Fields: l.fields, OutDim: l.outDim}
	if l.weights != nil {
		rows, _ := l.weights.Dims()
		mf.Weights = make([][]float64, rows)
		for i := range mf.Weights {
			mf.Weights[i] = l.weights.RawRowView(i)
		}
	}
	path := filepath.Join(dir, name+".json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(mf); err != nil {
		return fmt.Errorf("save model %s: %w", path, err)
	}
	return nil
}

// Load restores a model saved by Save.
func Load(dir, name string, logger *logrus.Entry) (*Linear, error) {
	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	l, err := NewLinear(mf.Fields, mf.OutDim, logger)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	if mf.Weights != nil {
		cols := l.inDim() + 1
		if len(mf.Weights) != cols {
			return nil, fmt.Errorf("load model %s: %d weight rows, want %d", path, len(mf.Weights), cols)
		}
		w := mat.NewDense(cols, mf.OutDim, nil)
		for i, row := range mf.Weights {
			if len(row) != mf.OutDim {
				return nil, fmt.Errorf("load model %s: weight row %d has %d values, want %d", path, i, len(row), mf.OutDim)
			}
			w.SetRow(i, row)
		}
		l.weights = w
	}
	return l, nil
}
