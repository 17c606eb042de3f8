package fsrs

import (
	"encoding"
	"fmt"
	"strings"
)

// Model selects the formula set a weight vector was trained for.
type Model int

const (
	FSRS4  Model = iota + 1 // 17 weights, power decay -1
	FSRS45                  // 17 weights, power decay -0.5
	FSRS5                   // 19 weights, exponential initial difficulty, short-term stability
)

type difficultyCurve int

const (
	linearDifficulty      difficultyCurve = iota // w4 - w5*(G-3)
	exponentialDifficulty                        // w4 - e^(w5*(G-1)) + 1
)

// formulaSet is the per-version data the formulas in parameters.go read.
type formulaSet struct {
	name    string
	weights int
	decay   float64
	factor  float64 // 0.9^(1/decay) - 1, kept exact
	initD   difficultyCurve
	// revertToEasy targets D0(Easy) for mean reversion; otherwise w4.
	revertToEasy bool
	// shortTerm enables w17/w18 same-day stability.
	shortTerm bool
	defaults  []float64
}

var formulaSets = map[Model]formulaSet{
	FSRS4: {
		name:    "FSRS-4",
		weights: 17,
		decay:   -1,
		factor:  1.0 / 9.0,
		initD:   linearDifficulty,
		defaults: []float64{
			0.4, 0.6, 2.4, 5.8, 4.93, 0.94, 0.86, 0.01, 1.49, 0.14, 0.94,
			2.18, 0.05, 0.34, 1.26, 0.29, 2.61,
		},
	},
	FSRS45: {
		name:    "FSRS-4.5",
		weights: 17,
		decay:   -0.5,
		factor:  19.0 / 81.0,
		initD:   linearDifficulty,
		defaults: []float64{
			0.5701, 1.4436, 4.1386, 10.9355, 5.1443, 1.2006, 0.8627, 0.0362, 1.629, 0.1342,
			1.0166, 2.1174, 0.0839, 0.3204, 1.4676, 0.219, 2.8237,
		},
	},
	FSRS5: {
		name:         "FSRS-5",
		weights:      19,
		decay:        -0.5,
		factor:       19.0 / 81.0,
		initD:        exponentialDifficulty,
		revertToEasy: true,
		shortTerm:    true,
		defaults: []float64{
			0.4197, 1.1869, 3.0412, 15.2441, 7.1434, 0.6477, 1.0007, 0.0674, 1.6597, 0.1712,
			1.1178, 2.0225, 0.0904, 0.3025, 2.1214, 0.2498, 2.9466, 0.4891, 0.6468,
		},
	},
}

var (
	_ fmt.Stringer             = Model(0)
	_ encoding.TextMarshaler   = Model(0)
	_ encoding.TextUnmarshaler = (*Model)(nil)
)

func (m Model) formulas() (formulaSet, bool) {
	fs, ok := formulaSets[m]
	return fs, ok
}

func (m Model) String() string {
	if fs, ok := m.formulas(); ok {
		return fs.name
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// DefaultWeights returns a copy of the published default weights for m.
func (m Model) DefaultWeights() []float64 {
	fs, ok := m.formulas()
	if !ok {
		return nil
	}
	return append([]float64(nil), fs.defaults...)
}

// WeightCount is the weight vector length m expects, or 0 if m is unknown.
func (m Model) WeightCount() int {
	return formulaSets[m].weights
}

// ModelForWeights picks the newest model that takes n weights.
func ModelForWeights(n int) (Model, error) {
	switch n {
	case 17:
		return FSRS45, nil
	case 19:
		return FSRS5, nil
	}
	return 0, fmt.Errorf("%w: got %d, want 17 or 19", ErrWeightCount, n)
}

// ParseModel accepts "fsrs-4", "fsrs-4.5", "fsrs-5" and the forms without the dash.
func ParseModel(s string) (Model, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "")
	for m, fs := range formulaSets {
		if norm == strings.ReplaceAll(strings.ToLower(fs.name), "-", "") {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Model) MarshalText() ([]byte, error) {
	fs, ok := m.formulas()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModel, int(m))
	}
	return []byte(fs.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Model) UnmarshalText(text []byte) error {
	v, err := ParseModel(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
