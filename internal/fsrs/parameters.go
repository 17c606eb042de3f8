package fsrs

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultRequestRetention = 0.9
	DefaultMaximumInterval  = 36500

	minStability = 0.1
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parameters configures the memory model. It is read-only once built;
// use NewParameters so the weight vector, decay and factor agree with Model.
type Parameters struct {
	RequestRetention float64   `json:"request_retention" validate:"gt=0,lt=1"`
	MaximumInterval  int32     `json:"maximum_interval" validate:"gte=1"`
	W                []float64 `json:"w" validate:"required"`
	Decay            float64   `json:"decay" validate:"lt=0"`
	Factor           float64   `json:"factor" validate:"gt=0"`
	EnableShortTerm  bool      `json:"enable_short_term"`
	EnableFuzz       bool      `json:"enable_fuzz"`
	Seed             string    `json:"seed"`
	Model            Model     `json:"model"`
}

// Option adjusts Parameters during NewParameters.
type Option func(*Parameters)

// WithRequestRetention sets the recall probability targeted at the due date.
func WithRequestRetention(r float64) Option {
	return func(p *Parameters) { p.RequestRetention = r }
}

// WithMaximumInterval caps intervals at days.
func WithMaximumInterval(days int32) Option {
	return func(p *Parameters) { p.MaximumInterval = days }
}

// WithWeights sets the weight vector. Unless WithModel is also given the
// model is inferred from its length.
func WithWeights(w ...float64) Option {
	return func(p *Parameters) { p.W = append([]float64(nil), w...) }
}

// WithModel pins the formula set.
func WithModel(m Model) Option {
	return func(p *Parameters) { p.Model = m }
}

// WithShortTerm toggles the minute-scale learning steps.
func WithShortTerm(enabled bool) Option {
	return func(p *Parameters) { p.EnableShortTerm = enabled }
}

// WithFuzz toggles interval fuzzing.
func WithFuzz(enabled bool) Option {
	return func(p *Parameters) { p.EnableFuzz = enabled }
}

// WithSeed sets a prefix for the fuzz seed. Each review still derives its
// own seed from the review time in milliseconds, the repetition count and
// the memory state, so two reviews of equal cards at the same millisecond
// share a fuzz draw.
func WithSeed(seed string) Option {
	return func(p *Parameters) { p.Seed = seed }
}

// DefaultParameters returns FSRS-5 with its published weights, 90% retention
// and short-term steps enabled.
func DefaultParameters() Parameters {
	p, err := NewParameters()
	if err != nil {
		panic(fmt.Sprintf("fsrs: default parameters invalid: %v", err))
	}
	return p
}

// NewParameters builds and validates Parameters.
func NewParameters(opts ...Option) (Parameters, error) {
	p := Parameters{
		RequestRetention: DefaultRequestRetention,
		MaximumInterval:  DefaultMaximumInterval,
		EnableShortTerm:  true,
	}
	for _, opt := range opts {
		opt(&p)
	}

	if p.Model == 0 {
		if p.W == nil {
			p.Model = FSRS5
		} else {
			m, err := ModelForWeights(len(p.W))
			if err != nil {
				return Parameters{}, err
			}
			p.Model = m
		}
	}
	fs, ok := p.Model.formulas()
	if !ok {
		return Parameters{}, fmt.Errorf("%w: %d", ErrUnknownModel, int(p.Model))
	}
	if p.W == nil {
		p.W = p.Model.DefaultWeights()
	}
	p.Decay = fs.decay
	p.Factor = fs.factor

	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Validate checks field ranges and that the weights match the model.
func (p Parameters) Validate() error {
	fs, ok := p.Model.formulas()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownModel, int(p.Model))
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	if len(p.W) != fs.weights {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrWeightCount, fs.name, fs.weights, len(p.W))
	}
	for i, w := range p.W {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: w[%d] = %v", ErrInvalidParameters, i, w)
		}
	}
	if want := math.Pow(0.9, 1/p.Decay) - 1; math.Abs(p.Factor-want) > 1e-9 {
		return fmt.Errorf("%w: factor %v does not match decay %v", ErrInvalidParameters, p.Factor, p.Decay)
	}
	return nil
}

func (p Parameters) formulas() formulaSet {
	return formulaSets[p.Model]
}

// HasShortTerm reports whether the model carries short-term stability weights.
func (p Parameters) HasShortTerm() bool {
	return p.formulas().shortTerm
}

// ForgettingCurve is the retrievability after elapsedDays at stability.
// Stability below the floor is treated as the floor.
func (p Parameters) ForgettingCurve(elapsedDays int64, stability float64) float64 {
	stability = math.Max(stability, minStability)
	return math.Pow(1+p.Factor*float64(elapsedDays)/stability, p.Decay)
}

// InitDifficulty is the difficulty after the first rating.
func (p Parameters) InitDifficulty(r Rating) float64 {
	return clampDifficulty(p.rawInitDifficulty(r))
}

func (p Parameters) rawInitDifficulty(r Rating) float64 {
	g := float64(r)
	if p.formulas().initD == exponentialDifficulty {
		return p.W[4] - math.Exp(p.W[5]*(g-1)) + 1
	}
	return p.W[4] - p.W[5]*(g-3)
}

// InitStability is the stability after the first rating.
func (p Parameters) InitStability(r Rating) float64 {
	return math.Max(p.W[r.index()], minStability)
}

// NextInterval converts stability into whole days until the retention
// target is reached, clamped to [1, MaximumInterval] and fuzzed if enabled.
func (p Parameters) NextInterval(stability float64, elapsedDays int64) float64 {
	ivl := stability / p.Factor * (math.Pow(p.RequestRetention, 1/p.Decay) - 1)
	ivl = math.Min(math.Max(math.Round(ivl), 1), float64(p.MaximumInterval))
	return p.applyFuzz(ivl, elapsedDays)
}

// NextDifficulty moves d by the rating and reverts it toward the model's target.
func (p Parameters) NextDifficulty(d float64, r Rating) float64 {
	next := math.FMA(p.W[6], -(float64(r) - 3), d)
	return clampDifficulty(p.meanReversion(p.reversionTarget(), next))
}

func (p Parameters) reversionTarget() float64 {
	if p.formulas().revertToEasy {
		return p.InitDifficulty(Easy)
	}
	return p.W[4]
}

func (p Parameters) meanReversion(initial, current float64) float64 {
	return math.FMA(p.W[7], initial, (1-p.W[7])*current)
}

// ShortTermStability is the same-day stability update. Models without
// short-term weights leave stability unchanged.
func (p Parameters) ShortTermStability(s float64, r Rating) float64 {
	if !p.HasShortTerm() {
		return s
	}
	return math.Max(s*math.Exp(p.W[17]*(float64(r)-3+p.W[18])), minStability)
}

// NextRecallStability is the stability after a successful recall.
func (p Parameters) NextRecallStability(d, s, retrievability float64, r Rating) float64 {
	d, s = clampDifficulty(d), math.Max(s, minStability)
	modifier := 1.0
	switch r {
	case Hard:
		modifier = p.W[15]
	case Easy:
		modifier = p.W[16]
	}
	growth := math.Exp(p.W[8]) *
		(11 - d) *
		math.Pow(s, -p.W[9]) *
		math.Expm1((1-retrievability)*p.W[10])
	return math.Max(s*math.FMA(growth, modifier, 1), minStability)
}

// NextForgetStability is the stability after a lapse.
func (p Parameters) NextForgetStability(d, s, retrievability float64) float64 {
	d, s = clampDifficulty(d), math.Max(s, minStability)
	return math.Max(p.W[11]*
		math.Pow(d, -p.W[12])*
		(math.Pow(s+1, p.W[13])-1)*
		math.Exp((1-retrievability)*p.W[14]), minStability)
}

// NextStability dispatches on the rating.
func (p Parameters) NextStability(d, s, retrievability float64, r Rating) float64 {
	if r == Again {
		return p.NextForgetStability(d, s, retrievability)
	}
	return p.NextRecallStability(d, s, retrievability, r)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
