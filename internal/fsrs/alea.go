package fsrs

import "math"

const (
	twoPow21      = 0x200000
	twoPow32      = 0x100000000
	twoPowMinus32 = 1.0 / twoPow32
	twoPowMinus53 = 1.0 / (1 << 53)

	mashSeed       = 0xefc8249d
	mashMultiplier = 0.02519603282416938
	aleaMultiplier = 2091639.0
)

// AleaState is the full internal state of an Alea generator.
type AleaState struct {
	C  float64 `json:"c"`
	S0 float64 `json:"s0"`
	S1 float64 `json:"s1"`
	S2 float64 `json:"s2"`
}

// Alea is Johannes Baagøe's seedable generator: a mash-hashed seed feeding
// a three-lag multiply-with-carry sequence of fractions in [0, 1).
// Not safe for concurrent use.
type Alea struct {
	c, s0, s1, s2 float64
}

// NewAlea seeds a generator from an arbitrary string. Equal seeds produce
// equal sequences.
func NewAlea(seed string) *Alea {
	m := newMash()
	a := &Alea{
		c:  1,
		s0: m.mash(" "),
		s1: m.mash(" "),
		s2: m.mash(" "),
	}
	a.s0 = wrapUnit(a.s0 - m.mash(seed))
	a.s1 = wrapUnit(a.s1 - m.mash(seed))
	a.s2 = wrapUnit(a.s2 - m.mash(seed))
	return a
}

func wrapUnit(v float64) float64 {
	if v < 0 {
		return v + 1
	}
	return v
}

// Next returns the next uniform value in [0, 1).
func (a *Alea) Next() float64 {
	t := math.FMA(aleaMultiplier, a.s0, a.c*twoPowMinus32)
	a.s0 = a.s1
	a.s1 = a.s2
	a.c = math.Floor(t)
	a.s2 = t - a.c
	return a.s2
}

// Int32 scales the next value onto the 32-bit range, upper half negative.
func (a *Alea) Int32() int32 {
	v := math.Mod(a.Next()*twoPow32, twoPow32)
	if v < 0 {
		v += twoPow32
	}
	return int32(uint32(v))
}

// Double returns a value in [0, 1) with 53 bits of precision drawn from
// two consecutive outputs.
func (a *Alea) Double() float64 {
	hi := float64(uint64(a.Next() * twoPow21))
	return math.FMA(hi, twoPowMinus53, a.Next())
}

// State exports the generator state.
func (a *Alea) State() AleaState {
	return AleaState{C: a.c, S0: a.s0, S1: a.s1, S2: a.s2}
}

// ImportState replaces the generator state so the sequence resumes exactly
// where the exported generator left off.
func (a *Alea) ImportState(s AleaState) {
	a.c, a.s0, a.s1, a.s2 = s.C, s.S0, s.S1, s.S2
}

type mash struct {
	n float64
}

func newMash() *mash {
	return &mash{n: mashSeed}
}

func (m *mash) mash(data string) float64 {
	n := m.n
	for _, ch := range data {
		n += float64(ch)
		h := mashMultiplier * n
		n = float64(uint32(h))
		h -= n
		h *= n
		n = float64(uint32(h))
		h -= n
		n += h * twoPow32
	}
	m.n = n
	return n * twoPowMinus32
}
