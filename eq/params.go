package eq

import (
	"math"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/AidenCarrera/OloEQ/dsp/core"
)

// Parameter identifiers. These ids are the contract with the host layer;
// persisted state is keyed by them.
const (
	ParamLowCutFreq   = "LowCut Freq"
	ParamHighCutFreq  = "HighCut Freq"
	ParamPeakFreq     = "Peak Freq"
	ParamPeakGain     = "Peak Gain"
	ParamPeakQuality  = "Peak Quality"
	ParamLowCutSlope  = "LowCut Slope"
	ParamHighCutSlope = "HighCut Slope"
)

// Range describes a parameter's legal values and its control mapping.
//
// Step quantizes stored values onto a grid anchored at Min. Skew warps
// the normalized control position: positions are raised to 1/Skew before
// scaling, so a skew below 1 spreads the low end of the range across
// more of the control travel (0.25 gives frequency dials a log-like feel).
type Range struct {
	Min, Max float64
	Step     float64
	Skew     float64
}

// ValueFrom maps a normalized control position in [0, 1] to a value,
// applying the skew and snapping onto the step grid.
func (r Range) ValueFrom(position float64) float64 {
	position = core.Clamp(position, 0, 1)
	if r.Skew != 1 && position > 0 {
		position = math.Pow(position, 1/r.Skew)
	}
	return r.snap(r.Min + (r.Max-r.Min)*position)
}

// PositionOf maps a value to its normalized control position in [0, 1].
func (r Range) PositionOf(value float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	p := (core.Clamp(value, r.Min, r.Max) - r.Min) / (r.Max - r.Min)
	if r.Skew != 1 && p > 0 {
		p = math.Pow(p, r.Skew)
	}
	return p
}

// snap clamps value into the range and quantizes it onto the step grid.
func (r Range) snap(value float64) float64 {
	value = core.Clamp(value, r.Min, r.Max)
	if r.Step > 0 {
		value = r.Min + math.Round((value-r.Min)/r.Step)*r.Step
		value = core.Clamp(value, r.Min, r.Max)
	}
	return value
}

type paramDef struct {
	id  string
	rng Range
	def float64
}

// paramDefs returns the authoritative parameter table: ranges, defaults,
// steps and skews. Slopes are stored as choice indices 0..3.
func paramDefs() []paramDef {
	return []paramDef{
		{ParamLowCutFreq, Range{Min: MinFrequency, Max: MaxFrequency, Step: 1, Skew: 0.25}, MinFrequency},
		{ParamHighCutFreq, Range{Min: MinFrequency, Max: MaxFrequency, Step: 1, Skew: 0.25}, MaxFrequency},
		{ParamPeakFreq, Range{Min: MinFrequency, Max: MaxFrequency, Step: 1, Skew: 0.25}, 750},
		{ParamPeakGain, Range{Min: MinGainDB, Max: MaxGainDB, Step: 0.5, Skew: 1}, 0},
		{ParamPeakQuality, Range{Min: MinQuality, Max: MaxQuality, Step: 0.05, Skew: 1}, 1},
		{ParamLowCutSlope, Range{Min: 0, Max: 3, Step: 1, Skew: 1}, 0},
		{ParamHighCutSlope, Range{Min: 0, Max: 3, Step: 1, Skew: 1}, 0},
	}
}

// Listener receives a change notification with the parameter id and its
// new value. Listeners run on the goroutine that performed the write and
// must not block.
type Listener func(id string, value float64)

// Store holds the current value of every parameter. Values live in
// atomic storage, so reads and writes never lock; any goroutine may call
// Set while the audio goroutine snapshots concurrently.
//
// Every effective write raises a dirty flag. Consumers drain it with
// TakeDirty, collapsing any number of edits into a single refresh.
type Store struct {
	defs   []paramDef
	index  map[string]int
	values []atomic.Uint64 // float64 bits

	dirty atomic.Bool

	mu        sync.RWMutex
	listeners []Listener
}

// NewStore returns a store populated with the default parameter values.
func NewStore() *Store {
	defs := paramDefs()
	s := &Store{
		defs:   defs,
		index:  make(map[string]int, len(defs)),
		values: make([]atomic.Uint64, len(defs)),
	}
	for i, d := range defs {
		s.index[d.id] = i
		s.values[i].Store(math.Float64bits(d.def))
	}
	return s
}

// IDs returns the parameter identifiers in declaration order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.defs))
	for i, d := range s.defs {
		ids[i] = d.id
	}
	return ids
}

// RangeOf returns the range of the given parameter.
func (s *Store) RangeOf(id string) (Range, bool) {
	i, ok := s.index[id]
	if !ok {
		return Range{}, false
	}
	return s.defs[i].rng, true
}

// DefaultOf returns the default value of the given parameter.
func (s *Store) DefaultOf(id string) (float64, bool) {
	i, ok := s.index[id]
	if !ok {
		return 0, false
	}
	return s.defs[i].def, true
}

// Value returns the current value of the given parameter.
func (s *Store) Value(id string) (float64, bool) {
	i, ok := s.index[id]
	if !ok {
		return 0, false
	}
	return s.at(i), true
}

func (s *Store) at(i int) float64 {
	return math.Float64frombits(s.values[i].Load())
}

// Set stores a new value after clamping and step quantization. When the
// stored value actually changes, the store is marked dirty and listeners
// are notified. Unknown ids are ignored.
func (s *Store) Set(id string, value float64) {
	i, ok := s.index[id]
	if !ok {
		return
	}

	value = s.defs[i].rng.snap(value)
	old := math.Float64frombits(s.values[i].Swap(math.Float64bits(value)))
	if old == value {
		return
	}

	s.dirty.Store(true)
	s.notify(id, value)
}

// SetNormalized writes a parameter from a normalized control position,
// applying the range's skew mapping.
func (s *Store) SetNormalized(id string, position float64) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.Set(id, s.defs[i].rng.ValueFrom(position))
}

// Normalized returns the parameter's current normalized control position.
func (s *Store) Normalized(id string) (float64, bool) {
	i, ok := s.index[id]
	if !ok {
		return 0, false
	}
	return s.defs[i].rng.PositionOf(s.at(i)), true
}

// AddListener registers a change-notification hook. Hooks fire for every
// effective parameter write, with the id and the stored value.
func (s *Store) AddListener(fn Listener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify(id string, value float64) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(id, value)
	}
}

// TakeDirty atomically consumes the pending-change flag. It returns true
// at most once per batch of writes: the caller that receives true owns
// the refresh for every edit made so far.
func (s *Store) TakeDirty() bool {
	return s.dirty.CompareAndSwap(true, false)
}

// MarkDirty raises the pending-change flag without touching any value,
// forcing a refresh on the next tick.
func (s *Store) MarkDirty() {
	s.dirty.Store(true)
}

// Snapshot builds an immutable Settings value from the current
// parameters. Each field is read atomically; the snapshot as a whole is
// taken at control rate, so a concurrent edit lands in the next one.
func (s *Store) Snapshot() Settings {
	get := func(id string) float64 {
		return s.at(s.index[id])
	}

	return Settings{
		PeakFreq:     get(ParamPeakFreq),
		PeakGainDB:   get(ParamPeakGain),
		PeakQuality:  get(ParamPeakQuality),
		LowCutFreq:   get(ParamLowCutFreq),
		HighCutFreq:  get(ParamHighCutFreq),
		LowCutSlope:  clampSlope(Slope(get(ParamLowCutSlope))),
		HighCutSlope: clampSlope(Slope(get(ParamHighCutSlope))),
	}
}

// Restore overwrites parameters from persisted host state and forces a
// refresh even if every value matches, so a freshly loaded session
// always reapplies its coefficients. Unknown ids are ignored.
func (s *Store) Restore(values map[string]float64) {
	for id, v := range values {
		s.Set(id, v)
	}
	s.dirty.Store(true)

	log.WithField("count", len(values)).Debug("eq: parameter state restored")
}

// Reset returns every parameter to its default value.
func (s *Store) Reset() {
	for _, d := range s.defs {
		s.Set(d.id, d.def)
	}
	s.dirty.Store(true)
}
