package corridor

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
)

const (
	lightPoolSize   = 13
	lowPresetLights = 8
	// A set unused for this many rotations is preferred as the next set.
	rotationThreshold = 3
	// Lights this close to a starting transition are switched off.
	transitionLightMargin float32 = 1.5

	rushOffsetVariance   = 20
	rushOffsetMin        = 50
	normalOffsetVariance = 40
	normalOffsetMin      = 65
)

var (
	ErrTooFewSets    = errors.New("environment needs at least two sets")
	ErrNoTransitions = errors.New("environment needs at least one transition")
	ErrNoInitialSet  = errors.New("no environment set may open a run")
)

// EnvironmentDeps are the collaborators the manager works against.
type EnvironmentDeps struct {
	Run           *RunState
	Scene         Scene
	Log           Logger
	Rand          *rand.Rand
	LampIntensity float32
}

// EnvironmentManager rotates environment sets, schedules transitions by
// distance travelled and hands out pool lights. It is driven by one Update
// call per tick and never blocks.
type EnvironmentManager struct {
	run   *RunState
	scene Scene
	log   Logger
	rng   *rand.Rand

	sets        []EnvironmentSet
	transitions []*Transition
	lights      []*PoolLight

	activeSet        int
	nextActiveSet    int
	activeTransition int

	lastTransitionDistance   float64
	nextTransitionOffset     float64
	transitionOffsetVariance float64
	transitionOffsetMin      float64
	maxPointLights           int

	preset          GraphicsPreset
	settingsVersion uint64
	loaded          bool

	// totals over the manager's lifetime, resets included
	rotations         int
	transitionsPlayed int
}

// NewEnvironmentManager builds the light pool, the sets and the empty
// transition slots, and picks the opening pair of sets. Transitions arrive
// later through RegisterTransition.
func NewEnvironmentManager(deps EnvironmentDeps, newSets SetFactory, transitionSlots int) (*EnvironmentManager, error) {
	if transitionSlots < 1 {
		return nil, ErrNoTransitions
	}
	if deps.Log == nil {
		deps.Log = NewNopLogger()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if deps.LampIntensity == 0 {
		deps.LampIntensity = DefaultLampIntensity
	}

	m := &EnvironmentManager{
		run:              deps.Run,
		scene:            deps.Scene,
		log:              deps.Log,
		rng:              deps.Rand,
		transitions:      make([]*Transition, transitionSlots),
		activeTransition: -1,
	}

	settings, version := m.run.Settings.Get()
	m.settingsVersion = version
	m.preset = settings.GraphicsPreset
	m.maxPointLights = maxLightsFor(settings.GraphicsPreset)
	m.applyRushMode(settings.RushMode)

	// Sets light their lamps as soon as they activate, so the pool comes first.
	for i := 0; i < lightPoolSize; i++ {
		light := NewPointLight(fmt.Sprintf("pool-light-%d", i), [3]float32{1, 1, 1}, 0, 0, 2)
		m.scene.AddLight(light)
		m.lights = append(m.lights, NewPoolLight(light, deps.LampIntensity))
	}

	m.sets = newSets(m)
	if len(m.sets) < 2 {
		return nil, errors.Wrapf(ErrTooFewSets, "got %d", len(m.sets))
	}
	if len(m.initialCandidates()) == 0 {
		return nil, ErrNoInitialSet
	}

	m.SetupInitialSet()
	m.run.OnReset(m.Reset)
	m.nextTransitionOffset = m.drawOffset()

	return m, nil
}

func maxLightsFor(preset GraphicsPreset) int {
	if preset == GraphicsLow {
		return lowPresetLights
	}
	return lightPoolSize
}

func (m *EnvironmentManager) applyRushMode(rush bool) {
	if rush {
		m.transitionOffsetVariance = rushOffsetVariance
		m.transitionOffsetMin = rushOffsetMin
	} else {
		m.transitionOffsetVariance = normalOffsetVariance
		m.transitionOffsetMin = normalOffsetMin
	}
}

func (m *EnvironmentManager) drawOffset() float64 {
	return m.rng.Float64()*m.transitionOffsetVariance + m.transitionOffsetMin
}

func (m *EnvironmentManager) initialCandidates() []int {
	var res []int
	for i, set := range m.sets {
		if !set.NotInitial() {
			res = append(res, i)
		}
	}
	return res
}

// SetupInitialSet picks a random opening set among those allowed to open a
// run and a random different set to follow it.
func (m *EnvironmentManager) SetupInitialSet() {
	candidates := m.initialCandidates()
	m.activeSet = candidates[m.rng.IntN(len(candidates))]
	m.nextActiveSet = m.pickOther(m.activeSet)

	for i, set := range m.sets {
		if i != m.activeSet {
			set.SetActive(false)
		}
	}
	m.sets[m.activeSet].SetActive(true)

	for _, set := range m.sets {
		set.SetLastUsed(0)
	}
	m.log.Debugf("opening with set %d, next %d", m.activeSet, m.nextActiveSet)
}

func (m *EnvironmentManager) pickOther(exclude int) int {
	n := m.rng.IntN(len(m.sets) - 1)
	if n >= exclude {
		n++
	}
	return n
}

// pickNextSet prefers the first set that has sat out long enough and falls
// back to a random one.
func (m *EnvironmentManager) pickNextSet() int {
	for i, set := range m.sets {
		if i != m.activeSet && set.LastUsed() >= rotationThreshold {
			return i
		}
	}
	return m.pickOther(m.activeSet)
}

func (m *EnvironmentManager) Update(delta float32) {
	if !m.sets[m.activeSet].Update(delta) {
		m.sets[m.activeSet].SetActive(false)
		m.activeSet = m.nextActiveSet
		m.sets[m.activeSet].SetActive(true)
		m.nextActiveSet = m.pickNextSet()
		m.rotations++
		for i, set := range m.sets {
			if i != m.nextActiveSet {
				set.SetLastUsed(set.LastUsed() + 1)
			}
		}
		m.log.Debugf("rotated to set %d, next %d", m.activeSet, m.nextActiveSet)
	}

	m.sets[m.nextActiveSet].Update(delta)

	if t := m.ActiveTransition(); t != nil && t.IsActive() {
		t.Update(delta)
	}

	shift := m.run.MovingSpeed() * delta
	for _, light := range m.lights {
		if light.IsActive() {
			light.MoveBy(shift)
		}
	}

	if m.run.DistanceTravelled-m.lastTransitionDistance > m.nextTransitionOffset {
		m.makeTransition()
		var end float64
		if t := m.ActiveTransition(); t != nil {
			end = math.Abs(float64(t.Bounds().Min.Z()))
		}
		m.lastTransitionDistance = m.run.DistanceTravelled + end
	}
}

func (m *EnvironmentManager) makeTransition() {
	prev := m.sets[m.activeSet]
	prev.SetActive(false)
	next := m.sets[m.nextActiveSet]
	next.SetAsNext()
	next.SetLastUsed(0)

	slot, ok := prev.Transition()
	if !ok {
		slot = 0
	}
	m.activeTransition = -1
	if slot >= 0 && slot < len(m.transitions) && m.transitions[slot] != nil {
		m.activeTransition = slot
	} else {
		m.log.Warnf("transition %d is not loaded, skipping", slot)
	}

	m.nextTransitionOffset = m.drawOffset()

	t := m.ActiveTransition()
	if t == nil {
		return
	}
	t.Activate()
	m.transitionsPlayed++
	m.log.Infof("transition %s started at distance %.1f", t.Name, m.run.DistanceTravelled)

	bounds := t.Bounds()
	for _, light := range m.lights {
		if light.IsActive() && bounds.SpansZ(light.Position().Z(), transitionLightMargin) {
			light.Deactivate()
		}
	}
}

// GetAvailableLight returns the first inactive light among the lights the
// current preset allows.
func (m *EnvironmentManager) GetAvailableLight() (*PoolLight, bool) {
	limit := min(m.maxPointLights, len(m.lights))
	for _, light := range m.lights[:limit] {
		if !light.IsActive() {
			return light, true
		}
	}
	return nil, false
}

// Reset restarts the rotation and puts every transition away. Pool lights
// keep their state so lamps already in view do not pop.
func (m *EnvironmentManager) Reset() {
	for _, set := range m.sets {
		set.Reset()
	}
	m.SetupInitialSet()
	m.lastTransitionDistance = 0
	for _, t := range m.transitions {
		if t != nil {
			t.Reset()
		}
	}
}

// SyncSettings applies settings changed since the last call.
func (m *EnvironmentManager) SyncSettings() {
	settings, version := m.run.Settings.Get()
	if version == m.settingsVersion {
		return
	}
	m.settingsVersion = version
	m.ApplySettings(settings)
}

// ApplySettings reacts to new settings. A preset change resizes the usable
// light count, updates every set and resets the run.
func (m *EnvironmentManager) ApplySettings(settings Settings) {
	if settings.GraphicsPreset != m.preset {
		m.preset = settings.GraphicsPreset
		m.maxPointLights = maxLightsFor(settings.GraphicsPreset)
		for _, set := range m.sets {
			set.UpdateSettings(settings)
		}
		m.log.Infof("graphics preset now %s, %d lights", settings.GraphicsPreset, m.maxPointLights)
		m.run.Reset()
	}
	m.applyRushMode(settings.RushMode)
}

// RegisterTransition puts t into its slot and into the scene, replacing
// whatever held the slot before. Transitions arriving after loading finished
// start hidden.
func (m *EnvironmentManager) RegisterTransition(slot int, t *Transition) {
	if slot < 0 || slot >= len(m.transitions) {
		m.log.Warnf("transition %s has no slot %d", t.Name, slot)
		return
	}
	if old := m.transitions[slot]; old != nil && old != t {
		m.scene.Remove(old.Model())
		if m.activeTransition == slot {
			m.activeTransition = -1
		}
		m.log.Debugf("transition %s replaces %s in slot %d", t.Name, old.Name, slot)
	}
	m.transitions[slot] = t
	m.scene.Add(t.Model())
	if m.loaded {
		t.Hide()
		m.log.Debugf("transition %s arrived after loading", t.Name)
	}
}

// LoadTransitions requests one transition model per path. Each lands in the
// slot matching its position in paths.
func (m *EnvironmentManager) LoadTransitions(assets *AssetServer, paths []string) {
	for i, path := range paths {
		slot := i
		assets.LoadModel(path, func(model *ModelAsset, err error) {
			if err != nil {
				return
			}
			m.RegisterTransition(slot, NewTransition(path, model, m.run))
		})
	}
}

// OnLoadComplete hides the transitions that were shown while loading.
func (m *EnvironmentManager) OnLoadComplete() {
	m.loaded = true
	for _, t := range m.transitions {
		if t != nil {
			t.Hide()
		}
	}
}

func (m *EnvironmentManager) ActiveSet() EnvironmentSet     { return m.sets[m.activeSet] }
func (m *EnvironmentManager) NextActiveSet() EnvironmentSet { return m.sets[m.nextActiveSet] }
func (m *EnvironmentManager) Sets() []EnvironmentSet        { return m.sets }
func (m *EnvironmentManager) Transitions() []*Transition    { return m.transitions }
func (m *EnvironmentManager) Lights() []*PoolLight          { return m.lights }
func (m *EnvironmentManager) MaxPointLights() int           { return m.maxPointLights }

func (m *EnvironmentManager) ActiveTransition() *Transition {
	if m.activeTransition < 0 {
		return nil
	}
	return m.transitions[m.activeTransition]
}

func (m *EnvironmentManager) Rotations() int         { return m.rotations }
func (m *EnvironmentManager) TransitionsPlayed() int { return m.transitionsPlayed }

func (m *EnvironmentManager) LastTransitionDistance() float64 { return m.lastTransitionDistance }
func (m *EnvironmentManager) NextTransitionOffset() float64   { return m.nextTransitionOffset }

// TransitionOffsetRange is the interval [min, min+variance) offsets are drawn from.
func (m *EnvironmentManager) TransitionOffsetRange() (float64, float64) {
	return m.transitionOffsetMin, m.transitionOffsetMin + m.transitionOffsetVariance
}
