package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunfire/internal/game/event"
	"github.com/cory-johannsen/gunfire/internal/game/geom"
	"github.com/cory-johannsen/gunfire/internal/game/sched"
)

// Muzzle offset bounds along the forward axis.
const (
	MinMuzzleOffset = 5.0
	MaxMuzzleOffset = 10.0
)

// Tuning holds the timing and geometry of a weapon.
type Tuning struct {
	ReloadDelay    time.Duration
	AutoFirePeriod time.Duration
	MaxRange       float64
	// MuzzleOffset is clamped to [MinMuzzleOffset, MaxMuzzleOffset].
	MuzzleOffset float64
	// ToggleCancelsAuto stops a running auto-fire timer when the mode leaves Auto.
	ToggleCancelsAuto bool
}

// DefaultTuning returns a 1s reload, 0.5s auto period, range 1000 and offset 10.
func DefaultTuning() Tuning {
	return Tuning{
		ReloadDelay:    time.Second,
		AutoFirePeriod: 500 * time.Millisecond,
		MaxRange:       1000,
		MuzzleOffset:   MaxMuzzleOffset,
	}
}

// Cues names the presentation assets a weapon plays. Empty entries are skipped.
type Cues struct {
	Fire          string
	Empty         string
	Reload        string
	FireAnimation string
}

// Transform is a world position with a forward direction.
type Transform struct {
	Position geom.Vec3
	Forward  geom.Vec3
}

// Owner is the character a Controller is attached to.
type Owner interface {
	Target
	CombatState() *State
	// HasController reports whether a player controller possesses the character.
	HasController() bool
	Instigator() Instigator
	// Muzzle returns the muzzle socket transform.
	Muzzle() Transform
}

// Shot describes one completed FireAndHit action.
type Shot struct {
	CharacterID string
	WeaponID    string
	ShotsLeft   int
	Outcome     Outcome
}

// ShotObserver is told about every shot after it resolves.
type ShotObserver interface {
	OnShot(s Shot)
}

// ControllerState is the resting state of a Controller.
type ControllerState int

const (
	Idle ControllerState = iota
	Reloading
	AutoFiring
)

// String returns the state name.
func (s ControllerState) String() string {
	switch s {
	case Reloading:
		return "reloading"
	case AutoFiring:
		return "auto_firing"
	default:
		return "idle"
	}
}

// Controller is the firing state machine of one weapon. All methods run on the
// frame thread; timer callbacks arrive through the Scheduler on that same thread.
//
// Invariant: reloading is true only while reloadTimer is active.
type Controller struct {
	weaponID string
	tuning   Tuning
	cues     Cues
	modes    []FiringMode
	mode     FiringMode

	sched    sched.Scheduler
	resolver *Resolver
	pub      event.Publisher
	logger   *zap.Logger

	owner       Owner
	reloading   bool
	reloadTimer sched.Handle
	autoTimer   sched.Handle
	observers   []ShotObserver
}

// NewController creates a detached Controller. The first entry of modes is the
// initial mode; an empty modes list allows both, starting in Single.
//
// Precondition: s, resolver and pub must not be nil; tuning durations must be > 0;
// every mode must be valid.
func NewController(weaponID string, tuning Tuning, cues Cues, modes []FiringMode, s sched.Scheduler, resolver *Resolver, pub event.Publisher, logger *zap.Logger) *Controller {
	if s == nil || resolver == nil || pub == nil {
		panic("combat: NewController: scheduler, resolver and publisher must not be nil")
	}
	if tuning.ReloadDelay <= 0 || tuning.AutoFirePeriod <= 0 {
		panic("combat: NewController: reload delay and auto-fire period must be > 0")
	}
	if len(modes) == 0 {
		modes = []FiringMode{FiringModeSingle, FiringModeAuto}
	}
	for _, m := range modes {
		if !m.Valid() {
			panic("combat: NewController: invalid firing mode " + string(m))
		}
	}
	tuning.MuzzleOffset = min(max(tuning.MuzzleOffset, MinMuzzleOffset), MaxMuzzleOffset)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		weaponID: weaponID,
		tuning:   tuning,
		cues:     cues,
		modes:    append([]FiringMode(nil), modes...),
		mode:     modes[0],
		sched:    s,
		resolver: resolver,
		pub:      pub,
		logger:   logger.With(zap.String("weapon", weaponID)),
	}
}

func (c *Controller) WeaponID() string { return c.weaponID }
func (c *Controller) Mode() FiringMode { return c.mode }
func (c *Controller) Reloading() bool  { return c.reloading }
func (c *Controller) AutoFiring() bool { return c.sched.Active(c.autoTimer) }
func (c *Controller) Tuning() Tuning   { return c.tuning }
func (c *Controller) Owner() Owner     { return c.owner }

// State returns the current resting state.
func (c *Controller) State() ControllerState {
	switch {
	case c.reloading:
		return Reloading
	case c.AutoFiring():
		return AutoFiring
	default:
		return Idle
	}
}

// AddShotObserver registers o to be told about every resolved shot.
func (c *Controller) AddShotObserver(o ShotObserver) {
	if o != nil {
		c.observers = append(c.observers, o)
	}
}

// Attach binds the controller to its owning character.
//
// Precondition: owner must not be nil.
func (c *Controller) Attach(owner Owner) {
	if owner == nil {
		panic("combat: Controller.Attach: owner must not be nil")
	}
	c.owner = owner
	c.logger = c.logger.With(zap.String("character", owner.ID()))
}

// Detach cancels both timers and unbinds the owner.
//
// Postcondition: State() == Idle; subsequent inputs are no-ops until Attach.
func (c *Controller) Detach() {
	c.sched.Cancel(c.autoTimer)
	c.sched.Cancel(c.reloadTimer)
	c.autoTimer, c.reloadTimer = 0, 0
	c.reloading = false
	c.owner = nil
}

// FireStarted handles the press edge of the fire input.
func (c *Controller) FireStarted() {
	if !c.armed() || c.reloading {
		return
	}
	st := c.owner.CombatState()
	if st.ShotsLeft() == 0 {
		if st.AmmoRacks() > 0 {
			c.Reload()
			return
		}
		c.cancelAuto()
		c.cue(event.CueEmpty, c.cues.Empty)
		return
	}
	if c.mode == FiringModeSingle {
		c.fireAndHit()
		return
	}
	if !c.sched.Active(c.autoTimer) {
		c.autoTimer = c.sched.Schedule(c.tuning.AutoFirePeriod, true, c.autoTick)
	}
}

// FireTriggered handles the held level of the fire input. In Auto mode the
// repeating timer is the only driver, and Single fires on the press edge, so
// this does nothing.
func (c *Controller) FireTriggered() {}

// FireReleased cancels any auto-fire timer.
func (c *Controller) FireReleased() {
	c.cancelAuto()
}

// Reload begins a reload.
//
// Postcondition: returns true when a reload was scheduled; false with no change
// when detached, already reloading, with a full rack, or with no spare rack.
func (c *Controller) Reload() bool {
	if !c.armed() || c.reloading || !c.owner.CombatState().CanReload() {
		return false
	}
	c.reloading = true
	c.cue(event.CueReload, c.cues.Reload)
	c.reloadTimer = c.sched.Schedule(c.tuning.ReloadDelay, false, c.reloadAmmoReset)
	return true
}

// ToggleMode flips between Single and Auto. Weapons with one mode ignore it.
func (c *Controller) ToggleMode() {
	if len(c.modes) < 2 {
		return
	}
	c.mode = c.mode.Toggle()
	if c.tuning.ToggleCancelsAuto && c.mode != FiringModeAuto {
		c.cancelAuto()
	}
	if c.owner != nil {
		c.publishAmmo()
	}
}

func (c *Controller) armed() bool {
	return c.owner != nil && c.owner.HasController()
}

func (c *Controller) cancelAuto() {
	c.sched.Cancel(c.autoTimer)
	c.autoTimer = 0
}

func (c *Controller) autoTick() {
	if c.owner == nil {
		c.cancelAuto()
		return
	}
	if c.reloading {
		return
	}
	if c.owner.CombatState().ShotsLeft() == 0 {
		c.cancelAuto()
		return
	}
	c.fireAndHit()
}

func (c *Controller) reloadAmmoReset() {
	c.reloadTimer = 0
	c.reloading = false
	if c.owner == nil {
		return
	}
	if !c.owner.CombatState().Reload() {
		c.logger.Debug("reload lapsed without ammo")
	}
	c.publishAmmo()
}

func (c *Controller) fireAndHit() {
	st := c.owner.CombatState()
	if c.mode == FiringModeAuto && st.ShotsLeft() == 0 {
		c.cancelAuto()
		return
	}
	if !st.ConsumeShot() {
		return
	}
	c.publishAmmo()

	m := c.owner.Muzzle()
	fwd := m.Forward.Normalize()
	origin := m.Position.Add(fwd.Scale(c.tuning.MuzzleOffset))
	out := c.resolver.Resolve(origin, fwd, c.tuning.MaxRange, c.owner, c.owner.Instigator())

	c.pub.Publish(event.ShotResolved{
		CharacterID:    c.owner.ID(),
		WeaponID:       c.weaponID,
		Classification: out.Classification.String(),
		TargetID:       out.TargetID(),
		Impact:         out.Point,
	})
	c.cue(event.CueFire, c.cues.Fire)
	c.cue(event.CueFireAnimation, c.cues.FireAnimation)

	shot := Shot{CharacterID: c.owner.ID(), WeaponID: c.weaponID, ShotsLeft: st.ShotsLeft(), Outcome: out}
	for _, o := range c.observers {
		o.OnShot(shot)
	}
}

func (c *Controller) cue(kind event.CueKind, asset string) {
	if asset == "" || c.owner == nil {
		return
	}
	c.pub.Publish(event.Cue{CharacterID: c.owner.ID(), Cue: kind, Asset: asset})
}

func (c *Controller) publishAmmo() {
	st := c.owner.CombatState()
	c.pub.Publish(event.AmmoChanged{
		CharacterID:  c.owner.ID(),
		ShotsPerRack: st.ShotsPerRack(),
		ShotsLeft:    st.ShotsLeft(),
		AmmoRacks:    st.AmmoRacks(),
		Mode:         string(c.mode),
	})
}
