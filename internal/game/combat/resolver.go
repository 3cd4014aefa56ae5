package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunfire/internal/game/geom"
)

//go:generate go tool mockgen -destination=./mocks/combat_mock.go -package=mocks . RayCaster,PhysicsBody,Damageable,Target

// Classification is the category of a resolved shot.
type Classification int

const (
	// NoHit means nothing was struck within range.
	NoHit Classification = iota
	// Blocked means the ray was obstructed at the impact point.
	Blocked
	// GlancedNoBlock means the ray touched an overlap-only object.
	GlancedNoBlock
)

// String returns the wire name of the classification.
func (c Classification) String() string {
	switch c {
	case Blocked:
		return "blocked"
	case GlancedNoBlock:
		return "glanced"
	default:
		return "no_hit"
	}
}

// Contact is the kind of touch a ray query reports.
type Contact int

const (
	ContactNone Contact = iota
	ContactOverlap
	ContactBlocking
)

// Query is a single nearest-surface ray query.
type Query struct {
	Origin    geom.Vec3
	Direction geom.Vec3 // unit length
	MaxRange  float64
	// ExcludeID is the ID of a target the query must ignore.
	ExcludeID string
}

// End returns the far end of the query segment.
func (q Query) End() geom.Vec3 {
	return q.Origin.Add(q.Direction.Scale(q.MaxRange))
}

// Hit is the answer to a Query. Target is nil for static world geometry.
type Hit struct {
	Contact Contact
	Point   geom.Vec3
	Normal  geom.Vec3
	Target  Target
}

// RayCaster answers ray queries against the world. Implementations return the
// nearest blocking hit when one exists, otherwise the nearest overlap-only
// touch, otherwise a Hit with ContactNone. Pass-through objects and the
// excluded target never block.
type RayCaster interface {
	RayCast(q Query) Hit
}

// Instigator attributes damage to the controller and character that caused it.
type Instigator struct {
	ControllerID string
	CharacterID  string
}

// PhysicsBody is the physics component of a struck object.
type PhysicsBody interface {
	Simulated() bool
	AddImpulseAt(impulse, point geom.Vec3)
}

// Damageable is the damage entry point of a character.
type Damageable interface {
	TakeDamage(amount float64, by Instigator)
}

// Target is anything a ray can strike. Its capabilities are fixed when the
// entity is constructed: Body returns nil when there is no physics component,
// Damageable returns nil for objects that are not damageable characters.
type Target interface {
	ID() string
	Name() string
	Body() PhysicsBody
	Damageable() Damageable
}

// Outcome is the result of one resolution.
type Outcome struct {
	Classification Classification
	// Target is nil for NoHit and for static geometry.
	Target     Target
	Point      geom.Vec3
	Normal     geom.Vec3
	Simulated  bool
	Damageable bool
}

// TargetName returns the struck target's name, or "" when none.
func (o Outcome) TargetName() string {
	if o.Target == nil {
		return ""
	}
	return o.Target.Name()
}

// TargetID returns the struck target's ID, or "" when none.
func (o Outcome) TargetID() string {
	if o.Target == nil {
		return ""
	}
	return o.Target.ID()
}

// TraceColor is the debug color of a trace segment.
type TraceColor string

const (
	TraceRed    TraceColor = "red"
	TraceYellow TraceColor = "yellow"
	TraceGreen  TraceColor = "green"
)

// Trace is a diagnostic segment drawn for every resolution.
type Trace struct {
	Color   TraceColor
	Start   geom.Vec3
	End     geom.Vec3
	Persist time.Duration
}

// TraceSink draws debug traces. It has no gameplay effect.
type TraceSink interface {
	DrawTrace(t Trace)
}

// LogTraceSink writes traces to a logger at Debug level.
type LogTraceSink struct {
	Logger *zap.Logger
}

// DrawTrace implements TraceSink.
func (s LogTraceSink) DrawTrace(t Trace) {
	if s.Logger == nil {
		return
	}
	s.Logger.Debug("trace",
		zap.String("color", string(t.Color)),
		zap.Any("start", t.Start),
		zap.Any("end", t.End),
		zap.Duration("persist", t.Persist),
	)
}

// ResolverConfig holds hit-resolution tuning.
type ResolverConfig struct {
	Impulse      float64
	Damage       float64
	TracePersist time.Duration
}

// DefaultResolverConfig returns impulse 100000, damage 0.1 and a one second trace.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{Impulse: 100000, Damage: 0.1, TracePersist: time.Second}
}

// Resolver performs hit-scan resolution. It keeps no state between calls.
type Resolver struct {
	caster RayCaster
	cfg    ResolverConfig
	sink   TraceSink
	logger *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: caster must not be nil. sink and logger may be nil.
func NewResolver(caster RayCaster, cfg ResolverConfig, sink TraceSink, logger *zap.Logger) *Resolver {
	if caster == nil {
		panic("combat: NewResolver: caster must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{caster: caster, cfg: cfg, sink: sink, logger: logger}
}

// Resolve casts a ray from origin along direction and applies the side effects
// of whatever it strikes. shooter is never a candidate target.
//
// Precondition: maxRange > 0.
// Postcondition: Blocked hits push simulated bodies away along -normal and
// damage damageable characters once; GlancedNoBlock and NoHit have no effects.
func (r *Resolver) Resolve(origin, direction geom.Vec3, maxRange float64, shooter Target, by Instigator) Outcome {
	q := Query{Origin: origin, Direction: direction.Normalize(), MaxRange: maxRange}
	if shooter != nil {
		q.ExcludeID = shooter.ID()
	}
	if q.Direction.IsZero() {
		r.draw(TraceGreen, origin, origin)
		return Outcome{Classification: NoHit}
	}

	hit := r.caster.RayCast(q)
	if hit.Target != nil && q.ExcludeID != "" && hit.Target.ID() == q.ExcludeID {
		hit = Hit{Contact: ContactNone}
	}

	switch hit.Contact {
	case ContactBlocking:
		out := Outcome{Classification: Blocked, Target: hit.Target, Point: hit.Point, Normal: hit.Normal}
		r.applyEffects(&out, by)
		r.draw(TraceRed, origin, hit.Point)
		return out
	case ContactOverlap:
		r.draw(TraceYellow, origin, hit.Point)
		return Outcome{Classification: GlancedNoBlock, Target: hit.Target, Point: hit.Point, Normal: hit.Normal}
	default:
		r.draw(TraceGreen, origin, q.End())
		return Outcome{Classification: NoHit}
	}
}

// applyEffects pushes and damages the struck target. An unnamed target or one
// without the relevant component is inert.
func (r *Resolver) applyEffects(out *Outcome, by Instigator) {
	t := out.Target
	if t == nil || t.Name() == "" {
		return
	}
	if body := t.Body(); body != nil && body.Simulated() {
		out.Simulated = true
		body.AddImpulseAt(out.Normal.Scale(-r.cfg.Impulse), out.Point)
	}
	if d := t.Damageable(); d != nil {
		out.Damageable = true
		if t.ID() != by.CharacterID {
			d.TakeDamage(r.cfg.Damage, by)
		}
	}
	r.logger.Debug("blocking hit",
		zap.String("target", t.Name()),
		zap.Bool("simulated", out.Simulated),
		zap.Bool("damageable", out.Damageable),
	)
}

func (r *Resolver) draw(c TraceColor, start, end geom.Vec3) {
	if r.sink == nil {
		return
	}
	r.sink.DrawTrace(Trace{Color: c, Start: start, End: end, Persist: r.cfg.TracePersist})
}
