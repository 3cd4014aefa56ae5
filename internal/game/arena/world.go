// Package arena is the in-process authoritative world: spherical bodies, the
// ray query the combat core consumes, and the wiring of characters, weapons
// and pickups onto the frame loop.
package arena

import (
	"math"
	"sort"
	"time"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
	"github.com/cory-johannsen/gunfire/internal/game/geom"
)

// Body is a sphere in the world.
//
// Invariant: Radius > 0; Mass > 0.
type Body struct {
	id          string
	position    geom.Vec3
	velocity    geom.Vec3
	radius      float64
	mass        float64
	simulated   bool
	passThrough bool
	owner       combat.Target
}

func (b *Body) ID() string          { return b.id }
func (b *Body) Position() geom.Vec3 { return b.position }
func (b *Body) Velocity() geom.Vec3 { return b.velocity }
func (b *Body) Radius() float64     { return b.radius }
func (b *Body) Simulated() bool     { return b.simulated }
func (b *Body) PassThrough() bool   { return b.passThrough }

// AddImpulseAt changes the body's velocity by impulse/mass. Only simulated
// bodies move; the application point does not induce spin on a sphere.
func (b *Body) AddImpulseAt(impulse, _ geom.Vec3) {
	if !b.simulated {
		return
	}
	b.velocity = b.velocity.Add(impulse.Scale(1 / b.mass))
}

// Prop is a non-character target such as a crate or a trigger volume.
type Prop struct {
	name string
	body *Body
}

func (p *Prop) ID() string                    { return p.body.id }
func (p *Prop) Name() string                  { return p.name }
func (p *Prop) Body() combat.PhysicsBody      { return p.body }
func (p *Prop) Damageable() combat.Damageable { return nil }
func (p *Prop) Sphere() *Body                 { return p.body }

// World holds bodies and answers ray queries. It is owned by the frame thread.
type World struct {
	bodies map[string]*Body
	// Damping is the fraction of velocity lost per second by simulated bodies.
	Damping float64
}

// NewWorld returns an empty World.
func NewWorld() *World {
	return &World{bodies: make(map[string]*Body), Damping: 0.5}
}

// Add inserts a body for owner.
//
// Precondition: radius > 0 and mass > 0 (panics otherwise); id is unique.
func (w *World) Add(id string, owner combat.Target, at geom.Vec3, radius, mass float64, simulated, passThrough bool) *Body {
	if radius <= 0 || mass <= 0 {
		panic("arena: World.Add: radius and mass must be > 0")
	}
	b := &Body{
		id:          id,
		position:    at,
		radius:      radius,
		mass:        mass,
		simulated:   simulated,
		passThrough: passThrough,
		owner:       owner,
	}
	w.bodies[id] = b
	return b
}

// Remove deletes the body with id. Unknown ids are ignored.
func (w *World) Remove(id string) { delete(w.bodies, id) }

// Body returns the body with id, or nil.
func (w *World) Body(id string) *Body { return w.bodies[id] }

// Len returns the number of bodies.
func (w *World) Len() int { return len(w.bodies) }

// Move sets a body's position. Unknown ids are ignored.
func (w *World) Move(id string, to geom.Vec3) {
	if b, ok := w.bodies[id]; ok {
		b.position = to
	}
}

// RayCast implements combat.RayCaster with ray-sphere intersection. A ray that
// starts inside a sphere touches it at the origin.
func (w *World) RayCast(q combat.Query) combat.Hit {
	var block, overlap *combat.Hit
	blockT, overlapT := math.Inf(1), math.Inf(1)
	for _, b := range w.sorted() {
		if b.id == q.ExcludeID || b.owner == nil {
			continue
		}
		t, ok := intersect(q.Origin, q.Direction, b.position, b.radius)
		if !ok || t > q.MaxRange {
			continue
		}
		point := q.Origin.Add(q.Direction.Scale(t))
		normal := point.Sub(b.position).Normalize()
		if normal.IsZero() {
			normal = q.Direction.Scale(-1)
		}
		hit := &combat.Hit{Point: point, Normal: normal, Target: b.owner}
		if b.passThrough {
			if t < overlapT {
				hit.Contact = combat.ContactOverlap
				overlap, overlapT = hit, t
			}
			continue
		}
		if t < blockT {
			hit.Contact = combat.ContactBlocking
			block, blockT = hit, t
		}
	}
	switch {
	case block != nil:
		return *block
	case overlap != nil:
		return *overlap
	default:
		return combat.Hit{Contact: combat.ContactNone}
	}
}

// Step integrates simulated bodies over dt.
func (w *World) Step(dt time.Duration) {
	s := dt.Seconds()
	if s <= 0 {
		return
	}
	keep := math.Max(0, 1-w.Damping*s)
	for _, b := range w.bodies {
		if !b.simulated || b.velocity.IsZero() {
			continue
		}
		b.position = b.position.Add(b.velocity.Scale(s))
		b.velocity = b.velocity.Scale(keep)
	}
}

// Touching reports whether bodies a and b overlap.
func (w *World) Touching(a, b string) bool {
	ba, bb := w.bodies[a], w.bodies[b]
	if ba == nil || bb == nil {
		return false
	}
	return ba.position.Sub(bb.position).Len() <= ba.radius+bb.radius
}

// sorted returns the bodies in ID order so that equal-distance hits resolve deterministically.
func (w *World) sorted() []*Body {
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// intersect returns the smallest t >= 0 where origin+dir*t lies on the sphere.
func intersect(origin, dir, center geom.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	if oc.Dot(oc) <= radius*radius {
		return 0, true
	}
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		return 0, false
	}
	return t, true
}
