// Package world defines the read-only context the host simulation supplies
// to the decision engine once per tick: entity identity, positions, and the
// per-agent scalar inputs consumed by utility considerations.
//
// The engine never mutates anything in this package's types; the host builds
// a fresh snapshot each tick and the engine reads from it.
package world

import (
	"math"

	"github.com/google/uuid"
)

// EntityID identifies an entity owned by the host simulation.
// The zero value (NilEntity) means "no entity".
type EntityID uuid.UUID

// NilEntity is the zero EntityID.
var NilEntity EntityID

// NewEntityID returns a fresh random EntityID.
func NewEntityID() EntityID {
	return EntityID(uuid.New())
}

// IsNil reports whether id is the zero EntityID.
func (id EntityID) IsNil() bool {
	return id == NilEntity
}

// String returns the canonical UUID string form of the ID.
func (id EntityID) String() string {
	return uuid.UUID(id).String()
}

// Vec3 is a position or displacement in world space.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the Euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}
