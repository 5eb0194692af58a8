package bt

import "github.com/overmind-sim/overmind/internal/agent/world"

// Blackboard is per-agent typed scratch memory shared between tree ticks.
//
// It carries ephemeral signals (current target, move destination, patrol
// index) between nodes without routing through the orchestrator. Keys are
// unique; a Set on an existing key overwrites unconditionally.
type Blackboard struct {
	values map[string]any
}

// NewBlackboard returns an empty Blackboard.
func NewBlackboard() *Blackboard {
	return &Blackboard{values: make(map[string]any)}
}

// GetBool returns the bool stored under key.
// Postcondition: ok is false on a missing key or a type mismatch; no coercion.
func (b *Blackboard) GetBool(key string) (bool, bool) {
	v, ok := b.values[key].(bool)
	return v, ok
}

// GetFloat returns the float64 stored under key.
// Postcondition: ok is false on a missing key or a type mismatch; no coercion.
func (b *Blackboard) GetFloat(key string) (float64, bool) {
	v, ok := b.values[key].(float64)
	return v, ok
}

// GetInt returns the int stored under key.
// Postcondition: ok is false on a missing key or a type mismatch; no coercion.
func (b *Blackboard) GetInt(key string) (int, bool) {
	v, ok := b.values[key].(int)
	return v, ok
}

// GetString returns the string stored under key.
// Postcondition: ok is false on a missing key or a type mismatch; no coercion.
func (b *Blackboard) GetString(key string) (string, bool) {
	v, ok := b.values[key].(string)
	return v, ok
}

// GetVec3 returns the world.Vec3 stored under key.
// Postcondition: ok is false on a missing key or a type mismatch; no coercion.
func (b *Blackboard) GetVec3(key string) (world.Vec3, bool) {
	v, ok := b.values[key].(world.Vec3)
	return v, ok
}

// GetEntity returns the world.EntityID stored under key.
// Postcondition: ok is false on a missing key or a type mismatch; no coercion.
func (b *Blackboard) GetEntity(key string) (world.EntityID, bool) {
	v, ok := b.values[key].(world.EntityID)
	return v, ok
}

// SetBool stores value under key, overwriting any previous entry.
func (b *Blackboard) SetBool(key string, value bool) { b.values[key] = value }

// SetFloat stores value under key, overwriting any previous entry.
func (b *Blackboard) SetFloat(key string, value float64) { b.values[key] = value }

// SetInt stores value under key, overwriting any previous entry.
func (b *Blackboard) SetInt(key string, value int) { b.values[key] = value }

// SetString stores value under key, overwriting any previous entry.
func (b *Blackboard) SetString(key string, value string) { b.values[key] = value }

// SetVec3 stores value under key, overwriting any previous entry.
func (b *Blackboard) SetVec3(key string, value world.Vec3) { b.values[key] = value }

// SetEntity stores value under key, overwriting any previous entry.
func (b *Blackboard) SetEntity(key string, value world.EntityID) { b.values[key] = value }

// Delete removes key; deleting a missing key is a no-op.
func (b *Blackboard) Delete(key string) {
	delete(b.values, key)
}

// Len returns the number of stored keys.
func (b *Blackboard) Len() int {
	return len(b.values)
}
