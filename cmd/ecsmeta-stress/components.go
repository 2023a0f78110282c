package main

import (
	"math/rand"

	"github.com/brennic/ecsmeta/ecsmeta"
)

// Position, Velocity, and Health are the stress test's stand-in component
// set: enough of a mix to exercise AddComponent, multi-component signature
// matching, and a per-entity tag check together.
type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	HP int
}

// Dead is a tag: entities with it are excluded from the movement pass.
type Dead struct{}

var (
	bitPosition int
	bitVelocity int
	bitHealth   int
	bitDead     int
)

func registerComponents(registry *ecsmeta.TypeRegistry) {
	bitPosition = ecsmeta.RegisterComponent[Position](registry)
	bitVelocity = ecsmeta.RegisterComponent[Velocity](registry)
	bitHealth = ecsmeta.RegisterComponent[Health](registry)
	bitDead = ecsmeta.RegisterTag[Dead](registry)
}

// spawnRandomEntity creates one entity and rolls each weighted component
// independently.
func spawnRandomEntity(m *ecsmeta.Manager, weights map[string]float64) ecsmeta.EntityID {
	e := m.AddEntity()
	if rand.Float64() < weights["position"] {
		ecsmeta.AddComponent(m, e, Position{X: rand.Float64() * 100, Y: rand.Float64() * 100})
	}
	if rand.Float64() < weights["velocity"] {
		ecsmeta.AddComponent(m, e, Velocity{X: rand.Float64()*2 - 1, Y: rand.Float64()*2 - 1})
	}
	if rand.Float64() < weights["health"] {
		ecsmeta.AddComponent(m, e, Health{HP: 100})
	}
	if rand.Float64() < weights["dead"] {
		ecsmeta.AddTag[Dead](m, e)
	}
	return e
}

// movingBody is the signature a movement tick matches against: Position and
// Velocity present. Dead absent is checked inside the movement callback,
// since a Signature struct's fields only express "required", never "excluded".
type movingBody struct {
	Position *Position
	Velocity *Velocity
}
