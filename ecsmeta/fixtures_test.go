package ecsmeta_test

import "github.com/brennic/ecsmeta/ecsmeta"

// Position, Velocity, Health, and Dead are a small representative
// component/tag mix shared across the black-box test files.
type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }
type Health struct{ HP int }
type Dead struct{}

// Unregistered never gets registered on the test registry, used to exercise
// the "pointer field names an unknown type" path of a Signature struct.
type Unregistered struct{ N int }

func newTestRegistry() *ecsmeta.TypeRegistry {
	registry := ecsmeta.NewTypeRegistry()
	ecsmeta.RegisterComponent[Position](registry)
	ecsmeta.RegisterComponent[Velocity](registry)
	ecsmeta.RegisterComponent[Health](registry)
	ecsmeta.RegisterTag[Dead](registry)
	return registry
}

func newTestManager(opts ...ecsmeta.ManagerOption) *ecsmeta.Manager {
	return ecsmeta.NewManager(newTestRegistry(), opts...)
}

type movingBody struct {
	Position *Position
	Velocity *Velocity
}

type deadBody struct {
	Position *Position
	_        ecsmeta.Tag[Dead]
}

type withUnregistered struct {
	Position     *Position
	Unregistered *Unregistered
}
