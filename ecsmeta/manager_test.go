package ecsmeta_test

import (
	"testing"

	"github.com/brennic/ecsmeta/ecsmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEntityAssignsSequentialIds(t *testing.T) {
	m := newTestManager()

	a := m.AddEntity()
	b := m.AddEntity()

	assert.Equal(t, ecsmeta.EntityID(0), a)
	assert.Equal(t, ecsmeta.EntityID(1), b)
	assert.Equal(t, 2, m.CurrentSize())
	assert.True(t, m.IsAlive(a))
	assert.True(t, m.IsAlive(b))
}

func TestDeleteEntityRecyclesId(t *testing.T) {
	m := newTestManager()

	a := m.AddEntity()
	m.DeleteEntity(a)

	assert.False(t, m.IsAlive(a))
	assert.True(t, m.HasEntity(a), "a deleted id is still known, just not alive")
	assert.Equal(t, 0, m.CurrentSize())

	b := m.AddEntity()
	assert.Equal(t, a, b, "AddEntity should recycle the most recently freed id")
}

func TestDeleteEntityIsIdempotent(t *testing.T) {
	m := newTestManager()
	a := m.AddEntity()

	m.DeleteEntity(a)
	m.DeleteEntity(a)

	assert.False(t, m.IsAlive(a))
	assert.Equal(t, 0, m.CurrentSize())
}

func TestHasEntityOnUnknownId(t *testing.T) {
	m := newTestManager()
	assert.False(t, m.HasEntity(ecsmeta.EntityID(999)))
	assert.False(t, m.IsAlive(ecsmeta.EntityID(999)))
}

func TestCapacityGrowsPastInitialAllocation(t *testing.T) {
	m := newTestManager(ecsmeta.WithCapacity(2), ecsmeta.WithGrowthIncrement(2))
	require.Equal(t, 2, m.CurrentCapacity())

	m.AddEntity()
	m.AddEntity()
	assert.Equal(t, 2, m.CurrentCapacity())

	m.AddEntity()
	assert.Equal(t, 4, m.CurrentCapacity(), "a third entity should have grown capacity by one increment")
	assert.Equal(t, 3, m.CurrentSize())
}

func TestAddComponentRoundTrip(t *testing.T) {
	m := newTestManager()
	e := m.AddEntity()

	ecsmeta.AddComponent(m, e, Position{X: 1, Y: 2})

	assert.True(t, ecsmeta.HasComponent[Position](m, e))
	pos, ok := ecsmeta.Component[Position](m, e)
	require.True(t, ok)
	assert.Equal(t, Position{X: 1, Y: 2}, *pos)
}

func TestAddComponentOverwritesExistingValue(t *testing.T) {
	m := newTestManager()
	e := m.AddEntity()

	ecsmeta.AddComponent(m, e, Position{X: 1, Y: 2})
	ecsmeta.AddComponent(m, e, Position{X: 3, Y: 4})

	pos, ok := ecsmeta.Component[Position](m, e)
	require.True(t, ok)
	assert.Equal(t, Position{X: 3, Y: 4}, *pos)
}

func TestRemoveComponentClearsOwnershipNotStorage(t *testing.T) {
	m := newTestManager()
	e := m.AddEntity()
	ecsmeta.AddComponent(m, e, Position{X: 1, Y: 2})

	ecsmeta.RemoveComponent[Position](m, e)

	assert.False(t, ecsmeta.HasComponent[Position](m, e))
	_, ok := ecsmeta.Component[Position](m, e)
	assert.False(t, ok, "Component's ok return should track ownership, not cell contents")
}

func TestComponentOnDeadEntityStillReturnsAPointer(t *testing.T) {
	m := newTestManager()
	e := m.AddEntity()
	ecsmeta.AddComponent(m, e, Position{X: 1, Y: 2})
	m.DeleteEntity(e)

	pos, ok := ecsmeta.Component[Position](m, e)
	assert.NotNil(t, pos, "a deleted id is still a known slot, so its cell pointer is returned")
	assert.False(t, ok, "a dead entity's bit is cleared on delete, so ownership reads false")
}

func TestAddComponentOnDeadEntityIsNoop(t *testing.T) {
	m := newTestManager()
	e := m.AddEntity()
	m.DeleteEntity(e)

	ecsmeta.AddComponent(m, e, Position{X: 9, Y: 9})

	assert.False(t, ecsmeta.HasComponent[Position](m, e))
}

func TestTagOps(t *testing.T) {
	m := newTestManager()
	e := m.AddEntity()

	assert.False(t, ecsmeta.HasTag[Dead](m, e))

	ecsmeta.AddTag[Dead](m, e)
	assert.True(t, ecsmeta.HasTag[Dead](m, e))

	ecsmeta.RemoveTag[Dead](m, e)
	assert.False(t, ecsmeta.HasTag[Dead](m, e))
}

func TestComponentPointerIsStableAcrossGrowth(t *testing.T) {
	m := newTestManager(ecsmeta.WithCapacity(2), ecsmeta.WithGrowthIncrement(2))
	e := m.AddEntity()
	ecsmeta.AddComponent(m, e, Position{X: 1, Y: 1})

	pos, ok := ecsmeta.Component[Position](m, e)
	require.True(t, ok)

	for i := 0; i < 500; i++ {
		m.AddEntity()
	}

	assert.Equal(t, Position{X: 1, Y: 1}, *pos, "growing past many growth increments must not move a previously issued component pointer")

	pos2, ok := ecsmeta.Component[Position](m, e)
	require.True(t, ok)
	assert.Same(t, pos, pos2, "Component must keep returning the same address across growth")
}

func TestResetClearsEntitiesAndFunctionsButKeepsRegistry(t *testing.T) {
	m := newTestManager()
	e := m.AddEntity()
	ecsmeta.AddComponent(m, e, Position{X: 1, Y: 2})
	ecsmeta.AddForMatchingFunction[movingBody](m, func(ecsmeta.EntityID, any, *movingBody) {}, nil)

	m.Reset()

	assert.Equal(t, 0, m.CurrentSize())
	assert.Equal(t, ecsmeta.DefaultCapacity, m.CurrentCapacity())
	assert.False(t, m.CallForMatchingFunction(ecsmeta.FnID(0), false))

	e2 := m.AddEntity()
	ecsmeta.AddComponent(m, e2, Position{X: 5, Y: 5})
	assert.True(t, ecsmeta.HasComponent[Position](m, e2), "the component type set must survive Reset")
}
