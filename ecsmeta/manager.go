package ecsmeta

import "reflect"

// Default configuration constants.
const (
	// DefaultCapacity is the number of entity slots pre-allocated on
	// construction and on Reset.
	DefaultCapacity = 256
	// GrowthIncrement is added to capacity every time AddEntity hits the cap.
	GrowthIncrement = 256
	// DefaultWorkerCount is the number of goroutines spawned per
	// WorkerPool.Start when no WithWorkerCount option is given.
	DefaultWorkerCount = 4
	// ShardFactor is the multiplier applied to the worker count when
	// partitioning a parallel query into shards.
	ShardFactor = 2
)

// ManagerOption configures a Manager at construction.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	capacity    int
	growth      int
	workerCount int
	shardFactor int
}

// WithCapacity overrides the initial entity capacity.
func WithCapacity(n int) ManagerOption {
	return func(c *managerConfig) { c.capacity = n }
}

// WithGrowthIncrement overrides the capacity growth step.
func WithGrowthIncrement(n int) ManagerOption {
	return func(c *managerConfig) { c.growth = n }
}

// WithWorkerCount overrides the number of goroutines the Manager's worker
// pool spawns per Start. A count below 2 makes the pool synchronous.
func WithWorkerCount(n int) ManagerOption {
	return func(c *managerConfig) { c.workerCount = n }
}

// WithShardFactor overrides the shard multiplier used to partition parallel
// queries.
func WithShardFactor(n int) ManagerOption {
	return func(c *managerConfig) { c.shardFactor = n }
}

// Manager is the entity, component, tag, and query store. It is
// parameterised over the component set C and tag set T collected in a
// TypeRegistry at construction; that set never changes for the lifetime of
// the Manager.
//
// Manager is single-threaded for structural mutations (AddEntity,
// DeleteEntity, AddComponent/RemoveComponent, AddTag/RemoveTag, the
// ForMatchingFunction family, Reset): the library does not lock these, the
// caller's contract is to not call them concurrently with each other or with
// a running query.
type Manager struct {
	registry *TypeRegistry
	numBits  int

	entities []entitySlot
	columns  []anyColumn
	size     int
	capacity int
	free     []EntityID

	growth      int
	shardFactor int

	functions *functionRegistry
	pool      *WorkerPool

	signatureCache map[reflect.Type]*signatureInfo
}

// NewManager builds a Manager over the component and tag set collected in
// registry. registry must not be mutated after this call; its bit layout is
// now load-bearing.
func NewManager(registry *TypeRegistry, opts ...ManagerOption) *Manager {
	cfg := managerConfig{
		capacity:    DefaultCapacity,
		growth:      GrowthIncrement,
		workerCount: DefaultWorkerCount,
		shardFactor: ShardFactor,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Manager{
		registry:       registry,
		numBits:        registry.numBits(),
		growth:         cfg.growth,
		shardFactor:    cfg.shardFactor,
		functions:      newFunctionRegistry(),
		pool:           NewWorkerPool(cfg.workerCount),
		signatureCache: make(map[reflect.Type]*signatureInfo),
	}
	m.initStorage(cfg.capacity)
	return m
}

func (m *Manager) initStorage(capacity int) {
	m.capacity = capacity
	m.entities = make([]entitySlot, capacity)
	for i := range m.entities {
		m.entities[i].bitset = newBitset(m.numBits)
	}
	m.columns = make([]anyColumn, len(m.registry.entries))
	for i, e := range m.registry.entries {
		if e.newColumn != nil {
			m.columns[i] = e.newColumn(capacity)
		}
	}
	m.size = 0
	m.free = m.free[:0]
}

func (m *Manager) grow(increment int) {
	newCap := m.capacity + increment
	grown := make([]entitySlot, newCap)
	copy(grown, m.entities)
	for i := m.capacity; i < newCap; i++ {
		grown[i].bitset = newBitset(m.numBits)
	}
	m.entities = grown
	for _, col := range m.columns {
		if col != nil {
			col.grow(newCap)
		}
	}
	m.capacity = newCap
}

// AddEntity allocates a new entity, either by recycling an id from the free
// list or, if the free list is empty, by growing capacity (if size has hit
// the cap) and taking the next id in sequence. The returned id is stable
// until DeleteEntity is called on it.
func (m *Manager) AddEntity() EntityID {
	if n := len(m.free); n > 0 {
		id := m.free[n-1]
		m.free = m.free[:n-1]
		m.entities[id].alive = true
		return id
	}
	if m.size == m.capacity {
		m.grow(m.growth)
	}
	id := EntityID(m.size)
	m.size++
	m.entities[id].alive = true
	return id
}

// DeleteEntity marks e dead, clears its bitset, and returns its id to the
// free list for later reuse. Deleting an id that is already dead, or out of
// range, is a no-op.
func (m *Manager) DeleteEntity(e EntityID) {
	if !m.IsAlive(e) {
		return
	}
	m.entities[e].alive = false
	m.entities[e].bitset.reset()
	m.free = append(m.free, e)
}

// HasEntity reports whether e is within the range of ever-allocated entity
// slots. It says nothing about whether e is currently alive.
func (m *Manager) HasEntity(e EntityID) bool {
	return int(e) < m.size
}

// IsAlive reports whether e is a currently live entity.
func (m *Manager) IsAlive(e EntityID) bool {
	return m.HasEntity(e) && m.entities[e].alive
}

// CurrentSize returns the number of alive entities.
func (m *Manager) CurrentSize() int {
	return m.size - len(m.free)
}

// CurrentCapacity returns the number of pre-allocated entity slots.
func (m *Manager) CurrentCapacity() int {
	return m.capacity
}

// Reset drops every registered stored function, empties every entity, and
// resets capacity to DefaultCapacity. The component and tag set registered
// at construction is unaffected.
func (m *Manager) Reset() {
	m.functions.clear()
	m.initStorage(DefaultCapacity)
}

// Pool returns the Manager's worker pool, for callers that want to queue
// their own tasks alongside the pool's use by parallel queries.
func (m *Manager) Pool() *WorkerPool {
	return m.pool
}

func bitFor[T any](m *Manager) (int, bool) {
	return m.registry.lookupBit(typeFor[T]())
}

// AddComponent constructs C from value and move-assigns it into the column
// slot for e, setting e's bit for C. If e already owns C, the previous value
// is overwritten. A no-op if e is not alive or C was never registered.
func AddComponent[T any](m *Manager, e EntityID, value T) {
	if !m.IsAlive(e) {
		return
	}
	bit, ok := bitFor[T](m)
	if !ok {
		return
	}
	col := m.columns[bit]
	if col == nil {
		return
	}
	*typed[T](col, e) = value
	m.entities[e].bitset.Set(bit)
}

// RemoveComponent clears e's bit for C. Storage is left untouched: the cell
// is simply unowned until the bit is set again. A no-op if e is not alive or
// C was never registered.
func RemoveComponent[T any](m *Manager, e EntityID) {
	if !m.IsAlive(e) {
		return
	}
	bit, ok := bitFor[T](m)
	if !ok {
		return
	}
	m.entities[e].bitset.Clear(bit)
}

// HasComponent reports whether e owns component C.
func HasComponent[T any](m *Manager, e EntityID) bool {
	if !m.HasEntity(e) {
		return false
	}
	bit, ok := bitFor[T](m)
	if !ok {
		return false
	}
	return m.entities[e].bitset.Bit(bit)
}

// Component returns a pointer to e's C storage cell and whether e actually
// owns C. The pointer is returned whenever C is a registered component and e
// is a known entity id, regardless of ownership — callers must check the
// second return value (or call HasComponent) before trusting its contents;
// the unowned case is deliberately left undefined rather than zeroed on
// every RemoveComponent. Component pointers are stable for the Manager's
// lifetime: the column backing them is never defragmented.
func Component[T any](m *Manager, e EntityID) (*T, bool) {
	if !m.HasEntity(e) {
		return nil, false
	}
	bit, ok := bitFor[T](m)
	if !ok {
		return nil, false
	}
	col := m.columns[bit]
	if col == nil {
		return nil, false
	}
	return typed[T](col, e), m.entities[e].bitset.Bit(bit)
}

// AddTag sets e's bit for tag Tag. A no-op if e is not alive or Tag was
// never registered.
func AddTag[Tag any](m *Manager, e EntityID) {
	if !m.IsAlive(e) {
		return
	}
	bit, ok := bitFor[Tag](m)
	if !ok {
		return
	}
	m.entities[e].bitset.Set(bit)
}

// RemoveTag clears e's bit for tag Tag. A no-op if e is not alive or Tag was
// never registered.
func RemoveTag[Tag any](m *Manager, e EntityID) {
	if !m.IsAlive(e) {
		return
	}
	bit, ok := bitFor[Tag](m)
	if !ok {
		return
	}
	m.entities[e].bitset.Clear(bit)
}

// HasTag reports whether e owns tag Tag.
func HasTag[Tag any](m *Manager, e EntityID) bool {
	if !m.HasEntity(e) {
		return false
	}
	bit, ok := bitFor[Tag](m)
	if !ok {
		return false
	}
	return m.entities[e].bitset.Bit(bit)
}
