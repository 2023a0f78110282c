// Package ecsmeta implements the core of a data-oriented entity-component-meta
// system: component ownership and tags are bits in a per-entity signature bitset,
// components live in parallel typed columns indexed directly by entity id, and
// queries filter entities by ANDing a query's bitmask against each entity's
// signature. Iteration over a matching signature can optionally run on an
// embedded, re-enterable worker pool.
//
// The package is infallible at the API boundary: bad entity ids, unregistered
// component/tag types, and unknown stored-function ids degrade to a no-op or
// a false/zero-value return rather than an error. See Manager for the entity
// and component API, Bitset for the signature representation, and WorkerPool
// for the task-dispatch substrate used by parallel queries.
package ecsmeta
