package ecsmeta

import (
	"sync"
	"unsafe"
)

// SimpleFunc is the callback shape for ForMatchingSimple and
// ForMatchingIterable: the matched entity, the Manager itself (so the
// callback can freely call AddEntity/AddComponent/a nested query), and ctx.
type SimpleFunc func(e EntityID, mgr *Manager, ctx any)

// ForMatchingSignature runs fn over every alive entity whose bitset
// satisfies the mask built from T's fields, passing a *T populated with
// pointers into that entity's own component columns. Sequential
// (parallel=false) iteration visits entities in ascending id order;
// parallel iteration makes no ordering promise, but each entity's mask test
// and fn call happen together on one worker.
func ForMatchingSignature[T any](m *Manager, fn SignatureFunc[T], ctx any, parallel bool) {
	info := m.signatureInfoFor(typeFor[T]())
	dispatch(m, info.mask, parallel, func(e EntityID) {
		var row T
		m.populateSignature(info, e, unsafe.Pointer(&row))
		fn(e, ctx, &row)
	})
}

// ForMatchingSignaturePtr is identical to ForMatchingSignature. Some
// languages distinguish a closure form from a function-pointer form to
// avoid a capture allocation; a Go func value is the same thing either way,
// so this exists only for naming parity with the rest of the query family.
func ForMatchingSignaturePtr[T any](m *Manager, fn SignatureFunc[T], ctx any, parallel bool) {
	ForMatchingSignature(m, fn, ctx, parallel)
}

// ForMatchingSimple runs fn over every alive entity matching T's mask,
// without populating any component references: fn receives the Manager
// itself and is free to re-enter it (add/remove entities, components, or
// queue further work) from inside the callback.
func ForMatchingSimple[T any](m *Manager, fn SimpleFunc, ctx any, parallel bool) {
	info := m.signatureInfoFor(typeFor[T]())
	dispatch(m, info.mask, parallel, func(e EntityID) {
		fn(e, m, ctx)
	})
}

// ForMatchingIterable is ForMatchingSimple's runtime-typed sibling: indices
// names a set of bit positions directly instead of through a reflected
// struct type. An index outside 0..numBits-2 routes through the sentinel
// bit, which forces zero matches for the whole call rather than silently
// ignoring just that one index.
func ForMatchingIterable(m *Manager, indices []int, fn SimpleFunc, ctx any, parallel bool) {
	mask := newBitset(m.numBits)
	for _, idx := range indices {
		if idx < 0 || idx >= m.numBits-1 {
			mask.setSentinel()
			continue
		}
		mask.Set(idx)
	}
	dispatch(m, mask, parallel, func(e EntityID) {
		fn(e, m, ctx)
	})
}

// SignatureQuery is one entry of a ForMatchingSignatures batch: a mask
// resolved against a Manager's registry at construction, and a closure that
// knows how to populate and invoke its own callback type.
type SignatureQuery struct {
	mask   Bitset
	invoke func(EntityID)
}

// NewSignatureQuery resolves T's mask against m and binds fn/ctx, ready to
// hand to ForMatchingSignatures alongside other signatures built the same
// way (possibly over different T's).
func NewSignatureQuery[T any](m *Manager, fn SignatureFunc[T], ctx any) SignatureQuery {
	info := m.signatureInfoFor(typeFor[T]())
	return SignatureQuery{
		mask: info.mask,
		invoke: func(e EntityID) {
			var row T
			m.populateSignature(info, e, unsafe.Pointer(&row))
			fn(e, ctx, &row)
		},
	}
}

// ForMatchingSignatures amortises many queries over one pass: it classifies
// every alive entity into zero, one, or many buckets (one per query, an
// entity can satisfy several masks at once) in a single scan, then invokes
// each query's callback on its own bucket, in the order queries were given.
// All of query i's callbacks complete before query i+1's first call begins.
func ForMatchingSignatures(m *Manager, queries []SignatureQuery, parallel bool) {
	if len(queries) == 0 {
		return
	}
	masks := make([]Bitset, len(queries))
	for i, q := range queries {
		masks[i] = q.mask
	}
	buckets := classifyBuckets(m, masks, parallel)
	for i, q := range queries {
		invokeBucket(m, buckets[i], q.invoke, parallel)
	}
}

// ForMatchingSignaturesPtr is identical to ForMatchingSignatures; see
// ForMatchingSignaturePtr for why Go collapses the two forms.
func ForMatchingSignaturesPtr(m *Manager, queries []SignatureQuery, parallel bool) {
	ForMatchingSignatures(m, queries, parallel)
}

// dispatch is the core single-mask iteration primitive: test-and-invoke
// fused per entity, sequential or sharded across the worker pool.
func dispatch(m *Manager, mask Bitset, parallel bool, visit func(EntityID)) {
	if m.size == 0 {
		return
	}
	if !parallel || m.pool.workerCount < 2 {
		for e := EntityID(0); int(e) < m.size; e++ {
			if m.entities[e].alive && m.entities[e].bitset.matches(mask) {
				visit(e)
			}
		}
		return
	}

	shardSize := shardSizeFor(m)
	for start := 0; start < m.size; start += shardSize {
		end := start + shardSize
		if end > m.size {
			end = m.size
		}
		s, e := start, end
		m.pool.Queue(func(ctx any) {
			for i := s; i < e; i++ {
				id := EntityID(i)
				if m.entities[id].alive && m.entities[id].bitset.matches(mask) {
					visit(id)
				}
			}
		}, nil)
	}
	m.pool.EasyStartAndWait()
}

// classifyBuckets runs the single pre-pass ForMatchingSignatures and
// CallForMatchingFunctions both need: one bucket of matching entity ids per
// mask. Sequential classification needs no locking; parallel classification
// shards the entity range and guards each bucket append with its own mutex.
func classifyBuckets(m *Manager, masks []Bitset, parallel bool) [][]EntityID {
	buckets := make([][]EntityID, len(masks))
	if m.size == 0 {
		return buckets
	}

	if !parallel || m.pool.workerCount < 2 {
		for e := EntityID(0); int(e) < m.size; e++ {
			if !m.entities[e].alive {
				continue
			}
			for qi, mask := range masks {
				if m.entities[e].bitset.matches(mask) {
					buckets[qi] = append(buckets[qi], e)
				}
			}
		}
		return buckets
	}

	mus := make([]sync.Mutex, len(masks))
	shardSize := shardSizeFor(m)
	for start := 0; start < m.size; start += shardSize {
		end := start + shardSize
		if end > m.size {
			end = m.size
		}
		s, e := start, end
		m.pool.Queue(func(ctx any) {
			for i := s; i < e; i++ {
				id := EntityID(i)
				if !m.entities[id].alive {
					continue
				}
				for qi, mask := range masks {
					if m.entities[id].bitset.matches(mask) {
						mus[qi].Lock()
						buckets[qi] = append(buckets[qi], id)
						mus[qi].Unlock()
					}
				}
			}
		}, nil)
	}
	m.pool.EasyStartAndWait()
	return buckets
}

// invokeBucket runs invoke over every id in ids, sequentially or sharded
// across the worker pool.
func invokeBucket(m *Manager, ids []EntityID, invoke func(EntityID), parallel bool) {
	if len(ids) == 0 {
		return
	}
	if !parallel || m.pool.workerCount < 2 {
		for _, e := range ids {
			invoke(e)
		}
		return
	}

	shardCount := m.pool.workerCount * m.shardFactor
	if shardCount < 1 {
		shardCount = 1
	}
	shardSize := (len(ids) + shardCount - 1) / shardCount
	if shardSize == 0 {
		shardSize = len(ids)
	}
	for start := 0; start < len(ids); start += shardSize {
		end := start + shardSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		m.pool.Queue(func(ctx any) {
			for _, e := range chunk {
				invoke(e)
			}
		}, nil)
	}
	m.pool.EasyStartAndWait()
}

func shardSizeFor(m *Manager) int {
	shardCount := m.pool.workerCount * m.shardFactor
	if shardCount < 1 {
		shardCount = 1
	}
	shardSize := (m.size + shardCount - 1) / shardCount
	if shardSize == 0 {
		shardSize = m.size
	}
	return shardSize
}
