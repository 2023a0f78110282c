package ecsmeta

import (
	"unsafe"

	"github.com/kamstrup/intmap"
)

// FnID names a stored matching function registered with
// AddForMatchingFunction. Ids increase monotonically from 0 and are never
// reused within one Manager's lifetime (until Reset or
// ClearForMatchingFunctions restarts the counter).
type FnID uint64

// storedFunction is a signature-bound callback the Manager holds onto across
// calls, so it can be replayed by id (CallForMatchingFunction) or batched
// with every other stored function in one pass (CallForMatchingFunctions).
type storedFunction struct {
	mask Bitset
	ctx  any
	call func(m *Manager, e EntityID, ctx any)
}

// functionRegistry backs the Manager side of the AddForMatchingFunction
// family: fast lookup by id via intmap, plus an insertion-ordered id list for
// CallForMatchingFunctions' "signature-index order" guarantee.
type functionRegistry struct {
	byID   *intmap.Map[FnID, *storedFunction]
	order  []FnID
	nextID FnID
}

func newFunctionRegistry() *functionRegistry {
	return &functionRegistry{byID: intmap.New[FnID, *storedFunction](16)}
}

func (r *functionRegistry) add(fn *storedFunction) FnID {
	id := r.nextID
	r.nextID++
	r.byID.Put(id, fn)
	r.order = append(r.order, id)
	return id
}

func (r *functionRegistry) get(id FnID) (*storedFunction, bool) {
	return r.byID.Get(id)
}

func (r *functionRegistry) remove(id FnID) bool {
	if _, ok := r.byID.Get(id); !ok {
		return false
	}
	r.byID.Del(id)
	r.dropFromOrder(id)
	return true
}

func (r *functionRegistry) dropFromOrder(id FnID) {
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// keepSome removes every stored function not named in ids.
func (r *functionRegistry) keepSome(ids []FnID) {
	keep := make(map[FnID]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	kept := r.order[:0:0]
	for _, id := range r.order {
		if keep[id] {
			kept = append(kept, id)
			continue
		}
		r.byID.Del(id)
	}
	r.order = kept
}

// removeSome removes every stored function named in ids.
func (r *functionRegistry) removeSome(ids []FnID) {
	for _, id := range ids {
		r.remove(id)
	}
}

func (r *functionRegistry) clear() {
	r.byID = intmap.New[FnID, *storedFunction](16)
	r.order = nil
	r.nextID = 0
}

func (r *functionRegistry) changeContext(id FnID, ctx any) bool {
	fn, ok := r.byID.Get(id)
	if !ok {
		return false
	}
	fn.ctx = ctx
	return true
}

// AddForMatchingFunction registers fn against T's mask and returns an id
// that later names it for CallForMatchingFunction,
// ChangeForMatchingFunctionContext, RemoveForMatchingFunction, and the other
// stored-function operations. The registration itself performs no query: fn
// only runs once CallForMatchingFunction or CallForMatchingFunctions is
// called.
func AddForMatchingFunction[T any](m *Manager, fn SignatureFunc[T], ctx any) FnID {
	info := m.signatureInfoFor(typeFor[T]())
	sf := &storedFunction{
		mask: info.mask,
		ctx:  ctx,
		call: func(mgr *Manager, e EntityID, ctx any) {
			var row T
			mgr.populateSignature(info, e, unsafe.Pointer(&row))
			fn(e, ctx, &row)
		},
	}
	return m.functions.add(sf)
}

// RemoveForMatchingFunction removes the stored function registered under
// id. Reports false if id was never registered or was already removed.
func (m *Manager) RemoveForMatchingFunction(id FnID) bool {
	return m.functions.remove(id)
}

// KeepSomeMatchingFunctions retains only the stored functions named in ids,
// removing every other registered function.
func (m *Manager) KeepSomeMatchingFunctions(ids []FnID) {
	m.functions.keepSome(ids)
}

// RemoveSomeMatchingFunctions removes every stored function named in ids.
func (m *Manager) RemoveSomeMatchingFunctions(ids []FnID) {
	m.functions.removeSome(ids)
}

// ClearForMatchingFunctions drops every registered stored function and
// resets the id counter to 0.
func (m *Manager) ClearForMatchingFunctions() {
	m.functions.clear()
}

// ChangeForMatchingFunctionContext replaces the ctx passed to the stored
// function registered under id on its next call. Reports false if id is not
// registered.
func (m *Manager) ChangeForMatchingFunctionContext(id FnID, ctx any) bool {
	return m.functions.changeContext(id, ctx)
}

// CallForMatchingFunction invokes the single stored function registered
// under id over every entity it currently matches. Reports false if id is
// not registered; the query simply doesn't run in that case.
func (m *Manager) CallForMatchingFunction(id FnID, parallel bool) bool {
	sf, ok := m.functions.get(id)
	if !ok {
		return false
	}
	dispatch(m, sf.mask, parallel, func(e EntityID) {
		sf.call(m, e, sf.ctx)
	})
	return true
}

// CallForMatchingFunctions amortises every registered stored function over
// one pass, the same way ForMatchingSignatures does for an ad hoc batch:
// classify every alive entity into a bucket per function, then invoke each
// function on its bucket in ascending FnID (registration) order.
func (m *Manager) CallForMatchingFunctions(parallel bool) {
	ids := m.functions.order
	if len(ids) == 0 {
		return
	}
	fns := make([]*storedFunction, len(ids))
	masks := make([]Bitset, len(ids))
	for i, id := range ids {
		fn, _ := m.functions.get(id)
		fns[i] = fn
		masks[i] = fn.mask
	}
	buckets := classifyBuckets(m, masks, parallel)
	for i, fn := range fns {
		sf := fn
		invokeBucket(m, buckets[i], func(e EntityID) { sf.call(m, e, sf.ctx) }, parallel)
	}
}
