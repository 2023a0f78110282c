package ecsmeta

import "reflect"

// typeFor mirrors reflect.TypeFor (added in Go 1.22) for toolchains that
// predate it.
func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
