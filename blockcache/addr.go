package blockcache

import "unsafe"

// uintptrOf returns the address of b's backing array, for perf-map
// addressing. b must be non-empty.
func uintptrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}
