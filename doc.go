// Package armjit implements a dynamic binary translator for 32- and
// 64-bit ARM guest code: a decode front-end lifts guest instructions
// to an SSA-ish IR, an optimizer pipeline cleans it up, a per-arch
// backend register-allocates and emits host machine code into a
// write-then-execute arena, and a cooperative dispatcher runs
// compiled blocks until the host asks it to stop.
//
// The package's own surface is deliberately small: Config selects the
// guest architecture and host callback table, New builds a Jit, and
// Jit.Run drives guest execution until a halt request or the host's
// tick budget is exhausted. Everything else -- translation, register
// allocation, code emission, the block cache, the exclusive monitor
// -- lives in its own subpackage and is exercised through this one.
package armjit
