// Package disasm renders a raw A32/T32 instruction word as GNU-syntax
// assembly text, for debug logging and tooling -- never consulted by
// the translator itself, which decodes instructions into IR directly.
package disasm

import (
	"fmt"

	"golang.org/x/arch/arm/armasm"
)

// DisassembleARM decodes a single 32-bit ARM (A32) instruction word
// and renders it in GNU syntax, e.g. "add r3, r5, #4".
func DisassembleARM(word uint32) (string, error) {
	return disassemble(word, armasm.ModeARM)
}

// DisassembleThumb decodes a 16- or 32-bit Thumb (T32) instruction
// from its little-endian byte encoding and renders it in GNU syntax.
// For a 32-bit Thumb instruction, b must contain both halfwords in
// wire order (first halfword's bytes first).
func DisassembleThumb(b []byte) (string, error) {
	inst, err := armasm.Decode(b, armasm.ModeThumb)
	if err != nil {
		return "", fmt.Errorf("disasm: decode thumb: %w", err)
	}
	return armasm.GNUSyntax(inst), nil
}

func disassemble(word uint32, mode armasm.Mode) (string, error) {
	b := []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
	inst, err := armasm.Decode(b, mode)
	if err != nil {
		return "", fmt.Errorf("disasm: decode arm: %w", err)
	}
	return armasm.GNUSyntax(inst), nil
}
