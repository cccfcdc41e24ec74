package frontend

// Options configures a single Translate call. Fields mirror the
// per-core config knobs original_source/include/dynarmic/A32/config.h
// and A64/config.h expose to the embedder (see SPEC_FULL.md §domain
// stack).
type Options struct {
	// DefineUnpredictableBehaviour names the choice between pinning
	// UNPREDICTABLE encodings to one behaviour and raising
	// ExceptionRaised. The A32/A64 visitors decode no UNPREDICTABLE
	// encodings and do not read this field.
	DefineUnpredictableBehaviour bool

	// HookHintInstructions names the choice between routing
	// WFI/WFE/SEV/SEVL/YIELD through MemoryInterface.ExceptionRaised and
	// lowering them to a no-op. The visitors decode no hint
	// instructions and do not read this field.
	HookHintInstructions bool

	// ArchVersion pins the ARM architecture profile assumed by
	// encodings whose behavior changed across revisions (e.g. the
	// A32 barrier and divide instructions). 8 means ARMv8-A.
	ArchVersion int

	// FastDispatchHint names the option of ending a Block with
	// ir.FastDispatchHint instead of ir.ReturnToDispatch. Translate
	// does not read this field and no visitor emits
	// ir.FastDispatchHint.
	FastDispatchHint bool
}

// DefaultOptions matches the typical A32 user-mode embedding.
func DefaultOptions() Options {
	return Options{
		DefineUnpredictableBehaviour: false,
		HookHintInstructions:         false,
		ArchVersion:                  8,
		FastDispatchHint:             true,
	}
}
