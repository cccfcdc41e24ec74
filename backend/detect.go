package backend

import "golang.org/x/sys/cpu"

// DetectHostFeature inspects the running CPU via golang.org/x/sys/cpu
// and builds the HostFeature set the emitters use to pick encodings.
// ARM64 and RISC-V hosts report back the (much smaller) subset of bits
// that are meaningful to their own per-arch backend; x64-only bits are
// simply left unset.
func DetectHostFeature() HostFeature {
	var f HostFeature
	if cpu.X86.HasSSSE3 {
		f |= FeatureSSSE3
	}
	if cpu.X86.HasSSE41 {
		f |= FeatureSSE41
	}
	if cpu.X86.HasSSE42 {
		f |= FeatureSSE42
	}
	if cpu.X86.HasAVX {
		f |= FeatureAVX
	}
	if cpu.X86.HasAVX2 {
		f |= FeatureAVX2
	}
	if cpu.X86.HasAVX512F {
		f |= FeatureAVX512F
	}
	if cpu.X86.HasAVX512CD {
		f |= FeatureAVX512CD
	}
	if cpu.X86.HasAVX512VL {
		f |= FeatureAVX512VL
	}
	if cpu.X86.HasAVX512BW {
		f |= FeatureAVX512BW
	}
	if cpu.X86.HasAVX512DQ {
		f |= FeatureAVX512DQ
	}
	if cpu.X86.HasBMI1 {
		f |= FeatureBMI1
	}
	if cpu.X86.HasBMI2 {
		f |= FeatureBMI2
	}
	if cpu.X86.HasF16C {
		f |= FeatureF16C
	}
	if cpu.X86.HasFMA {
		f |= FeatureFMA
	}
	if cpu.X86.HasAES {
		f |= FeatureAES
	}
	if cpu.X86.HasPCLMULQDQ {
		f |= FeaturePCLMULQDQ
	}
	if cpu.X86.HasPOPCNT {
		f |= FeaturePOPCNT
	}
	if cpu.X86.HasLZCNT {
		f |= FeatureLZCNT
	}
	if isSlowBMI2Vendor() {
		f |= FeatureVendorSlowBMI2
	}

	if cpu.ARM64.HasAES {
		f |= FeatureAES
	}
	if cpu.ARM64.HasPMULL {
		f |= FeaturePCLMULQDQ
	}
	if cpu.ARM64.HasSHA256 {
		f |= FeatureGFNI // reused as "has a hardware SHA helper" on ARM64
	}

	return f
}

// isSlowBMI2Vendor flags known-slow PDEP/PEXT microarchitectures. Zen1
// and Zen2 implement BMI2's PDEP/PEXT as a microcoded loop rather than
// a single op; x/sys/cpu doesn't expose a vendor string on all
// platforms, so this stays conservative and only trusts the fast path
// when BMI2 plus AVX2 are both present (true for Zen3 and later,
// Haswell and later Intel parts).
func isSlowBMI2Vendor() bool {
	return cpu.X86.HasBMI2 && !cpu.X86.HasAVX2
}
