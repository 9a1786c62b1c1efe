// Package arch defines the CPU architectures and target platforms a pod
// framework can be built for. The set is fixed at compile time: every
// architecture maps to exactly one platform and there are no error paths
// in the lookups.
package arch

import "fmt"

// Architecture is a CPU instruction-set target understood by the toolchain.
type Architecture int

const (
	ARMv7 Architecture = iota
	ARM64
	I386
	X8664

	// X8664h is the catalyst pseudo-architecture. The toolchain is told to
	// build plain x86_64 with catalyst support enabled; the identifier only
	// exists so callers can request a catalyst slice alongside device and
	// simulator ones.
	X8664h
)

// All lists every architecture in canonical order. Grouping and iteration
// follow this order so results are deterministic regardless of how a request
// was spelled.
var All = []Architecture{ARMv7, ARM64, I386, X8664, X8664h}

var identifiers = map[Architecture]string{
	ARMv7:  "armv7",
	ARM64:  "arm64",
	I386:   "i386",
	X8664:  "x86_64",
	X8664h: "x86_64h",
}

func (a Architecture) String() string {
	return identifiers[a]
}

// Parse resolves an architecture identifier as written on the command line.
func Parse(s string) (Architecture, error) {
	for a, id := range identifiers {
		if id == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown architecture %q", s)
}

// Platform is the SDK/environment pairing an architecture is compiled
// against.
type Platform int

const (
	Device Platform = iota
	Simulator
	Catalyst
)

var platforms = map[Architecture]Platform{
	ARMv7:  Device,
	ARM64:  Device,
	I386:   Simulator,
	X8664:  Simulator,
	X8664h: Catalyst,
}

// PlatformOf returns the platform an architecture is compiled against.
func PlatformOf(a Architecture) Platform {
	return platforms[a]
}

// String returns the platform identifier used in output-folder and log-file
// names. The catalyst name is hard-coded rather than derived from the SDK.
func (p Platform) String() string {
	switch p {
	case Device:
		return "iphoneos"
	case Simulator:
		return "iphonesimulator"
	default:
		return "maccatalyst"
	}
}

// SDK returns the SDK identifier passed to the toolchain.
func (p Platform) SDK() string {
	switch p {
	case Device:
		return "iphoneos"
	case Simulator:
		return "iphonesimulator"
	default:
		return "macosx"
	}
}

// ExtraFlags returns the extra compiler flags a platform needs beyond the
// shared flag set.
func (p Platform) ExtraFlags() []string {
	switch p {
	case Device:
		return []string{"-fembed-bitcode"}
	case Simulator:
		return nil
	default:
		return []string{"-target", "x86_64-apple-ios13.0-macabi"}
	}
}
