package swappool

import "unsafe"

/*
Sized is the single capability the pool needs from a stored value: report
the byte-cost the accounting layer should charge for holding it hot.

It is explicitly NOT required to be exact — it is a budget estimator, not
an allocator-accurate measurement. Go cannot retroactively attach methods
to builtin types the way a trait-based language can blanket-impl SizeOf
for every primitive, so callers compose their own SizeOf method out of the
helpers below instead of getting one for free on int, string, and so on.
*/
type Sized interface {
	SizeOf() int
}

// SizeOfBool reports the byte-cost of a bool value.
func SizeOfBool(bool) int { return int(unsafe.Sizeof(false)) }

// SizeOfInt reports the byte-cost of an int value.
func SizeOfInt(int) int { return int(unsafe.Sizeof(int(0))) }

// SizeOfInt64 reports the byte-cost of an int64 value.
func SizeOfInt64(int64) int { return 8 }

// SizeOfUint64 reports the byte-cost of a uint64 value.
func SizeOfUint64(uint64) int { return 8 }

// SizeOfFloat64 reports the byte-cost of a float64 value.
func SizeOfFloat64(float64) int { return 8 }

// SizeOfString reports the byte-cost of a string by its length, not its
// backing capacity, since Go strings are immutable and never over-grown.
func SizeOfString(s string) int { return len(s) }

// SizeOfBytes reports the byte-cost of a byte slice by its capacity,
// matching the original's "sequence containers by capacity" rule: a
// slice can be grown in place up to cap without reallocating, so cap is
// the more honest reservation figure than len.
func SizeOfBytes(b []byte) int { return cap(b) }

// SizeOfSlice sums the element sizes of a slice of Sized values plus the
// slice header's own size, counted once, mirroring the original's
// "sequence containers by sum of element sizes plus own stack footprint."
func SizeOfSlice[T Sized](s []T) int {
	total := int(unsafe.Sizeof(s))
	for _, v := range s {
		total += v.SizeOf()
	}
	return total
}

// SizeOfPointer reports the stack footprint of a pointer plus the
// pointee's size when non-nil, mirroring the original's smart-pointer
// wrapper rule (stack footprint plus pointee).
func SizeOfPointer[T Sized](p *T) int {
	const pointerWord = int(unsafe.Sizeof(uintptr(0)))
	if p == nil {
		return pointerWord
	}
	return pointerWord + (*p).SizeOf()
}

// SizeOfOption reports the byte-cost of an Option-like value: a presence
// flag plus the payload's size when present, mirroring the original's
// Option/Result rule (variant plus payload).
func SizeOfOption[T Sized](present bool, value T) int {
	const flag = 1
	if !present {
		return flag
	}
	return flag + value.SizeOf()
}
