package common

// Coalesce returns the first argument that is not the zero value of T. Descriptor builders use it to
// fill unset fields with defaults.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate, or the zero value if every candidate is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// AlignUp rounds n up to the next multiple of align. align must be positive.
//
// Parameters:
//   - n: the value to round
//   - align: the alignment
//
// Returns:
//   - int: the smallest multiple of align that is >= n
func AlignUp(n, align int) int {
	return (n + align - 1) / align * align
}
