// Package collection holds small slice helpers and the explicit field
// mapping used to rebuild typed values from loosely typed maps.
package collection

import "slices"

// Remove deletes the first element equal to v and returns the shortened
// slice. The slice is returned unchanged when v is absent.
func Remove[T comparable](s []T, v T) []T {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}
