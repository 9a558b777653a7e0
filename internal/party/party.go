// Package party defines the party-index identity shared by every other
// package in this module.
package party

import "sort"

// ID is a party's index, fixed at process start. Valid values lie in [0, n)
// for a session with n participants.
type ID uint16

// IDSlice is a sortable collection of party IDs.
type IDSlice []ID

func (p IDSlice) Len() int           { return len(p) }
func (p IDSlice) Less(i, j int) bool { return p[i] < p[j] }
func (p IDSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// Sorted returns a sorted copy of the slice.
func (p IDSlice) Sorted() IDSlice {
	out := make(IDSlice, len(p))
	copy(out, p)
	sort.Sort(out)
	return out
}

// Contains reports whether id is present in the slice.
func (p IDSlice) Contains(id ID) bool {
	for _, x := range p {
		if x == id {
			return true
		}
	}
	return false
}

// Range returns the IDs [0, n).
func Range(n uint16) IDSlice {
	out := make(IDSlice, n)
	for i := range out {
		out[i] = ID(i)
	}
	return out
}
