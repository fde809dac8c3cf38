package treemap

// EqualFunc reports whether a and b hold the same keys, in the same order,
// with values equal under eq.
func EqualFunc[K comparable, V any](a, b *Map[K, V], eq func(V, V) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	ia, ib := a.Begin(), b.Begin()
	for ; ia.Valid() && ib.Valid(); ia.Next() {
		ka, va := ia.Entry()
		kb, vb := ib.Entry()
		if ka != kb || !eq(va, vb) {
			return false
		}
		ib.Next()
	}
	return true
}

// CompareFunc orders a and b lexicographically by entry: keys by the key
// order of a, then values by cmpV. A strict prefix sorts first.
func CompareFunc[K comparable, V any](a, b *Map[K, V], cmpV func(V, V) int) int {
	less := a.KeyLess()
	ia, ib := a.Begin(), b.Begin()
	for ia.Valid() && ib.Valid() {
		ka, va := ia.Entry()
		kb, vb := ib.Entry()
		switch {
		case less(ka, kb):
			return -1
		case less(kb, ka):
			return 1
		}
		if c := cmpV(va, vb); c != 0 {
			return c
		}
		ia.Next()
		ib.Next()
	}
	switch {
	case ia.Valid():
		return 1
	case ib.Valid():
		return -1
	}
	return 0
}
