// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

// _PAIR maps a pair of integers (a, b) bijectively onto a single integer, then
// reduces it modulo len. Lifted verbatim from the teacher's hashing.go.
func _PAIR(a, b, length int) int {
	ua := uint64(uint32(a))
	ub := uint64(uint32(b))
	return int(((((ua + ub) * (ua + ub + 1)) / 2) + ua) % uint64(length))
}

// _TRIPLE extends _PAIR to three integers, used for the (level, low, high)
// unique-table key and for the (op, f, g) / (f, g, h) computed-table keys.
func _TRIPLE(a, b, c, length int) int {
	return _PAIR(c, _PAIR(a, b, length), length)
}

// nodehash is the hash function for the unique table: #(level, low, high).
func (m *Manager) nodehash(level int32, low, high edge) int32 {
	return int32(_TRIPLE(int(level), int(low), int(high), len(m.nodes)))
}

func (m *Manager) ptrhash(i int32) int32 {
	n := &m.nodes[i]
	return m.nodehash(n.level_(), n.low, n.high)
}
