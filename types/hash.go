package types

// KeyHash reduces a field name to the 32-bit key stored in the directory.
//
// It is a djb2 variant evaluated from the end of the string back to the start:
// h(i) = h(i+step)*33 ^ s[i], h(end) = 5381. A character followed by '_' steps
// over the underscore, so "a_b" and "ab" hash identically. Bytes are
// sign-extended before the xor and a NUL byte terminates the key. Both quirks
// are part of the wire format.
func KeyHash(key string) uint32 {
	var stack [32]int
	visited := stack[:0]
	for i := 0; i < len(key) && key[i] != 0; {
		visited = append(visited, i)
		if i+1 < len(key) && key[i+1] == '_' {
			i += 2
		} else {
			i++
		}
	}

	h := uint32(5381)
	for j := len(visited) - 1; j >= 0; j-- {
		h = h*33 ^ uint32(int32(int8(key[visited[j]])))
	}
	return h
}
