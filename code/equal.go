package code

import (
	"hash/fnv"
	"strings"
)

// Equal reports deep structural equality between two code objects,
// using the same value identity as the constant pool: 0 differs from
// False, 0.0 differs from -0.0, and NaN equals NaN.
func Equal(a, b *Code) bool {
	if a == nil || b == nil {
		return a == b
	}
	return keyString(a) == keyString(b)
}

// Hash returns a structural hash of c, consistent with Equal.
func Hash(c *Code) uint64 {
	h := fnv.New64a()
	h.Write([]byte(keyString(c)))
	return h.Sum64()
}

func keyString(c *Code) string {
	var b strings.Builder
	c.key(&b)
	return b.String()
}
