package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdgen_CodeShape(t *testing.T) {
	idgen := NewIdGen()

	for i := 0; i < 50; i++ {
		code := idgen.Generate()
		assert.Len(t, code, ROOM_CODE_LENGTH)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(ROOM_CODE_ALPHABET, c), "unexpected character %q in code %s", c, code)
		}
	}
}

func TestIdgen_CodesUniqueWhileLive(t *testing.T) {
	idgen := NewIdGen()

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code := idgen.Generate()
		assert.False(t, seen[code], "code %s generated twice", code)
		seen[code] = true
	}
}

func TestIdgen_DisposeFreesCode(t *testing.T) {
	idgen := NewIdGen()

	code := idgen.Generate()
	assert.Contains(t, idgen.ids, code)

	idgen.Dispose(code)
	assert.NotContains(t, idgen.ids, code)
}

func TestIdgen_DisposeUnknownCodeIsNoOp(t *testing.T) {
	idgen := NewIdGen()

	assert.NotPanics(t, func() {
		idgen.Dispose("ZZZZ")
	})
}
