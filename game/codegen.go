package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"sync"
)

const (
	ROOM_CODE_LENGTH   = 4
	ROOM_CODE_ALPHABET = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Idgen hands out room codes that are unique among currently live rooms.
// Disposed codes become available again.
type Idgen struct {
	ids    map[string]struct{}
	locker sync.Mutex
}

func NewIdGen() Idgen {
	return Idgen{ids: make(map[string]struct{})}
}

func randomRoomCode() string {
	code := make([]byte, ROOM_CODE_LENGTH)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(ROOM_CODE_ALPHABET))))
		if err != nil {
			// crypto/rand failing is exotic; a math/rand code is still a valid code.
			code[i] = ROOM_CODE_ALPHABET[rand.Intn(len(ROOM_CODE_ALPHABET))]
			continue
		}
		code[i] = ROOM_CODE_ALPHABET[n.Int64()]
	}
	return string(code)
}

func (ig *Idgen) Generate() string {
	ig.locker.Lock()
	defer ig.locker.Unlock()

	for {
		code := randomRoomCode()
		if _, taken := ig.ids[code]; taken {
			continue
		}
		ig.ids[code] = struct{}{}
		return code
	}
}

func (ig *Idgen) Dispose(id string) {
	ig.locker.Lock()
	defer ig.locker.Unlock()
	delete(ig.ids, id)
}
