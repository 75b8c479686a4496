package testutil

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SequentialIDs hands out predictable content ids:
// 00000000-0000-0000-0000-000000000001, ...000002, and so on.
//
// Safe for concurrent use.
type SequentialIDs struct {
	mu sync.Mutex
	n  uint64
}

// Next returns the next id in the sequence.
func (g *SequentialIDs) Next() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n))
}
