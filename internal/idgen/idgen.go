package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces opaque string ids, unique within a store's lifetime.
type Generator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUID() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Sequential is a deterministic generator for tests.
type Sequential struct {
	prefix  string
	counter atomic.Int64
}

func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (g *Sequential) NewID() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Add(1))
}
