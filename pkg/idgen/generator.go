package idgen

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Generator defines the interface for generating unique IDs
type Generator interface {
	GenerateID() string
}

// SnowflakeGenerator implements the Generator interface using Twitter Snowflake
type SnowflakeGenerator struct {
	node *snowflake.Node
	mu   sync.Mutex
}

// NewSnowflakeGenerator initializes a new ID generator.
// nodeID must be unique per server instance (0-1023) to prevent collisions.
func NewSnowflakeGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}

	return &SnowflakeGenerator{
		node: node,
	}, nil
}

// GenerateID returns a new unique ID in decimal string form, the form the
// stores key their rows by.
func (g *SnowflakeGenerator) GenerateID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return strconv.FormatInt(g.node.Generate().Int64(), 10)
}
