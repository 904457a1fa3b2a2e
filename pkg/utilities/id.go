package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IDGenerator hands out time-ordered snowflake IDs from a single node.
// The node is created once so that its sequence counter is shared by every
// caller; snowflake.Node serializes Generate internally.
type IDGenerator struct {
	node *snowflake.Node
}

// NodeFromEnv reads SNOWFLAKE_NODE, defaulting to node 1 when it is unset
// or not a number.
func NodeFromEnv() int64 {
	nodeEnv := os.Getenv("SNOWFLAKE_NODE")
	if nodeEnv == "" {
		return 1
	}
	nodeID, err := strconv.ParseInt(nodeEnv, 10, 64)
	if err != nil {
		return 1
	}
	return nodeID
}

// NewIDGenerator builds a generator for nodeID. If the node cannot be
// initialized (out of range) the generator falls back to KSUID strings.
func NewIDGenerator(nodeID int64) *IDGenerator {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return &IDGenerator{}
	}
	return &IDGenerator{node: node}
}

// NewID returns the next identifier as a decimal string.
func (g *IDGenerator) NewID() string {
	if g.node == nil {
		return NewKSUID()
	}
	return g.node.Generate().String()
}
