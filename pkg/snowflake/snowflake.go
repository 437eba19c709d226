package snowflake

import "github.com/bwmarrin/snowflake"

var node *snowflake.Node

func init() {
	node, _ = snowflake.NewNode(1)
}

// GenID 事件 ID，下游按它做幂等
func GenID() int64 {
	return node.Generate().Int64()
}
