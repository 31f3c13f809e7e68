package id

import (
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var (
	node     *snowflake.Node
	initOnce sync.Once
	initErr  error
)

// Init 初始化雪花节点（进程启动时调用一次）。
// nodeID 取值 0-1023，多实例部署时必须各不相同。
func Init(nodeID int64) error {
	initOnce.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// Next 生成一个雪花 id。
// 未初始化时 panic —— 属于部署错误，不属于可恢复的运行时错误。
func Next() int64 {
	if node == nil {
		panic("id: snowflake node not initialized")
	}
	return node.Generate().Int64()
}

// NewJoinCode 生成 Crew 公共加入码/个人邀请码。
// 取 UUID 前 8 个十六进制字符，足够在几千人的规模下无碰撞，且方便口头转述。
func NewJoinCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:8])
}
