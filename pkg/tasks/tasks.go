// Package tasks 定义了通过 Kafka 传递的任务结构。
package tasks

import (
	"fmt"
	"time"
)

// 记录变更的动作
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// RecordChangeTask 描述一次校园数据记录的变更，由写操作发布，下游据此维护搜索索引。
type RecordChangeTask struct {
	Table      string    `json:"table"`
	RecordID   int64     `json:"record_id"`
	Action     string    `json:"action"`
	ActorID    int64     `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Key 返回用于 Kafka 分区与重试计数的键，同一条记录的变更有序。
func (t RecordChangeTask) Key() string {
	return fmt.Sprintf("%s:%d", t.Table, t.RecordID)
}
