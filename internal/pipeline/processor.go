// Package pipeline 定义了记录变更事件的处理流程。
package pipeline

import (
	"context"
	"fmt"

	"campus-info-go/internal/model"
	"campus-info-go/internal/store"
	"campus-info-go/pkg/es"
	"campus-info-go/pkg/log"
	"campus-info-go/pkg/tasks"
)

// FAQIndexer 是 FAQ 检索索引的写入端，由 es.FAQIndex 实现。
type FAQIndexer interface {
	IndexFAQ(ctx context.Context, doc es.FAQDocument) error
	DeleteFAQ(ctx context.Context, id int64) error
}

// Processor 封装了记录变更的所有下游处理。
type Processor struct {
	store store.RecordStore
	index FAQIndexer
}

// NewProcessor 创建一个新的 Processor 实例。index 为 nil 时不维护检索索引。
func NewProcessor(s store.RecordStore, index FAQIndexer) *Processor {
	return &Processor{store: s, index: index}
}

// Process 处理一条记录变更。目前只有 FAQ 需要同步到检索索引：
// 有效的 FAQ 写入索引，已删除或停用的从索引移除。
func (p *Processor) Process(ctx context.Context, task tasks.RecordChangeTask) error {
	log.Debugf("[Processor] 收到记录变更 %s %s", task.Action, task.Key())
	if task.Table != model.TableFAQs || p.index == nil {
		return nil
	}

	rows, err := p.store.Find(ctx, model.TableFAQs, store.Eq{Field: "id", Value: task.RecordID})
	if err != nil {
		return fmt.Errorf("load faq %d: %w", task.RecordID, err)
	}
	if len(rows) == 0 {
		log.Infof("[Processor] FAQ %d 已不存在, 从索引中移除", task.RecordID)
		return p.index.DeleteFAQ(ctx, task.RecordID)
	}
	faq := rows[0]
	if active, _ := faq.Bool("is_active"); !active {
		log.Infof("[Processor] FAQ %d 已停用, 从索引中移除", task.RecordID)
		return p.index.DeleteFAQ(ctx, task.RecordID)
	}

	doc := es.FAQDocument{
		ID:       task.RecordID,
		Question: faq.String("question"),
		Answer:   faq.String("answer"),
		Category: faq.String("category"),
	}
	if err := p.index.IndexFAQ(ctx, doc); err != nil {
		log.Errorf("[Processor] 写入 FAQ 索引失败, id: %d, error: %v", task.RecordID, err)
		return fmt.Errorf("index faq %d: %w", task.RecordID, err)
	}
	log.Infof("[Processor] FAQ %d 已写入索引", task.RecordID)
	return nil
}

// Reindex 把所有有效的 FAQ 重新写入索引，返回写入数量。
func (p *Processor) Reindex(ctx context.Context) (int, error) {
	if p.index == nil {
		return 0, nil
	}
	rows, err := p.store.Find(ctx, model.TableFAQs, store.Eq{Field: "is_active", Value: true})
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		doc := es.FAQDocument{ID: r.ID(), Question: r.String("question"), Answer: r.String("answer"), Category: r.String("category")}
		if err := p.index.IndexFAQ(ctx, doc); err != nil {
			return 0, fmt.Errorf("index faq %d: %w", r.ID(), err)
		}
	}
	return len(rows), nil
}

// DirectPublisher 在进程内同步处理变更事件，用于未启用 Kafka 的部署。
type DirectPublisher struct {
	processor *Processor
}

// NewDirectPublisher 创建进程内发布器。
func NewDirectPublisher(p *Processor) *DirectPublisher {
	return &DirectPublisher{processor: p}
}

// Publish 直接调用 Processor。
func (d *DirectPublisher) Publish(ctx context.Context, task tasks.RecordChangeTask) error {
	return d.processor.Process(ctx, task)
}
