// Package scheduler 负责周期性的后台任务：清理空闲会话、过期黑名单与限流器状态。
package scheduler

import (
	"context"
	"fmt"
	"time"

	"campus-info-go/internal/repository"
	"campus-info-go/pkg/log"

	"github.com/robfig/cron/v3"
)

// JobFunc 是一个后台任务，ctx 在调度器停止时取消。
type JobFunc func(ctx context.Context) error

// Scheduler 管理按 cron 表达式执行的任务。
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	names  []string
}

// New 创建一个新的调度器，表达式按 UTC 解释。
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add 注册一个任务，spec 支持标准五段式与 @every/@hourly 等描述符。
func (s *Scheduler) Add(name, spec string, job JobFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			log.Errorf("[Scheduler] 任务 %s 执行失败: %v", name, err)
			return
		}
		log.Debugf("[Scheduler] 任务 %s 完成, 耗时 %s", name, time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.names = append(s.names, name)
	return nil
}

// Start 启动调度器。
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Infof("[Scheduler] 已启动, 任务: %v", s.names)
}

// Stop 停止调度器并等待正在执行的任务结束。
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Info("[Scheduler] 已停止")
}

// SessionSweep 删除空闲超过 TTL 的聊天会话。
func SessionSweep(sessions repository.ChatSessionRepository) JobFunc {
	return func(ctx context.Context) error {
		n, err := sessions.Sweep(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			log.Infof("[Scheduler] 清理了 %d 个空闲会话", n)
		}
		return nil
	}
}

// Sweeper 是可以清理自身过期条目的组件，例如内存黑名单与限流器。
type Sweeper interface {
	Sweep() int
}

// SweepJob 把 Sweeper 包装成任务。
func SweepJob(name string, s Sweeper) JobFunc {
	return func(ctx context.Context) error {
		if n := s.Sweep(); n > 0 {
			log.Debugf("[Scheduler] %s 清理了 %d 条过期记录", name, n)
		}
		return nil
	}
}
