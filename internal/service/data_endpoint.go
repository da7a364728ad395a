package service

import (
	"context"

	"campus-info-go/internal/agent"
	"campus-info-go/internal/store"
)

// dataEndpoint 在进程内把聊天助手的查询转给资源服务，只返回有效记录。
type dataEndpoint struct {
	resources map[string]ResourceService
}

// NewDataEndpoint 以资源服务实现 agent.DataEndpoint。
func NewDataEndpoint(resources map[string]ResourceService) agent.DataEndpoint {
	return &dataEndpoint{resources: resources}
}

func (e *dataEndpoint) list(ctx context.Context, topic string, params agent.ParamSet) ([]store.Record, error) {
	return e.resources[topic].List(ctx, params, false)
}

func (e *dataEndpoint) FetchSchedules(ctx context.Context, params agent.ParamSet) ([]store.Record, error) {
	return e.list(ctx, "schedules", params)
}

func (e *dataEndpoint) FetchMenus(ctx context.Context, params agent.ParamSet) ([]store.Record, error) {
	return e.list(ctx, "menus", params)
}

func (e *dataEndpoint) FetchBuses(ctx context.Context, params agent.ParamSet) ([]store.Record, error) {
	return e.list(ctx, "buses", params)
}

func (e *dataEndpoint) FetchEvents(ctx context.Context, params agent.ParamSet) ([]store.Record, error) {
	return e.list(ctx, "events", params)
}

func (e *dataEndpoint) FetchUpdates(ctx context.Context, params agent.ParamSet) ([]store.Record, error) {
	return e.list(ctx, "updates", params)
}

func (e *dataEndpoint) FetchFAQs(ctx context.Context, params agent.ParamSet) ([]store.Record, error) {
	return e.list(ctx, "faqs", params)
}
