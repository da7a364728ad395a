package agent

import (
	"context"
	"time"

	"campus-info-go/internal/store"
	"campus-info-go/pkg/log"
)

// DataEndpoint 是聊天助手查询校园数据的外部协作者，每个话题一个方法。
type DataEndpoint interface {
	FetchSchedules(ctx context.Context, params ParamSet) ([]store.Record, error)
	FetchMenus(ctx context.Context, params ParamSet) ([]store.Record, error)
	FetchBuses(ctx context.Context, params ParamSet) ([]store.Record, error)
	FetchEvents(ctx context.Context, params ParamSet) ([]store.Record, error)
	FetchUpdates(ctx context.Context, params ParamSet) ([]store.Record, error)
	FetchFAQs(ctx context.Context, params ParamSet) ([]store.Record, error)
}

// ReplyType 标识回复的来源。
type ReplyType string

const (
	ReplyTool    ReplyType = "tool_response"
	ReplyGeneral ReplyType = "general_response"
	ReplyError   ReplyType = "error"
)

// Reply 是助手对一条消息的回复。ToolUsed 为空表示没有调用数据端点。
type Reply struct {
	Response string    `json:"response"`
	Type     ReplyType `json:"type"`
	ToolUsed Intent    `json:"toolUsed,omitempty"`
}

// 数据端点失败时的话题道歉语
var apologies = map[Intent]string{
	IntentSchedule: "Sorry, I couldn't fetch the class schedule right now. Please try again later.",
	IntentMenu:     "Sorry, I couldn't fetch the cafeteria menu right now. Please try again later.",
	IntentBus:      "Sorry, I couldn't fetch the bus routes right now. Please try again later.",
	IntentEvent:    "Sorry, I couldn't fetch the events right now. Please try again later.",
	IntentUpdate:   "Sorry, I couldn't fetch the latest updates right now. Please try again later.",
	IntentFAQ:      "Sorry, I couldn't search the FAQs right now. Please try again later.",
}

// Apology 返回某个话题的固定道歉语。
func Apology(intent Intent) string {
	return apologies[intent]
}

// Agent 把消息路由到对应的数据查询并渲染回复。
type Agent struct {
	endpoint  DataEndpoint
	extractor *Extractor
	timeout   time.Duration
}

// New 创建聊天助手。timeout <= 0 表示数据端点调用只受调用方 ctx 约束。
func New(endpoint DataEndpoint, extractor *Extractor, timeout time.Duration) *Agent {
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &Agent{endpoint: endpoint, extractor: extractor, timeout: timeout}
}

func (a *Agent) fetcher(intent Intent) func(context.Context, ParamSet) ([]store.Record, error) {
	switch intent {
	case IntentSchedule:
		return a.endpoint.FetchSchedules
	case IntentMenu:
		return a.endpoint.FetchMenus
	case IntentBus:
		return a.endpoint.FetchBuses
	case IntentEvent:
		return a.endpoint.FetchEvents
	case IntentUpdate:
		return a.endpoint.FetchUpdates
	case IntentFAQ:
		return a.endpoint.FetchFAQs
	}
	return nil
}

// Process 处理一条用户消息。数据端点的任何失败都会转换为道歉语，不会返回错误。
func (a *Agent) Process(ctx context.Context, message string) Reply {
	intent := Classify(message)
	if intent == IntentGeneral {
		return Reply{Response: respondGeneral(message), Type: ReplyGeneral}
	}

	params := a.extractor.Extract(intent, message)
	fetch := a.fetcher(intent)

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	records, err := fetch(callCtx, params)
	if err != nil {
		log.Warnw("agent: data endpoint failed", "intent", string(intent), "params", params, "error", err)
		return Reply{Response: Apology(intent), Type: ReplyError, ToolUsed: intent}
	}
	return Reply{Response: Format(intent, records), Type: ReplyTool, ToolUsed: intent}
}
