// Package agent 实现校园聊天助手：意图识别、参数抽取、数据查询与回复渲染。
package agent

import (
	"sort"
	"strings"
)

// Intent 是用户消息被归入的话题。
type Intent string

const (
	IntentSchedule Intent = "schedule"
	IntentMenu     Intent = "menu"
	IntentBus      Intent = "bus"
	IntentEvent    Intent = "event"
	IntentUpdate   Intent = "update"
	IntentFAQ      Intent = "faq"
	IntentGeneral  Intent = "general"
)

// IntentRule 把一组关键词映射到一个意图。Priority 越小越先匹配。
type IntentRule struct {
	Intent   Intent
	Keywords []string
	Priority int
}

// IntentRules 是按优先级匹配的意图规则表。
// 同时命中多个话题时取优先级最高的一条，例如 "lunch break between classes" 归入 schedule。
var IntentRules = []IntentRule{
	{
		Intent:   IntentSchedule,
		Keywords: []string{"schedule", "timetable", "class", "lecture", "course", "subject"},
		Priority: 1,
	},
	{
		Intent:   IntentMenu,
		Keywords: []string{"menu", "food", "breakfast", "lunch", "dinner", "snack", "cafeteria", "canteen", "mess", "meal"},
		Priority: 2,
	},
	{
		Intent:   IntentBus,
		Keywords: []string{"bus", "shuttle", "transport", "route"},
		Priority: 3,
	},
	{
		Intent:   IntentEvent,
		Keywords: []string{"event", "fest", "workshop", "seminar", "happening"},
		Priority: 4,
	},
	{
		Intent:   IntentUpdate,
		Keywords: []string{"update", "announcement", "news", "notice", "circular"},
		Priority: 5,
	},
	{
		Intent:   IntentFAQ,
		Keywords: []string{"faq", "how do i", "how to", "where is", "policy", "question"},
		Priority: 6,
	},
}

func init() {
	sort.SliceStable(IntentRules, func(i, j int) bool {
		return IntentRules[i].Priority < IntentRules[j].Priority
	})
}

// Classify 返回第一个有关键词作为子串出现在消息中的意图，都不命中时返回 IntentGeneral。
func Classify(message string) Intent {
	return classifyWith(IntentRules, message)
}

func classifyWith(rules []IntentRule, message string) Intent {
	text := normalize(message)
	if text == "" {
		return IntentGeneral
	}
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Intent
			}
		}
	}
	return IntentGeneral
}

func normalize(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}
