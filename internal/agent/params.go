package agent

import (
	"strings"
	"time"

	"campus-info-go/internal/model"
	"campus-info-go/pkg/log"
)

// ParamSet 是从自然语言中抽取出来的过滤条件。
type ParamSet map[string]string

// 过滤参数名
const (
	ParamDay      = "day"
	ParamMealType = "meal_type"
	ParamDate     = "date"
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var mealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

// Extractor 按意图抽取查询参数。时钟可注入，便于测试 "today" / "tomorrow"。
type Extractor struct {
	Now func() time.Time
}

// NewExtractor 返回使用本地时间的抽取器。
func NewExtractor() *Extractor {
	return &Extractor{Now: time.Now}
}

func (e *Extractor) today() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Extract 从消息中抽取参数，永不失败，没有命中时返回空 ParamSet。
func (e *Extractor) Extract(intent Intent, message string) ParamSet {
	text := normalize(message)
	params := ParamSet{}

	switch intent {
	case IntentSchedule:
		if day := firstContained(text, weekdays); day != "" {
			params[ParamDay] = day
		}
	case IntentMenu:
		if meal := firstContained(text, mealTypes); meal != "" {
			params[ParamMealType] = meal
		}
		// today 优先于 tomorrow
		switch {
		case strings.Contains(text, "today"):
			params[ParamDate] = e.today().Format(model.DateFormat)
		case strings.Contains(text, "tomorrow"):
			params[ParamDate] = e.today().AddDate(0, 0, 1).Format(model.DateFormat)
		}
	case IntentBus:
		// TODO: 抽取线路名与目的地，需要 buses.stops 的站点词表
	case IntentEvent:
		if strings.Contains(text, "today") {
			params[ParamDate] = e.today().Format(model.DateFormat)
		} else if strings.Contains(text, "this week") {
			log.Debugf("agent: 'this week' recognised but not mapped to a filter")
		}
	}
	return params
}

func firstContained(text string, candidates []string) string {
	for _, c := range candidates {
		if strings.Contains(text, c) {
			return c
		}
	}
	return ""
}
