package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"What is my timetable for Monday?", IntentSchedule},
		{"  SHOW ME THE LECTURE LIST  ", IntentSchedule},
		{"what's for lunch today", IntentMenu},
		{"Is the canteen open?", IntentMenu},
		{"When does the shuttle leave?", IntentBus},
		{"any workshops this week", IntentEvent},
		{"latest announcement please", IntentUpdate},
		{"How do I reset my portal password", IntentFAQ},
		{"hello there", IntentGeneral},
		{"", IntentGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message))
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// 每个话题与所有更低优先级话题的关键词组合在一起时，结果都应是更高优先级的话题
	for i, hi := range IntentRules {
		for _, lo := range IntentRules[i+1:] {
			msg := hi.Keywords[0] + " and " + lo.Keywords[len(lo.Keywords)-1]
			assert.Equal(t, hi.Intent, Classify(msg), msg)
		}
	}
	assert.Equal(t, IntentSchedule, Classify("is there a class during lunch"))
}

func TestIntentRules_SortedByPriority(t *testing.T) {
	for i := 1; i < len(IntentRules); i++ {
		assert.Less(t, IntentRules[i-1].Priority, IntentRules[i].Priority)
	}
}

func TestClassifyWith_CustomTable(t *testing.T) {
	rules := []IntentRule{
		{Intent: IntentFAQ, Keywords: []string{"library"}, Priority: 1},
		{Intent: IntentEvent, Keywords: []string{"library"}, Priority: 2},
	}
	assert.Equal(t, IntentFAQ, classifyWith(rules, "library hours"))
	assert.Equal(t, IntentGeneral, classifyWith(rules, "gym hours"))
}
