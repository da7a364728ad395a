package agent

import (
	"fmt"
	"strings"
)

// 通用对话的固定回复
const (
	GreetingText = "Hello! I'm your campus assistant. Ask me about class schedules, the cafeteria menu, bus routes, events, announcements or FAQs."
	HelpText     = "I can help you with:\n" +
		"  - Class schedules (e.g. \"my monday timetable\")\n" +
		"  - Cafeteria menus (e.g. \"what's for lunch today\")\n" +
		"  - Bus routes (e.g. \"campus shuttle timings\")\n" +
		"  - Events (e.g. \"events happening today\")\n" +
		"  - Updates and announcements\n" +
		"  - FAQs (e.g. \"how do i get a library card\")"
	WelcomeText = "Welcome! I'm your campus assistant. Type \"help\" to see what I can do."
)

var greetingWords = map[string]bool{"hi": true, "hello": true, "hey": true, "hola": true, "namaste": true}

var greetingPhrases = []string{"good morning", "good afternoon", "good evening"}

// respondGeneral 处理未命中任何话题的消息：问候、帮助，或请用户换个说法。
func respondGeneral(message string) string {
	text := normalize(message)
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if greetingWords[w] {
			return GreetingText
		}
	}
	for _, p := range greetingPhrases {
		if strings.Contains(text, p) {
			return GreetingText
		}
	}
	if strings.Contains(text, "help") {
		return HelpText
	}
	return fmt.Sprintf("I'm not sure I understood \"%s\". Could you rephrase it, or ask about schedules, menus, buses, events, updates or FAQs? Type \"help\" for examples.", strings.TrimSpace(message))
}
