package agent

import (
	"fmt"
	"strconv"
	"strings"

	"campus-info-go/internal/store"
)

// 查询结果为空时的固定回复
const (
	NoScheduleText = "No classes found for your query."
	NoMenuText     = "No menu items found."
	NoBusText      = "No bus routes found."
	NoEventText    = "No upcoming events found."
	NoUpdateText   = "No updates or announcements right now."
	NoFAQText      = "I couldn't find an FAQ matching that."
)

const placeholder = "TBA"

// Format 把查询结果渲染为可读文本，缺失的字段不会导致失败。
func Format(intent Intent, records []store.Record) string {
	switch intent {
	case IntentSchedule:
		return formatSchedules(records)
	case IntentMenu:
		return formatMenus(records)
	case IntentBus:
		return formatBuses(records)
	case IntentEvent:
		return formatEvents(records)
	case IntentUpdate:
		return formatUpdates(records)
	case IntentFAQ:
		return formatFAQs(records)
	}
	return ""
}

func orTBA(r store.Record, key string) string {
	if v := strings.TrimSpace(r.String(key)); v != "" {
		return v
	}
	return placeholder
}

func formatSchedules(records []store.Record) string {
	if len(records) == 0 {
		return NoScheduleText
	}
	var b strings.Builder
	b.WriteString("Here is your class schedule:\n")
	for _, r := range records {
		b.WriteString("\n")
		subject := orTBA(r, "subject")
		if code := r.String("course_code"); code != "" {
			subject += " (" + code + ")"
		}
		fmt.Fprintf(&b, "%s\n", subject)
		fmt.Fprintf(&b, "  Day: %s\n", orTBA(r, "day"))
		fmt.Fprintf(&b, "  Time: %s - %s\n", orTBA(r, "start_time"), orTBA(r, "end_time"))
		fmt.Fprintf(&b, "  Room: %s\n", orTBA(r, "room_number"))
		fmt.Fprintf(&b, "  Instructor: %s\n", orTBA(r, "instructor"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPrice(r store.Record) string {
	p, ok := r.Float64("price")
	if !ok {
		return placeholder
	}
	return "₹" + strconv.FormatFloat(p, 'f', -1, 64)
}

func formatMenus(records []store.Record) string {
	if len(records) == 0 {
		return NoMenuText
	}
	type group struct {
		date, meal string
		items      []store.Record
	}
	var groups []*group
	index := make(map[[2]string]*group)
	for _, r := range records {
		key := [2]string{r.String("date"), r.String("meal_type")}
		g, ok := index[key]
		if !ok {
			g = &group{date: key[0], meal: key[1]}
			index[key] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, r)
	}

	var b strings.Builder
	b.WriteString("Here's the menu:\n")
	for _, g := range groups {
		meal := g.meal
		if meal == "" {
			meal = "meal"
		}
		date := g.date
		if date == "" {
			date = placeholder
		}
		fmt.Fprintf(&b, "\n%s (%s):\n", capitalize(meal), date)
		for _, item := range g.items {
			tag := "(Non-vegetarian)"
			if veg, _ := item.Bool("is_vegetarian"); veg {
				tag = "(Vegetarian)"
			}
			fmt.Fprintf(&b, "  - %s - %s %s\n", orTBA(item, "name"), formatPrice(item), tag)
			if desc := item.String("description"); desc != "" {
				fmt.Fprintf(&b, "    %s\n", desc)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatBuses(records []store.Record) string {
	if len(records) == 0 {
		return NoBusText
	}
	var b strings.Builder
	b.WriteString("Bus routes:\n")
	for _, r := range records {
		b.WriteString("\n")
		name := orTBA(r, "route_name")
		if num := r.String("route_number"); num != "" {
			name += " (Route " + num + ")"
		}
		fmt.Fprintf(&b, "%s\n", name)
		fmt.Fprintf(&b, "  Departs: %s, Arrives: %s\n", orTBA(r, "departure_time"), orTBA(r, "arrival_time"))
		if stops := r.Strings("stops"); len(stops) > 0 {
			fmt.Fprintf(&b, "  Stops: %s\n", strings.Join(stops, " -> "))
		}
		if driver := r.String("driver_name"); driver != "" {
			line := "  Driver: " + driver
			if contact := r.String("driver_contact"); contact != "" {
				line += " (" + contact + ")"
			}
			b.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatEvents(records []store.Record) string {
	if len(records) == 0 {
		return NoEventText
	}
	var b strings.Builder
	b.WriteString("Upcoming events:\n")
	for _, r := range records {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s\n", orTBA(r, "title"))
		fmt.Fprintf(&b, "  When: %s at %s\n", orTBA(r, "date"), orTBA(r, "time"))
		fmt.Fprintf(&b, "  Where: %s\n", orTBA(r, "location"))
		if org := r.String("organizer"); org != "" {
			fmt.Fprintf(&b, "  Organizer: %s\n", org)
		}
		if desc := r.String("description"); desc != "" {
			fmt.Fprintf(&b, "  %s\n", desc)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatUpdates(records []store.Record) string {
	if len(records) == 0 {
		return NoUpdateText
	}
	var b strings.Builder
	b.WriteString("Latest updates:\n")
	for _, r := range records {
		b.WriteString("\n")
		title := orTBA(r, "title")
		if strings.EqualFold(r.String("priority"), "high") {
			title = "[IMPORTANT] " + title
		}
		fmt.Fprintf(&b, "%s\n", title)
		if content := r.String("content"); content != "" {
			fmt.Fprintf(&b, "  %s\n", content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatFAQs(records []store.Record) string {
	if len(records) == 0 {
		return NoFAQText
	}
	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	for _, r := range records {
		fmt.Fprintf(&b, "\nQ: %s\nA: %s\n", orTBA(r, "question"), orTBA(r, "answer"))
	}
	return strings.TrimRight(b.String(), "\n")
}
