package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/streakedin/streakedin/internal/model"
)

func reminderPrompt(input string) string {
	return fmt.Sprintf(`Create a reminder from this request: %q

Respond with only a JSON object with these fields:
{"title": string, "description": string, "type": "email"|"browser"|"sms", "frequency": "once"|"daily"|"weekly"|"monthly", "enabled": true}`, input)
}

func taskPrompt(input string, now time.Time) string {
	return fmt.Sprintf(`Today is %s. Create a task from this request: %q

Respond with only a JSON object with these fields:
{"title": string, "description": string, "priority": "low"|"medium"|"high", "dueDate": "YYYY-MM-DD" or null}`,
		model.FormatDate(now), input)
}

func goalPrompt(input string, now time.Time) string {
	return fmt.Sprintf(`Today is %s. Turn this request into a concrete, measurable goal: %q

Respond with only a JSON object with these fields:
{"title": string, "description": string, "category": one of [%s], "deadline": "YYYY-MM-DD"}`,
		model.FormatDate(now), input, quoteAll(model.GoalCategories))
}

func quoteAll(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(q, ", ")
}
