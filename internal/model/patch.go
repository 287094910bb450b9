package model

import "time"

// GoalPatch carries a partial goal update. Nil fields are left untouched.
type GoalPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Progress    *int        `json:"progress,omitempty"`
	Deadline    *string     `json:"deadline,omitempty"`
	Category    *string     `json:"category,omitempty"`
	AISuggested *bool       `json:"aiSuggested,omitempty"`
	Status      *GoalStatus `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p GoalPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Progress == nil && p.Deadline == nil &&
		p.Category == nil && p.AISuggested == nil && p.Status == nil
}

// Apply mutates g with every non-nil field.
func (p GoalPatch) Apply(g *Goal) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Progress != nil {
		g.Progress = *p.Progress
	}
	if p.Deadline != nil {
		g.Deadline = *p.Deadline
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	if p.AISuggested != nil {
		g.AISuggested = *p.AISuggested
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
}

// TaskPatch carries a partial task update.
// An empty-string DueDate or GoalID clears the field.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	GoalID      *string   `json:"goalId,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil && p.Priority == nil &&
		p.DueDate == nil && p.GoalID == nil
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = optional(*p.DueDate)
	}
	if p.GoalID != nil {
		t.GoalID = optional(*p.GoalID)
	}
}

// ReminderPatch carries a partial reminder update.
// ClearNextTrigger removes the scheduled trigger.
type ReminderPatch struct {
	Title            *string       `json:"title,omitempty"`
	Description      *string       `json:"description,omitempty"`
	Type             *ReminderType `json:"type,omitempty"`
	Frequency        *Frequency    `json:"frequency,omitempty"`
	Enabled          *bool         `json:"enabled,omitempty"`
	NextTrigger      *time.Time    `json:"nextTrigger,omitempty"`
	ClearNextTrigger bool          `json:"clearNextTrigger,omitempty"`
}

func (p ReminderPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Type == nil && p.Frequency == nil &&
		p.Enabled == nil && p.NextTrigger == nil && !p.ClearNextTrigger
}

func (p ReminderPatch) Apply(r *Reminder) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Frequency != nil {
		r.Frequency = *p.Frequency
	}
	if p.Enabled != nil {
		r.Enabled = *p.Enabled
	}
	if p.ClearNextTrigger {
		r.NextTrigger = nil
	} else if p.NextTrigger != nil {
		ts := p.NextTrigger.UTC()
		r.NextTrigger = &ts
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NextOccurrence advances from by one period of f. Once has no next occurrence.
func NextOccurrence(f Frequency, from time.Time) (time.Time, bool) {
	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1), true
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7), true
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}
