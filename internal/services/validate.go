package services

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/streakedin/streakedin/internal/model"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	maxPromptLen      = 1000
	maxMessageLen     = 8000
	minPasswordLen    = 8
	// bcrypt rejects longer inputs
	maxPasswordBytes  = 72
)

func validateTitle(field, s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewValidationError(field, "is required")
	}
	if utf8.RuneCountInString(s) > maxTitleLen {
		return NewValidationError(field, "must be at most 200 characters")
	}
	return nil
}

func validateDescription(s string) error {
	if utf8.RuneCountInString(s) > maxDescriptionLen {
		return NewValidationError("description", "must be at most 2000 characters")
	}
	return nil
}

func validateProgress(p int) error {
	if p < 0 || p > 100 {
		return NewValidationError("progress", "must be between 0 and 100")
	}
	return nil
}

// validateDate accepts an empty string when optional is true.
func validateDate(field, s string, optional bool) error {
	if s == "" && optional {
		return nil
	}
	if !model.ValidDate(s) {
		return NewValidationError(field, "must be a YYYY-MM-DD date")
	}
	return nil
}

func validatePrompt(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewValidationError("prompt", "is required")
	}
	if utf8.RuneCountInString(s) > maxPromptLen {
		return NewValidationError("prompt", "must be at most 1000 characters")
	}
	return nil
}

func validateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != strings.TrimSpace(s) {
		return NewValidationError("email", "must be a valid email address")
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < minPasswordLen {
		return NewValidationError("password", "must be at least 8 characters")
	}
	if len(s) > maxPasswordBytes {
		return NewValidationError("password", "must be at most 72 bytes")
	}
	return nil
}

func validateGoalPatch(p model.GoalPatch) error {
	if p.Empty() {
		return NewValidationError("body", "no fields to update")
	}
	if p.Title != nil {
		if err := validateTitle("title", *p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Progress != nil {
		if err := validateProgress(*p.Progress); err != nil {
			return err
		}
	}
	if p.Deadline != nil {
		if err := validateDate("deadline", *p.Deadline, true); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("status", "must be active, completed or paused")
	}
	return nil
}

func validateTaskPatch(p model.TaskPatch) error {
	if p.Empty() {
		return NewValidationError("body", "no fields to update")
	}
	if p.Title != nil {
		if err := validateTitle("title", *p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return NewValidationError("priority", "must be low, medium or high")
	}
	if p.DueDate != nil {
		if err := validateDate("dueDate", *p.DueDate, true); err != nil {
			return err
		}
	}
	return nil
}

func validateReminderPatch(p model.ReminderPatch) error {
	if p.Empty() {
		return NewValidationError("body", "no fields to update")
	}
	if p.Title != nil {
		if err := validateTitle("title", *p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return NewValidationError("type", "must be email, browser or sms")
	}
	if p.Frequency != nil && !p.Frequency.Valid() {
		return NewValidationError("frequency", "must be once, daily, weekly or monthly")
	}
	return nil
}
