package dialogue

import (
	"fmt"

	"github.com/tbxark/talentscout/types"
)

var fieldPrompts = map[types.Field]string{
	types.FieldFullName:        "Hello! I'm the TalentScout hiring assistant. I'll collect a few details and then ask some technical questions.\n\nWhat is your **full name**?",
	types.FieldEmail:           "What is your **email address**?",
	types.FieldPhone:           "What is your **phone number**? (at least 10 digits)",
	types.FieldYearsExperience: "How many **years of experience** do you have? (0-50)",
	types.FieldDesiredPosition: "Which **position(s)** are you applying for?",
	types.FieldCurrentLocation: "Where are you **currently located**?",
	types.FieldTechStack:       "Please list your **tech stack**, separated by commas (e.g. Python, Django, PostgreSQL).",
}

func formatFieldPrompt(f types.Field) string {
	if p, ok := fieldPrompts[f]; ok {
		return p
	}
	return fmt.Sprintf("Please provide your %s.", f.DisplayName())
}

func formatQuestion(technology string, number, total int, question string) string {
	return fmt.Sprintf("**%s** (question %d/%d): %s", technology, number, total, question)
}
