// Package record persists finished interviews as an append-only JSON log.
package record

import (
	"context"
	"time"

	"github.com/tbxark/talentscout/types"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusExited    Status = "exited"
)

// CandidateRecord is the flattened snapshot written once per session.
type CandidateRecord struct {
	SessionID       string                          `json:"session_id"`
	Status          Status                          `json:"status"`
	FullName        string                          `json:"full_name,omitempty"`
	Email           string                          `json:"email,omitempty"`
	Phone           string                          `json:"phone,omitempty"`
	YearsExperience *int                            `json:"years_experience,omitempty"`
	DesiredPosition string                          `json:"desired_position,omitempty"`
	CurrentLocation string                          `json:"current_location,omitempty"`
	TechStack       []string                        `json:"tech_stack,omitempty"`
	Answers         map[string]map[int]types.Answer `json:"answers,omitempty"`
	Timestamp       time.Time                       `json:"timestamp"`
}

// Sink stores records. Implementations serialise concurrent appends.
type Sink interface {
	Append(ctx context.Context, rec CandidateRecord) error
}

// New flattens the collected part of a session into a record. Fields not in
// collected are left empty.
func New(sessionID string, status Status, c types.Candidate, collected map[types.Field]bool, answers map[string]map[int]types.Answer, now time.Time) CandidateRecord {
	rec := CandidateRecord{
		SessionID: sessionID,
		Status:    status,
		Timestamp: now,
	}
	if collected[types.FieldFullName] {
		rec.FullName = c.FullName
	}
	if collected[types.FieldEmail] {
		rec.Email = c.Email
	}
	if collected[types.FieldPhone] {
		rec.Phone = c.Phone
	}
	if collected[types.FieldYearsExperience] {
		years := c.YearsExperience
		rec.YearsExperience = &years
	}
	if collected[types.FieldDesiredPosition] {
		rec.DesiredPosition = c.DesiredPosition
	}
	if collected[types.FieldCurrentLocation] {
		rec.CurrentLocation = c.CurrentLocation
	}
	if collected[types.FieldTechStack] {
		rec.TechStack = append([]string(nil), c.TechStack...)
	}
	if len(answers) > 0 {
		rec.Answers = make(map[string]map[int]types.Answer, len(answers))
		for tech, byNumber := range answers {
			m := make(map[int]types.Answer, len(byNumber))
			for n, a := range byNumber {
				m[n] = a
			}
			rec.Answers[tech] = m
		}
	}
	return rec
}
