package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// QuestionRequest is the input handed to a question source for one technology.
type QuestionRequest struct {
	Technology      string    `json:"technology"`
	Count           int       `json:"count"`
	Candidate       Candidate `json:"candidate"`
	CandidateSchema string    `json:"-"`
}

var fieldLabels = map[Field]string{
	FieldFullName:        "Full name",
	FieldEmail:           "Email",
	FieldPhone:           "Phone",
	FieldYearsExperience: "Years of experience",
	FieldDesiredPosition: "Desired position",
	FieldCurrentLocation: "Current location",
	FieldTechStack:       "Tech stack",
}

func (f Field) DisplayName() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return string(f)
}

// Value returns the display value of field f, or "" when it is unset.
func (c Candidate) Value(f Field) string {
	switch f {
	case FieldFullName:
		return c.FullName
	case FieldEmail:
		return c.Email
	case FieldPhone:
		return c.Phone
	case FieldYearsExperience:
		return strconv.Itoa(c.YearsExperience)
	case FieldDesiredPosition:
		return c.DesiredPosition
	case FieldCurrentLocation:
		return c.CurrentLocation
	case FieldTechStack:
		return strings.Join(c.TechStack, ", ")
	default:
		return ""
	}
}

// FormatCandidate renders the given fields of c as a markdown table.
func FormatCandidate(c Candidate, fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	for _, f := range fields {
		_ = table.Append(f.DisplayName(), c.Value(f))
	}
	_ = table.Render()
	return buf.String()
}

func FormatQuestionRequest(req *QuestionRequest) (string, error) {
	candidateJSON, err := sonic.Marshal(req.Candidate)
	if err != nil {
		return "", err
	}
	sections := []string{
		fmt.Sprintf("# Current Date: \n %s", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("# Technology:\n%s", req.Technology),
		fmt.Sprintf("# Number of questions:\n%d", req.Count),
		fmt.Sprintf("# Candidate profile JSON:\n```json\n%s\n```", string(candidateJSON)),
	}
	if req.CandidateSchema != "" {
		sections = append(sections, fmt.Sprintf("# Candidate profile schema JSON:\n```json\n%s\n```", req.CandidateSchema))
	}
	return strings.Join(sections, "\n\n"), nil
}
