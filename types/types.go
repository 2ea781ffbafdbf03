package types

type State string

const (
	StateGreeting        State = "greeting"
	StateCollectingInfo  State = "collecting_info"
	StateAskingQuestions State = "asking_questions"
	StateCompleted       State = "completed"
)

type Field string

const (
	FieldFullName        Field = "full_name"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldYearsExperience Field = "years_experience"
	FieldDesiredPosition Field = "desired_position"
	FieldCurrentLocation Field = "current_location"
	FieldTechStack       Field = "tech_stack"
)

// FieldOrder is the order in which profile fields are asked for.
var FieldOrder = []Field{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldYearsExperience,
	FieldDesiredPosition,
	FieldCurrentLocation,
	FieldTechStack,
}

type FieldInfo struct {
	JSONPointer string `json:"json_pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Candidate is the profile collected during the info phase.
type Candidate struct {
	FullName        string   `json:"full_name,omitempty" jsonschema:"description=Candidate full name"`
	Email           string   `json:"email,omitempty" jsonschema:"description=Contact email address"`
	Phone           string   `json:"phone,omitempty" jsonschema:"description=Phone number, digits only"`
	YearsExperience int      `json:"years_experience" jsonschema:"minimum=0,maximum=50,description=Years of professional experience"`
	DesiredPosition string   `json:"desired_position,omitempty" jsonschema:"description=Desired position(s)"`
	CurrentLocation string   `json:"current_location,omitempty" jsonschema:"description=Current location"`
	TechStack       []string `json:"tech_stack,omitempty" jsonschema:"description=Technologies the candidate works with"`
}

type TechQuestionSet struct {
	Technology string   `json:"technology"`
	Questions  []string `json:"questions"`
}

type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
