package types

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
)

func CandidateSchema() (string, error) {
	schema := jsonschema.Reflect(&Candidate{})
	schema.Title = "Candidate profile"
	schema.Description = "Profile details collected from a job candidate before the technical questions."
	data, err := sonic.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(data), nil
}
