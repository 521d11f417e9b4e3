package activities

import (
	"net/url"
	"strings"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/validation"
)

// An empty email is accepted; only absence of the parameter is rejected.
var emailQuerySchema = validation.MustCompile(`{
	"type": "object",
	"required": ["email"],
	"properties": {
		"email": {"type": "string", "description": "Student email address"}
	}
}`)

// parseEmail returns the email query parameter or an INVALID_INPUT error.
func parseEmail(query url.Values) (string, error) {
	doc := map[string]interface{}{}
	if query.Has("email") {
		doc["email"] = query.Get("email")
	}

	result, err := emailQuerySchema.Validate(doc)
	if err != nil {
		return "", err
	}
	if !result.Valid {
		return "", errors.NewInvalidInputError("email query parameter is required",
			strings.Join(result.GetErrorMessages(), "; "))
	}
	return doc["email"].(string), nil
}
