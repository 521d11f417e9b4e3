// pkg/catalog/schema.go
package catalog

// Catalog is the on-disk activity catalog.
type Catalog struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

const catalogSchema = `{
	"type": "object",
	"required": ["activities"],
	"properties": {
		"version": {"type": "string"},
		"lastUpdated": {"type": "string"},
		"activities": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "description", "schedule", "max_participants"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"schedule": {"type": "string"},
					"max_participants": {"type": "integer", "minimum": 1},
					"participants": {
						"type": "array",
						"items": {"type": "string"}
					}
				}
			}
		}
	}
}`
