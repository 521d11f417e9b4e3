// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/validation"
	"mergington-activities/internal/models"
)

var schema = validation.MustCompile(catalogSchema)

// LoadCatalog reads and schema-checks a JSON catalog file. Registry
// invariants (unique names, capacity) are enforced later by registry.New.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	result, err := schema.ValidateJSON(data)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewCatalogInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error())
	}
	return &c, nil
}

// ToActivities converts catalog entries to registry seed values.
func (c *Catalog) ToActivities() []models.Activity {
	out := make([]models.Activity, 0, len(c.Activities))
	for _, a := range c.Activities {
		out = append(out, models.Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    append([]string(nil), a.Participants...),
		})
	}
	return out
}

// FromActivities builds a catalog from registry values.
func FromActivities(version string, activities []models.Activity) *Catalog {
	c := &Catalog{
		Version:     version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Activities:  make([]Activity, 0, len(activities)),
	}
	for _, a := range activities {
		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		c.Activities = append(c.Activities, Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    append([]string{}, participants...),
		})
	}
	return c
}

// Find returns the index of the named activity, or -1.
func (c *Catalog) Find(name string) int {
	for i, a := range c.Activities {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Save writes the catalog as indented JSON, creating parent directories.
func (c *Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
