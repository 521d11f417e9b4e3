package activities

import (
	"bytes"
	"encoding/json"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/events"
	"mergington-activities/internal/models"
	"mergington-activities/internal/registry"
)

// MessageResponse is the body of a successful signup or unregister.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListResponse encodes as a JSON object keyed by activity name, with keys
// in Names order.
type ListResponse struct {
	Names      []string
	Activities map[string]models.Activity
}

func (l ListResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range l.Names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(l.Activities[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type ServiceDependencies struct {
	Registry      *registry.Registry
	Dispatcher    *events.Dispatcher
	Logger        logger.Logger
	Observability *observability.Observability
}
