package versionstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// ErrResolvingEntityFailed is returned when a version row's payload cannot be
// decoded into the flat entity shape.
var ErrResolvingEntityFailed = errors.New("resolving entity from version row failed")

// Entities is an alias type for a slice of Entity.
type Entities = []Entity

// Entity is the flattened, caller-facing representation of an entity's
// currently resolved version: the payload fields of the winning
// VersionRecord plus the wrapper's own metadata.
//
// ID always equals the owning entity's ParentID, never the ID of the
// version row the payload came from.
type Entity struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResolveEntity normalizes one raw version row into the flat Entity shape.
//
// The wrapper metadata is applied after the payload fields, so payload
// fields literally named "id", "createdAt" or "updatedAt" can never shadow
// the metadata-derived values.
func ResolveEntity(
	parentID ParentIDString,
	payloadJSON []byte,
	createdAt time.Time,
	updatedAt time.Time,
) (Entity, error) {

	fields := make(map[string]any)

	if len(payloadJSON) > 0 {
		if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &fields); unmarshalErr != nil {
			return Entity{}, errors.Join(ErrResolvingEntityFailed, unmarshalErr)
		}
	}

	// metadata wins over same-named payload fields
	delete(fields, FieldID)
	delete(fields, FieldCreatedAt)
	delete(fields, FieldUpdatedAt)

	return Entity{
		ID:        parentID,
		Fields:    fields,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// MarshalJSON emits the flat document shape callers expect:
// the payload fields spread onto one object with the metadata applied last.
func (e Entity) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Fields)+len(metadataFields))

	for key, value := range e.Fields {
		flat[key] = value
	}

	flat[FieldID] = e.ID
	flat[FieldCreatedAt] = e.CreatedAt
	flat[FieldUpdatedAt] = e.UpdatedAt

	return jsoniter.ConfigFastest.Marshal(flat)
}
