package versionstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var ErrEmptyParentID = errors.New("parentID must not be empty")
var ErrInvalidVersionPayloadJSON = errors.New("version payload json is not valid")

// VersionRecords is an alias type for a slice of VersionRecord.
type VersionRecords = []VersionRecord

// ParentIDString is a type alias for string, representing the ID of the entity a version belongs to.
type ParentIDString = string

// VersionRecord is a DTO (data transfer object) representing one historical
// snapshot of an entity: the arbitrary structured payload as JSON plus the
// wrapper's own metadata. The full history of all entities of one type lives
// in one table, keyed loosely by ParentID.
//
// Records are written by an external write path on every draft save; this
// module only reads them. Under the flag strategy the write path must keep
// exactly one record with Latest == true per ParentID.
//
// While its properties are exported, it should only be constructed with the
// supplied factory method BuildVersionRecord.
type VersionRecord struct {
	ID          string
	ParentID    ParentIDString
	PayloadJSON []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Latest      bool
}

// BuildVersionRecord is a factory method for VersionRecord.
//
// Returns an error if parentID is empty or payloadJSON is not valid JSON.
func BuildVersionRecord(
	id string,
	parentID ParentIDString,
	payloadJSON []byte,
	createdAt time.Time,
	updatedAt time.Time,
	latest bool,
) (VersionRecord, error) {

	if parentID == "" {
		return VersionRecord{}, ErrEmptyParentID
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return VersionRecord{}, ErrInvalidVersionPayloadJSON
	}

	return VersionRecord{
		ID:          id,
		ParentID:    parentID,
		PayloadJSON: payloadJSON,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Latest:      latest,
	}, nil
}
