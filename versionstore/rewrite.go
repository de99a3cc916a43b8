package versionstore

// Field names of the version wrapper's own metadata. Filter and sort keys
// using these names address the wrapper directly; every other key addresses
// the nested version payload.
const (
	FieldID        FieldNameString = "id"
	FieldCreatedAt FieldNameString = "createdAt"
	FieldUpdatedAt FieldNameString = "updatedAt"
)

// VersionFieldPrefix is the namespace prefix addressing fields inside the
// nested version payload of a wrapper record.
const VersionFieldPrefix = "version."

// metadataFields is the single source of truth for which keys live on the
// version wrapper itself. Both resolution strategies must consult this set,
// never a local copy.
var metadataFields = map[FieldNameString]struct{}{
	FieldID:        {},
	FieldCreatedAt: {},
	FieldUpdatedAt: {},
}

// IsMetadataField reports whether key addresses wrapper metadata rather than
// the version payload.
func IsMetadataField(key FieldNameString) bool {
	_, ok := metadataFields[key]

	return ok
}

// RewriteVersionKey maps a caller-supplied field name to its location in a
// version wrapper record: metadata keys map to themselves, every other key
// is prefixed into the version payload namespace.
//
// The function is total over any string key and is applied exactly once per
// resolution; rewriting an already rewritten key is not meaningful.
func RewriteVersionKey(key FieldNameString) FieldNameString {
	if IsMetadataField(key) {
		return key
	}

	return VersionFieldPrefix + key
}
