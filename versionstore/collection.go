package versionstore

import (
	"errors"
)

var ErrEmptyCollectionSlug = errors.New("collection slug must not be empty")
var ErrEmptyVersionsTable = errors.New("collection versions table must not be empty")

// Collection describes one versioned entity type: where its version history
// is stored and which resolution strategy resolves its current versions.
//
// TrustLatestFlag selects the flag strategy, which reads the persisted
// Latest marker directly instead of deriving the current version by
// aggregation. It requires the write path to maintain exactly one
// Latest == true record per parent; violations are not corrected at query
// time and surface as duplicated or missing entities.
type Collection struct {
	Slug            string
	VersionsTable   string
	TrustLatestFlag bool
}

// Validate ensures the collection descriptor is usable for resolutions.
func (c Collection) Validate() error {
	if c.Slug == "" {
		return ErrEmptyCollectionSlug
	}

	if c.VersionsTable == "" {
		return ErrEmptyVersionsTable
	}

	return nil
}
