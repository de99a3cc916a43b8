package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadMax267/payload/config"
	"github.com/MadMax267/payload/versionstore"
)

const validCollectionsYAML = `
collections:
  - slug: posts
    versionsTable: posts_versions
    trustLatestFlag: false
  - slug: pages
    versionsTable: pages_versions
    trustLatestFlag: true
`

func Test_ParseCollections(t *testing.T) {
	collections, err := config.ParseCollections([]byte(validCollectionsYAML))

	require.NoError(t, err)
	require.Len(t, collections, 2)

	assert.Equal(t, versionstore.Collection{
		Slug:          "posts",
		VersionsTable: "posts_versions",
	}, collections["posts"])

	assert.Equal(t, versionstore.Collection{
		Slug:            "pages",
		VersionsTable:   "pages_versions",
		TrustLatestFlag: true,
	}, collections["pages"])
}

func Test_ParseCollections_ErrorCases(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		expectedErr error
	}{
		{
			name:        "not yaml at all",
			yaml:        `collections: {{`,
			expectedErr: config.ErrParsingCollectionsFileFailed,
		},
		{
			name: "missing versions table",
			yaml: `
collections:
  - slug: posts
`,
			expectedErr: versionstore.ErrEmptyVersionsTable,
		},
		{
			name: "missing slug",
			yaml: `
collections:
  - versionsTable: posts_versions
`,
			expectedErr: versionstore.ErrEmptyCollectionSlug,
		},
		{
			name: "duplicate slug",
			yaml: `
collections:
  - slug: posts
    versionsTable: posts_versions
  - slug: posts
    versionsTable: other_versions
`,
			expectedErr: config.ErrDuplicateCollectionSlug,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseCollections([]byte(tt.yaml))

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_LoadCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validCollectionsYAML), 0o600))

	collections, err := config.LoadCollections(path)

	require.NoError(t, err)
	assert.Len(t, collections, 2)
}

func Test_LoadCollections_MissingFile(t *testing.T) {
	_, err := config.LoadCollections(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorIs(t, err, config.ErrReadingCollectionsFileFailed)
}

func Test_PostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	assert.Contains(t, config.PostgresDSN(), "postgres://")

	t.Setenv("POSTGRES_DSN", "postgres://someone:secret@db:5432/app")
	assert.Equal(t, "postgres://someone:secret@db:5432/app", config.PostgresDSN())
}
