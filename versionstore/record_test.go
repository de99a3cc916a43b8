package versionstore_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadMax267/payload/versionstore"
)

func Test_BuildVersionRecord(t *testing.T) {
	now := time.Now()
	recordID := uuid.NewString()

	record, err := versionstore.BuildVersionRecord(recordID, "post-1", []byte(`{"title": "hello"}`), now, now, true)

	require.NoError(t, err)
	assert.Equal(t, recordID, record.ID)
	assert.Equal(t, "post-1", record.ParentID)
	assert.Equal(t, []byte(`{"title": "hello"}`), record.PayloadJSON)
	assert.Equal(t, now, record.CreatedAt)
	assert.Equal(t, now, record.UpdatedAt)
	assert.True(t, record.Latest)
}

func Test_BuildVersionRecord_ErrorCases(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		parentID    string
		payloadJSON []byte
		expectedErr error
	}{
		{
			name:        "empty parent id",
			parentID:    "",
			payloadJSON: []byte(`{"title": "hello"}`),
			expectedErr: versionstore.ErrEmptyParentID,
		},
		{
			name:        "invalid payload JSON",
			parentID:    "post-1",
			payloadJSON: []byte(`{"title": hello}`),
			expectedErr: versionstore.ErrInvalidVersionPayloadJSON,
		},
		{
			name:        "empty payload JSON",
			parentID:    "post-1",
			payloadJSON: []byte(``),
			expectedErr: versionstore.ErrInvalidVersionPayloadJSON,
		},
		{
			name:        "nil payload JSON",
			parentID:    "post-1",
			payloadJSON: nil,
			expectedErr: versionstore.ErrInvalidVersionPayloadJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := versionstore.BuildVersionRecord(uuid.NewString(), tt.parentID, tt.payloadJSON, now, now, false)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
