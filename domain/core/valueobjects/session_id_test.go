package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "simkernel/pkg/errors"
)

func TestNewSessionID(t *testing.T) {
	t.Run("accepts ids of minimum length", func(t *testing.T) {
		id, err := NewSessionID("abcd")
		require.NoError(t, err)
		assert.Equal(t, "abcd", id.String())
		assert.False(t, id.IsZero())
	})

	t.Run("rejects short ids with BAD_SESSION_ID", func(t *testing.T) {
		_, err := NewSessionID("abc")
		require.Error(t, err)
		var appErr *pkgerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, pkgerrors.CodeBadSessionID, appErr.Code)
	})
}

func TestSessionIDMarshalJSON(t *testing.T) {
	t.Run("plain id", func(t *testing.T) {
		id, err := NewSessionID("sess-1")
		require.NoError(t, err)
		out, err := json.Marshal(id)
		require.NoError(t, err)
		assert.Equal(t, `"sess-1"`, string(out))
	})

	t.Run("escapes quotes and control characters", func(t *testing.T) {
		id, err := NewSessionID("se\"ss\n1")
		require.NoError(t, err)
		out, err := json.Marshal(id)
		require.NoError(t, err)

		var roundTripped string
		require.NoError(t, json.Unmarshal(out, &roundTripped))
		assert.Equal(t, "se\"ss\n1", roundTripped)
	})
}
