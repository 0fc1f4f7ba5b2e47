package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorChainRendering(t *testing.T) {
	err := New(OutOfRangeIndex, "index 7 exceeds the number of levels")
	err = err.WithFrame("", "codes")
	err = err.WithFrame("/data/experiment/assays/0", "child")
	err = err.WithFrame("/data/experiment", "")

	assert.Equal(t,
		"failed to validate '/data/experiment'; "+
			"failed to validate 'child' at '/data/experiment/assays/0'; "+
			"failed to validate 'codes'; "+
			"index 7 exceeds the number of levels",
		err.Error())
}

func TestErrorWithoutFrames(t *testing.T) {
	err := New(MalformedMetadata, "missing 'version' property")
	assert.Equal(t, "missing 'version' property", err.Error())
}

func TestIs(t *testing.T) {
	err := New(DimensionMismatch, "expected 10 rows, found 9").WithFrame("/x", "")

	assert.True(t, stderrors.Is(err, &ValidationError{Kind: DimensionMismatch}))
	assert.False(t, stderrors.Is(err, &ValidationError{Kind: CountMismatch}))
	assert.False(t, stderrors.Is(err, stderrors.New("plain")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, DuplicateKey, KindOf(New(DuplicateKey, "duplicate name 'a'")))
	assert.Equal(t, Unknown, KindOf(stderrors.New("plain")))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestWrap(t *testing.T) {
	t.Run("adds frame to validation error", func(t *testing.T) {
		inner := New(CountMismatch, "expected 3 entries")
		wrapped := Wrap(inner, "/obj", "entries")
		assert.Equal(t, CountMismatch, wrapped.Kind)
		require.Len(t, wrapped.Frames, 1)
		assert.Equal(t, Frame{Path: "/obj", Role: "entries"}, wrapped.Frames[0])
	})

	t.Run("absorbs plain errors", func(t *testing.T) {
		wrapped := Wrap(fmt.Errorf("read failed"), "/obj", "")
		assert.Equal(t, Unknown, wrapped.Kind)
		assert.Equal(t, "failed to validate '/obj'; read failed", wrapped.Error())
	})
}

func TestMarshalJSON(t *testing.T) {
	err := New(UnsortedCoordinate, "indices are not strictly increasing").WithFrame("/m", "indices")

	raw, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.JSONEq(t,
		`{"kind": "unsorted_or_duplicate_coordinate",
		  "message": "indices are not strictly increasing",
		  "frames": [{"path": "/m", "role": "indices"}]}`,
		string(raw))
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "not_a_directory", NotADirectory.String())
	assert.Equal(t, "unsupported_version", UnsupportedVersion.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
