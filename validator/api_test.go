package validator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func TestValidateEntryPoints(t *testing.T) {
	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "f")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		assert.Equal(t, verrors.NotADirectory, verrors.KindOf(Validate(file, nil)))
	})

	t.Run("missing OBJECT file", func(t *testing.T) {
		assert.Equal(t, verrors.MissingRequiredFile, verrors.KindOf(Validate(t.TempDir(), nil)))
	})

	t.Run("unregistered type", func(t *testing.T) {
		dir := t.TempDir()
		writeObjectDoc(t, dir, "martian_matrix", nil)
		assert.Equal(t, verrors.UnregisteredType, verrors.KindOf(Validate(dir, nil)))

		_, err := Height(dir, nil, nil)
		assert.Equal(t, verrors.UnregisteredType, verrors.KindOf(err))

		_, err = Dimensions(dir, nil, nil)
		assert.Equal(t, verrors.UnregisteredType, verrors.KindOf(err))
	})

	t.Run("failure carries the root frame", func(t *testing.T) {
		dir := t.TempDir()
		writeObjectDoc(t, dir, "atomic_vector", map[string]map[string]interface{}{
			"atomic_vector": ns1(map[string]interface{}{"type": "integer"}),
		})
		err := Validate(dir, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), dir)
		assert.Contains(t, err.Error(), "atomic_vector")
	})
}

func TestOverrides(t *testing.T) {
	t.Run("validate override wins over the registry", func(t *testing.T) {
		dir := t.TempDir()
		intVectorFixture(t, dir, []int64{1, 2, 3})

		opts := NewOptions()
		opts.ValidateOverrides = map[string]ValidateFn{
			"atomic_vector": func(path string, meta *metadata.Object, opts *Options) error {
				return verrors.New(verrors.TypeContractViolation, "rejected by override")
			},
		}
		assert.Equal(t, verrors.TypeContractViolation, verrors.KindOf(Validate(dir, opts)))
	})

	t.Run("height override", func(t *testing.T) {
		dir := t.TempDir()
		intVectorFixture(t, dir, []int64{1, 2, 3})

		opts := NewOptions()
		opts.HeightOverrides = map[string]HeightFn{
			"atomic_vector": func(path string, meta *metadata.Object, opts *Options) (uint64, error) {
				return 99, nil
			},
		}
		h, err := Height(dir, nil, opts)
		require.NoError(t, err)
		assert.Equal(t, uint64(99), h)
	})

	t.Run("override registers an application type", func(t *testing.T) {
		dir := t.TempDir()
		writeObjectDoc(t, dir, "custom_blob", nil)

		opts := NewOptions()
		opts.ValidateOverrides = map[string]ValidateFn{
			"custom_blob": func(path string, meta *metadata.Object, opts *Options) error {
				return nil
			},
		}
		assert.NoError(t, Validate(dir, opts))
	})
}

func TestPostValidate(t *testing.T) {
	t.Run("runs after every successful validation", func(t *testing.T) {
		dir := t.TempDir()
		simpleListFixture(t, dir, 1)
		intVectorFixture(t, filepath.Join(dir, "entries", "0"), []int64{1})

		var seen []string
		opts := NewOptions()
		opts.PostValidate = func(path string, meta *metadata.Object, opts *Options) error {
			seen = append(seen, meta.Type)
			return nil
		}
		require.NoError(t, Validate(dir, opts))
		assert.Equal(t, []string{"atomic_vector", "simple_list"}, seen)
	})

	t.Run("hook failure fails the validation", func(t *testing.T) {
		dir := t.TempDir()
		intVectorFixture(t, dir, []int64{1})

		opts := NewOptions()
		opts.PostValidate = func(path string, meta *metadata.Object, opts *Options) error {
			return errors.New("rejected by policy")
		}
		err := Validate(dir, opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected by policy")
	})
}

func TestRegisterApplicationType(t *testing.T) {
	RegisterValidate("test_only_blob", func(path string, meta *metadata.Object, opts *Options) error {
		return nil
	})
	RegisterHeight("test_only_blob", func(path string, meta *metadata.Object, opts *Options) (uint64, error) {
		return 7, nil
	})
	RegisterDimensions("test_only_blob", func(path string, meta *metadata.Object, opts *Options) ([]uint64, error) {
		return []uint64{7}, nil
	})

	dir := t.TempDir()
	writeObjectDoc(t, dir, "test_only_blob", nil)

	assert.NoError(t, Validate(dir, nil))
	h, err := Height(dir, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), h)
	dims, err := Dimensions(dir, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7}, dims)
}

func TestParallelStreaming(t *testing.T) {
	dir := t.TempDir()
	codes := make([]int64, 500)
	for i := range codes {
		codes[i] = int64(i % 3)
	}
	factorFixture(t, dir, codes, []string{"low", "mid", "high"})

	opts := NewOptions()
	opts.Parallel = true
	opts.BlockSize = 32
	assert.NoError(t, Validate(dir, opts))

	codes[499] = 3
	broken := t.TempDir()
	factorFixture(t, broken, codes, []string{"low", "mid", "high"})
	assert.Equal(t, verrors.OutOfRangeIndex, verrors.KindOf(Validate(broken, opts)))
}
