package validator

import (
	"errors"
	"path/filepath"
	"strconv"

	"github.com/shelfdata/shelfcheck/container"
	"github.com/shelfdata/shelfcheck/delayed"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

func init() {
	registerDefault("delayed_array", validateDelayedArray, heightDelayedArray, dimensionsDelayedArray)
}

// SeedArrayKind is the delayed-graph array kind owned by this package:
// a leaf that references a sibling sub-object under seeds/ by 0-based
// index.
const SeedArrayKind = "external seed"

func delayedArrayDimensions(meta *metadata.Object) ([]uint64, error) {
	ns, err := formatNamespace(meta, "delayed_array")
	if err != nil {
		return nil, err
	}
	dims, err := ns.Dimensions("dimensions")
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return nil, verrors.New(verrors.MalformedMetadata, "'dimensions' should not be empty")
	}
	return dims, nil
}

func validateDelayedArray(path string, meta *metadata.Object, opts *Options) error {
	declared, err := delayedArrayDimensions(meta)
	if err != nil {
		return err
	}

	store, err := openStore(path, "array.sf", opts)
	if err != nil {
		return err
	}
	graph, err := store.Root().Group("delayed")
	if err != nil {
		return verrors.New(verrors.MissingRequiredFile, "%v", err)
	}

	checker := opts.DelayedChecker()

	// Install the default seed resolver only if no handler is live; a
	// pre-existing one belongs to the caller (or to an enclosing
	// validation) and must be left untouched. The removal is deferred
	// so the rollback happens on error exits too.
	maxIndex := int64(-1)
	countSeeds := false
	if !checker.HasArrayHandler(SeedArrayKind) {
		countSeeds = true
		checker.SetArrayHandler(SeedArrayKind, func(node *container.Group) ([]uint64, error) {
			return resolveSeed(path, node, &maxIndex, opts)
		})
		defer checker.RemoveArrayHandler(SeedArrayKind)
	}

	dims, err := checker.Validate(graph)
	if err != nil {
		// Seed resolution raises structured errors; keep their kind and
		// frames and only absorb plain grammar failures.
		var ve *verrors.ValidationError
		if errors.As(err, &ve) {
			return ve.WithFrame("", "delayed")
		}
		return verrors.New(verrors.MalformedMetadata, "invalid delayed operation graph: %v", err)
	}
	if !equalDims(dims, declared) {
		return verrors.New(verrors.DimensionMismatch,
			"operation graph produces extents %v but %v are declared", dims, declared)
	}

	if countSeeds {
		seedsDir := filepath.Join(path, "seeds")
		expected := int(maxIndex) + 1
		if expected == 0 {
			if metadata.IsDirectory(seedsDir) {
				observed, err := metadata.CountNonHidden(seedsDir)
				if err != nil {
					return err
				}
				if observed != 0 {
					return verrors.New(verrors.CountMismatch,
						"'seeds' contains %d entries but the graph references none", observed)
				}
			}
			return nil
		}
		observed, err := metadata.CountNonHidden(seedsDir)
		if err != nil {
			return err
		}
		if observed != expected {
			return verrors.New(verrors.CountMismatch,
				"'seeds' contains %d entries but the graph references indices 0..%d", observed, maxIndex)
		}
	}
	return nil
}

// resolveSeed is the default handler for seed-reference leaves: read
// the 0-based index, validate the sibling object it points at, and
// require its dimensions to equal those declared at the reference
// site.
func resolveSeed(path string, node *container.Group, maxIndex *int64, opts *Options) ([]uint64, error) {
	indexDS, err := node.Dataset("index")
	if err != nil {
		return nil, err
	}
	index, err := indexDS.ReadScalarInt()
	if err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, verrors.New(verrors.OutOfRangeIndex, "seed index %d is negative", index)
	}
	if index > *maxIndex {
		*maxIndex = index
	}

	declared, err := delayed.DeclaredDimensions(node)
	if err != nil {
		return nil, err
	}

	role := "seeds/" + strconv.FormatInt(index, 10)
	seedPath, seedMeta, err := childObject(filepath.Join(path, "seeds"), strconv.FormatInt(index, 10))
	if err != nil {
		return nil, err
	}
	if err := ValidateObject(seedPath, seedMeta, opts); err != nil {
		return nil, verrors.Wrap(err, "", role)
	}
	dims, err := Dimensions(seedPath, seedMeta, opts)
	if err != nil {
		return nil, verrors.Wrap(err, "", role)
	}
	if !equalDims(dims, declared) {
		return nil, verrors.New(verrors.DimensionMismatch,
			"seed %d has extents %v but the reference declares %v", index, dims, declared)
	}
	return declared, nil
}

func equalDims(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func heightDelayedArray(path string, meta *metadata.Object, opts *Options) (uint64, error) {
	dims, err := delayedArrayDimensions(meta)
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

func dimensionsDelayedArray(path string, meta *metadata.Object, opts *Options) ([]uint64, error) {
	return delayedArrayDimensions(meta)
}
