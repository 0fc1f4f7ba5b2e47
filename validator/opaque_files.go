package validator

import (
	"os"
	"path/filepath"

	"github.com/shelfdata/shelfcheck/internal/sniff"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

// Opaque third-party file formats are validated by signature only;
// callers wanting real parsing install a strict check on Options.
func init() {
	registerDefault("bam_file", opaqueFileValidator("bam_file", "file.bam", sniff.BAM), nil, nil)
	registerDefault("fasta_file", opaqueFileValidator("fasta_file", "file.fasta", sniff.FASTA), nil, nil)
	registerDefault("bigwig_file", opaqueFileValidator("bigwig_file", "file.bw", sniff.BigWig), nil, nil)
}

func opaqueFileValidator(namespace, payload, format string) ValidateFn {
	return func(path string, meta *metadata.Object, opts *Options) error {
		if _, err := formatNamespace(meta, namespace); err != nil {
			return err
		}
		file := filepath.Join(path, payload)
		if _, err := os.Stat(file); err != nil {
			return verrors.New(verrors.MissingRequiredFile, "expected a '%s' file", payload)
		}
		if err := sniff.Check(file, format); err != nil {
			return verrors.New(verrors.CorruptSignature, "%v", err)
		}
		if strict, ok := opts.StrictChecks[format]; ok {
			if err := strict(file); err != nil {
				return verrors.New(verrors.CorruptSignature, "failed the strict '%s' check: %v", format, err)
			}
		}
		return nil
	}
}
