package sniff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHead(t *testing.T, head []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload")
	require.NoError(t, os.WriteFile(path, head, 0o644))
	return path
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		format string
		head   []byte
		ok     bool
	}{
		{"bam gzip signature", BAM, []byte{0x1f, 0x8b, 0x08}, true},
		{"bam plain text", BAM, []byte("BAM\x01"), false},
		{"fasta header", FASTA, []byte(">seq1\nACGT"), true},
		{"fasta comment header", FASTA, []byte("; comment"), true},
		{"fasta empty file", FASTA, nil, false},
		{"fasta wrong first byte", FASTA, []byte("ACGT"), false},
		{"bigwig little endian", BigWig, []byte{0x26, 0xfc, 0x8f, 0x88}, true},
		{"bigwig big endian", BigWig, []byte{0x88, 0x8f, 0xfc, 0x26}, true},
		{"bigwig truncated", BigWig, []byte{0x26, 0xfc}, false},
		{"png", PNG, []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, true},
		{"png truncated", PNG, []byte{0x89, 'P', 'N'}, false},
		{"tiff little endian", TIFF, []byte{'I', 'I', 0x2a, 0x00}, true},
		{"tiff big endian", TIFF, []byte{'M', 'M', 0x00, 0x2a}, true},
		{"tiff bad order mark", TIFF, []byte{'I', 'M', 0x2a, 0x00}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(writeHead(t, tt.head), tt.format)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, Check(writeHead(t, []byte("x")), "gif"))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, Check(filepath.Join(t.TempDir(), "gone"), PNG))
	})
}
