// Package sniff checks the leading magic bytes of opaque third-party
// file formats. These checks establish only that a file plausibly is
// what it claims to be; deeper structural checks belong to the
// caller-supplied strict callbacks.
package sniff

import (
	"bytes"
	"fmt"
	"os"
)

// Format names accepted by Check
const (
	BAM    = "bam"
	FASTA  = "fasta"
	BigWig = "bigwig"
	PNG    = "png"
	TIFF   = "tiff"
)

var (
	// BAM payloads are BGZF-compressed, so the outer signature is gzip
	gzipMagic   = []byte{0x1f, 0x8b}
	pngMagic    = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	tiffLEMagic = []byte{'I', 'I', 0x2a, 0x00}
	tiffBEMagic = []byte{'M', 'M', 0x00, 0x2a}
	// bigWig stores its magic little- or big-endian depending on the writer
	bigwigLEMagic = []byte{0x26, 0xfc, 0x8f, 0x88}
	bigwigBEMagic = []byte{0x88, 0x8f, 0xfc, 0x26}
)

// Check reads the head of the file at path and verifies it against the
// named format's signature.
func Check(path, format string) error {
	head := make([]byte, 8)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	n, _ := f.Read(head)
	head = head[:n]

	switch format {
	case BAM:
		if !bytes.HasPrefix(head, gzipMagic) {
			return fmt.Errorf("'%s' does not start with the BGZF signature", path)
		}
	case FASTA:
		if len(head) == 0 || (head[0] != '>' && head[0] != ';') {
			return fmt.Errorf("'%s' does not start with a FASTA header line", path)
		}
	case BigWig:
		if !bytes.HasPrefix(head, bigwigLEMagic) && !bytes.HasPrefix(head, bigwigBEMagic) {
			return fmt.Errorf("'%s' does not start with the bigWig signature", path)
		}
	case PNG:
		if !bytes.HasPrefix(head, pngMagic) {
			return fmt.Errorf("'%s' does not start with the PNG signature", path)
		}
	case TIFF:
		if !bytes.HasPrefix(head, tiffLEMagic) && !bytes.HasPrefix(head, tiffBEMagic) {
			return fmt.Errorf("'%s' does not start with the TIFF signature", path)
		}
	default:
		return fmt.Errorf("unknown file format '%s'", format)
	}
	return nil
}
