package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// Digest is a SHA-256 digest of a serialized parameter stream.
type Digest [sha256.Size]byte

// String returns the digest in lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Checksum returns the digest of the stream WriteBlocks would produce for blocks.
func Checksum(blocks ...mat.Matrix) (Digest, error) {
	h := sha256.New()
	if err := WriteBlocks(h, blocks...); err != nil {
		return Digest{}, err
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// ChecksumReader returns the digest of everything read from r.
// Large files are hashed without loading them into memory.
func ChecksumReader(r io.Reader) (Digest, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, fmt.Errorf("failed to hash stream: %w", err)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// VerifyChecksum hashes r and returns ErrChecksumMismatch unless it equals want.
func VerifyChecksum(r io.Reader, want Digest) error {
	got, err := ChecksumReader(r)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, want)
	}
	return nil
}
