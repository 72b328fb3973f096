package serialization

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestChecksum_MatchesSerializedStream(t *testing.T) {
	w := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := mat.NewVecDense(2, []float64{-1, 1})

	var buf bytes.Buffer
	require.NoError(t, WriteBlocks(&buf, w, b))

	sum, err := Checksum(w, b)
	require.NoError(t, err)
	assert.Equal(t, Digest(sha256.Sum256(buf.Bytes())), sum)

	fromReader, err := ChecksumReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, sum, fromReader)
	assert.Len(t, sum.String(), 64)
}

func TestChecksum_SensitiveToValuesAndShape(t *testing.T) {
	a, err := Checksum(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	require.NoError(t, err)
	b, err := Checksum(mat.NewDense(2, 2, []float64{1, 2, 3, 5}))
	require.NoError(t, err)
	c, err := Checksum(mat.NewDense(1, 4, []float64{1, 2, 3, 4}))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestVerifyChecksum(t *testing.T) {
	m := mat.NewDense(1, 2, []float64{0.5, 0.25})
	var buf bytes.Buffer
	require.NoError(t, WriteBlocks(&buf, m))

	sum, err := Checksum(m)
	require.NoError(t, err)
	assert.NoError(t, VerifyChecksum(bytes.NewReader(buf.Bytes()), sum))

	data := buf.Bytes()
	data[len(data)-1] ^= 0xff
	err = VerifyChecksum(bytes.NewReader(data), sum)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}
