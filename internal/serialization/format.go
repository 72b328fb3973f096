package serialization

import "encoding/binary"

// Format constants.
const (
	BlockHeaderSize  = 16      // int64 rows + int64 cols
	ScalarSize       = 8       // float64 payload element
	MaxBlockElements = 1 << 28 // Upper bound on rows*cols accepted from a stream
	MaxBlocks        = 1 << 16 // Upper bound on blocks read in one call
	chunkElements    = 1 << 14 // Payloads are decoded this many scalars at a time
)

// byteOrder is the byte order of every integer and scalar in the stream.
var byteOrder = binary.LittleEndian
