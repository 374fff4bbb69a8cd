// ABOUTME: Binary encoding for embedding vectors stored as BLOB columns
// ABOUTME: Little-endian float64 layout, eight bytes per component
package sqlite

import (
	"encoding/binary"
	"math"
)

func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	if count == 0 {
		return nil
	}
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		vector[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return vector
}
