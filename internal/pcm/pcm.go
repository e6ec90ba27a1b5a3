// Package pcm converts between the two sample representations that cross
// the VAD boundary: little-endian int16 PCM bytes (Frame) and float32
// samples in [-1, 1] (Segment), matching the original pipeline's
// int2float helper.
package pcm

import "encoding/binary"

// BytesToFloat32 converts a little-endian int16 PCM byte buffer into
// float32 samples scaled to [-1, 1].
func BytesToFloat32(b []byte) []float32 {
	n := len(b) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(b[i*2 : i*2+2]))
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Float32ToBytes converts float32 samples in [-1, 1] back to
// little-endian int16 PCM bytes, clamping out-of-range values.
func Float32ToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, f := range samples {
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		s := int16(f * 32767)
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(s))
	}
	return out
}
