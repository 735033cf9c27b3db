package convert

import (
	"encoding/binary"
	"math"
)

// SampleToInt16 converts one normalized float32 sample to fixed point,
// clamping to the representable range.
func SampleToInt16(v float32) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

func Float32ToInt16(src []float32) []int16 {
	dst := make([]int16, len(src))
	for i, v := range src {
		dst[i] = SampleToInt16(v)
	}
	return dst
}

func Int16ToFloat32(src []int16) []float32 {
	dst := make([]float32, len(src))
	for i, v := range src {
		dst[i] = float32(v) / 32767.0
	}
	return dst
}

// BytesToFloat32 reinterprets little-endian f32 device buffers. A trailing
// partial sample is dropped.
func BytesToFloat32(src []byte) []float32 {
	if len(src)%4 != 0 {
		src = src[:len(src)-(len(src)%4)]
	}
	dst := make([]float32, len(src)/4)
	for i := range dst {
		bits := binary.LittleEndian.Uint32(src[i*4 : i*4+4])
		dst[i] = math.Float32frombits(bits)
	}
	return dst
}

// Int16ToBytes packs int16 samples little endian, the layout malgo expects
// for FormatS16 output buffers.
func Int16ToBytes(src []int16) []byte {
	dst := make([]byte, len(src)*2)
	for i, v := range src {
		binary.LittleEndian.PutUint16(dst[i*2:i*2+2], uint16(v))
	}
	return dst
}
