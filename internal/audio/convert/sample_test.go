package convert

import (
	"math"
	"testing"
)

func TestSampleToInt16Clamps(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{1.5, 32767},
		{-2.0, -32767},
		{0.5, 16383},
	}
	for _, c := range cases {
		if got := SampleToInt16(c.in); got != c.want {
			t.Errorf("SampleToInt16(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestInt16Float32Roundtrip(t *testing.T) {
	src := []int16{0, 1, -1, 16383, -16383, 32767, -32767}
	got := Float32ToInt16(Int16ToFloat32(src))
	for i := range src {
		if got[i] != src[i] {
			t.Errorf("roundtrip[%d] = %d, want %d", i, got[i], src[i])
		}
	}
}

func TestBytesToFloat32(t *testing.T) {
	buf := make([]byte, 0, 9)
	for _, f := range []float32{0.25, -0.5} {
		bits := math.Float32bits(f)
		buf = append(buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	buf = append(buf, 0xff) // trailing partial sample

	got := BytesToFloat32(buf)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != 0.25 || got[1] != -0.5 {
		t.Errorf("got %v, want [0.25 -0.5]", got)
	}
}

func TestInt16ToBytes(t *testing.T) {
	got := Int16ToBytes([]int16{0x0102, -2})
	want := []byte{0x02, 0x01, 0xfe, 0xff}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got % x, want % x", got, want)
		}
	}
}
