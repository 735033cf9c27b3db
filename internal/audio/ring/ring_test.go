package ring

import (
	"sync"
	"testing"
)

func TestLenNeverExceedsCap(t *testing.T) {
	b := New(100)
	batch := make([]float32, 33)
	for i := 0; i < 50; i++ {
		b.Push(batch)
		if b.Len() > b.Cap() {
			t.Fatalf("len %d exceeds cap %d after push %d", b.Len(), b.Cap(), i)
		}
	}
	if b.Len() != 100 {
		t.Errorf("len = %d, want full buffer of 100", b.Len())
	}
}

// Overflow drops the oldest samples: pushing 200 000 sequential samples into
// a 192 000-cap buffer must leave exactly samples 8 001..200 000.
func TestFIFOEviction(t *testing.T) {
	b := New(192_000)
	batch := make([]float32, 1000)
	for base := 0; base < 200_000; base += len(batch) {
		for i := range batch {
			batch[i] = float32(base + i + 1)
		}
		b.Push(batch)
	}

	if b.Len() != 192_000 {
		t.Fatalf("len = %d, want 192000", b.Len())
	}
	for want := 8_001; want <= 200_000; want++ {
		s, ok := b.Pop()
		if !ok {
			t.Fatalf("underrun at sample %d", want)
		}
		if s != float32(want) {
			t.Fatalf("sample = %v, want %d", s, want)
		}
	}
	if _, ok := b.Pop(); ok {
		t.Error("expected empty buffer after draining")
	}
}

func TestPushLargerThanCap(t *testing.T) {
	b := New(4)
	b.Push([]float32{1, 2, 3, 4, 5, 6})
	want := []float32{3, 4, 5, 6}
	for i, w := range want {
		s, ok := b.Pop()
		if !ok || s != w {
			t.Fatalf("pop %d = (%v, %v), want (%v, true)", i, s, ok, w)
		}
	}
}

func TestPopEmptyReportsUnderrun(t *testing.T) {
	b := New(8)
	if s, ok := b.Pop(); ok || s != 0 {
		t.Errorf("Pop on empty = (%v, %v), want (0, false)", s, ok)
	}
}

func TestConcurrentProducers(t *testing.T) {
	b := New(1024)
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := make([]float32, 64)
			for i := 0; i < 100; i++ {
				b.Push(batch)
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10_000; i++ {
			b.Pop()
		}
	}()
	wg.Wait()
	<-done
	if b.Len() > b.Cap() {
		t.Fatalf("len %d exceeds cap %d", b.Len(), b.Cap())
	}
}
