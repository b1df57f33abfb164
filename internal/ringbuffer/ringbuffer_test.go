package ringbuffer

import "testing"

func TestAddAndAverage(t *testing.T) {
	rb := New(3)
	rb.Add(10)
	rb.Add(20)
	rb.Add(30)
	if avg := rb.Average(); avg != 20 {
		t.Fatalf("expected average 20, got %v", avg)
	}
}

func TestOverwritesOldestWhenFull(t *testing.T) {
	rb := New(2)
	rb.Add(1)
	rb.Add(2)
	rb.Add(3) // overwrites 1

	all := rb.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(all))
	}
	if all[0] != 2 || all[1] != 3 {
		t.Fatalf("expected [2 3], got %v", all)
	}
}

func TestEmptyAverage(t *testing.T) {
	rb := New(5)
	if avg := rb.Average(); avg != 0 {
		t.Fatalf("expected 0 average for empty buffer, got %v", avg)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	if p := Percentile(values, 0.5); p != 30 {
		t.Fatalf("expected median 30, got %v", p)
	}
	if p := Percentile(nil, 0.5); p != 0 {
		t.Fatalf("expected 0 for empty input, got %v", p)
	}
}

func TestCount(t *testing.T) {
	rb := New(3)
	if rb.Count() != 0 {
		t.Fatalf("expected 0, got %d", rb.Count())
	}
	rb.Add(1)
	rb.Add(2)
	if rb.Count() != 2 {
		t.Fatalf("expected 2, got %d", rb.Count())
	}
}
