package debounce

import (
	"testing"
	"time"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestSequenceCompletesOnNthPress(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		d := New(n, 250*time.Millisecond, nil)
		completed := 0
		for i := 0; i < n; i++ {
			ts := base.Add(time.Duration(i) * 100 * time.Millisecond)
			if d.Register(ts) {
				completed++
				if i != n-1 {
					t.Errorf("required=%d: завершение на нажатии %d", n, i+1)
				}
			}
		}
		if completed != 1 {
			t.Errorf("required=%d: завершений %d, ожидалось 1", n, completed)
		}
		if d.Count() != 0 {
			t.Errorf("required=%d: счётчик после завершения = %d", n, d.Count())
		}
	}
}

func TestGapRestartsSequence(t *testing.T) {
	d := New(2, 500*time.Millisecond, nil)
	if d.Register(base) {
		t.Fatal("первое нажатие не должно завершать серию")
	}
	// Строго больше интервала - серия начинается заново.
	if d.Register(base.Add(501 * time.Millisecond)) {
		t.Fatal("нажатие после паузы не должно завершать серию")
	}
	if d.Count() != 1 {
		t.Fatalf("счётчик = %d, ожидалось 1", d.Count())
	}
	if !d.Register(base.Add(700 * time.Millisecond)) {
		t.Fatal("второе нажатие в окне должно завершить серию")
	}
}

func TestIntervalBoundaryInclusive(t *testing.T) {
	d := New(2, 250*time.Millisecond, nil)
	d.Register(base)
	if !d.Register(base.Add(250 * time.Millisecond)) {
		t.Fatal("промежуток ровно в интервал должен попадать в окно")
	}
}

func TestResetStartsFreshSequence(t *testing.T) {
	d := New(2, time.Second, nil)
	d.Register(base)
	d.Register(base) // завершает серию
	d.Reset()
	// Метка внутри окна от предыдущих нажатий: после Reset это
	// всё равно первое нажатие новой серии.
	if d.Register(base.Add(100 * time.Millisecond)) {
		t.Fatal("после Reset нажатие не должно завершать серию")
	}
	if d.Count() != 1 {
		t.Fatalf("счётчик = %d, ожидалось 1", d.Count())
	}
}

func TestSinglePressDetector(t *testing.T) {
	d := New(1, 250*time.Millisecond, nil)
	for i := 0; i < 3; i++ {
		if !d.Register(base.Add(time.Duration(i) * time.Millisecond)) {
			t.Fatalf("нажатие %d: детектор с required=1 завершается на каждом", i+1)
		}
	}
}

func TestCountNeverExceedsRequired(t *testing.T) {
	d := New(3, time.Second, nil)
	for i := 0; i < 20; i++ {
		d.Register(base.Add(time.Duration(i) * 10 * time.Millisecond))
		if c := d.Count(); c < 0 || c >= 3 {
			t.Fatalf("счётчик вне диапазона [0, required): %d", c)
		}
	}
}
