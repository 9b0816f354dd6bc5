package nexus

import "testing"

func TestAverage(t *testing.T) {
	got, err := Average([][]float64{{1, 2, 3}, {3, 4, 5}})
	if err != nil {
		t.Fatalf("Average returned error: %v", err)
	}
	want := []float64{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestAverageSingleVectorIsCopied(t *testing.T) {
	in := []float64{0.5, -0.5}
	got, err := Average([][]float64{in})
	if err != nil {
		t.Fatalf("Average returned error: %v", err)
	}
	got[0] = 9
	if in[0] != 0.5 {
		t.Fatal("expected result not to alias input")
	}
}

func TestAverageRejectsBadInput(t *testing.T) {
	if _, err := Average(nil); err == nil {
		t.Fatal("expected error for no vectors")
	}
	if _, err := Average([][]float64{{}}); err == nil {
		t.Fatal("expected error for empty vector")
	}
	if _, err := Average([][]float64{{1, 2}, {1}}); err == nil {
		t.Fatal("expected error for dimension mismatch")
	}
}
