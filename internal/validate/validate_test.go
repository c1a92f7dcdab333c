package validate

import "testing"

func TestComparePerfectMatch(t *testing.T) {
	peaks := []int{100, 300, 500, 700}
	rep := Compare(peaks, peaks, 250, 0.05)

	if rep.TruePositives != 4 || rep.FalsePositives != 0 || rep.FalseNegatives != 0 {
		t.Fatalf("TP/FP/FN = %d/%d/%d", rep.TruePositives, rep.FalsePositives, rep.FalseNegatives)
	}
	if float64(rep.Precision) != 1 || float64(rep.Recall) != 1 || float64(rep.F1) != 1 {
		t.Errorf("P/R/F1 = %v/%v/%v, want all 1", rep.Precision, rep.Recall, rep.F1)
	}
}

func TestCompareWithinTolerance(t *testing.T) {
	// 0.05 s at 250 Hz allows 12.5 samples of jitter.
	detected := []int{110, 295, 512}
	reference := []int{100, 300, 500}
	rep := Compare(detected, reference, 250, 0.05)

	if rep.TruePositives != 3 {
		t.Errorf("TP = %d, want 3 with jitter inside tolerance", rep.TruePositives)
	}
}

func TestCompareDisjoint(t *testing.T) {
	rep := Compare([]int{100, 200}, []int{1000, 2000}, 250, 0.05)

	if rep.TruePositives != 0 {
		t.Fatalf("TP = %d, want 0", rep.TruePositives)
	}
	if rep.FalsePositives != 2 || rep.FalseNegatives != 2 {
		t.Errorf("FP/FN = %d/%d, want 2/2", rep.FalsePositives, rep.FalseNegatives)
	}
	if float64(rep.Precision) != 0 || float64(rep.Recall) != 0 || float64(rep.F1) != 0 {
		t.Errorf("P/R/F1 = %v/%v/%v, want all 0", rep.Precision, rep.Recall, rep.F1)
	}
}

func TestCompareExtraDetection(t *testing.T) {
	rep := Compare([]int{100, 300, 450}, []int{100, 300}, 250, 0.05)

	if rep.TruePositives != 2 || rep.FalsePositives != 1 || rep.FalseNegatives != 0 {
		t.Fatalf("TP/FP/FN = %d/%d/%d", rep.TruePositives, rep.FalsePositives, rep.FalseNegatives)
	}
	if p := float64(rep.Precision); p < 0.66 || p > 0.67 {
		t.Errorf("precision = %g, want 2/3", p)
	}
	if float64(rep.Recall) != 1 {
		t.Errorf("recall = %v, want 1", rep.Recall)
	}
}

func TestCompareMissedBeat(t *testing.T) {
	rep := Compare([]int{100}, []int{100, 300}, 250, 0.05)

	if rep.TruePositives != 1 || rep.FalseNegatives != 1 {
		t.Fatalf("TP/FN = %d/%d", rep.TruePositives, rep.FalseNegatives)
	}
	if r := float64(rep.Recall); r != 0.5 {
		t.Errorf("recall = %g, want 0.5", r)
	}
}

func TestCompareEmptyInputs(t *testing.T) {
	rep := Compare(nil, nil, 250, 0.05)
	if rep.TruePositives != 0 || rep.FalsePositives != 0 || rep.FalseNegatives != 0 {
		t.Fatalf("empty inputs produced counts %+v", rep)
	}
	if float64(rep.Precision) != 0 || float64(rep.Recall) != 0 || float64(rep.F1) != 0 {
		t.Errorf("empty inputs produced nonzero rates %+v", rep)
	}

	rep = Compare(nil, []int{100}, 250, 0.05)
	if rep.FalseNegatives != 1 {
		t.Errorf("unmatched reference not counted: %+v", rep)
	}
}

func TestCompareNoDoubleMatching(t *testing.T) {
	// Two detections near one reference: only one may match.
	rep := Compare([]int{98, 102}, []int{100}, 250, 0.05)
	if rep.TruePositives != 1 || rep.FalsePositives != 1 {
		t.Errorf("TP/FP = %d/%d, want 1/1", rep.TruePositives, rep.FalsePositives)
	}
}
