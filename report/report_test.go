package report_test

import (
	"bytes"
	"testing"

	"github.com/rivulet-trace/rivulet/branch"
	"github.com/rivulet-trace/rivulet/report"
)

func TestAddAndCount(t *testing.T) {
	r := report.New()
	r.Add(branch.ReachedSoma, true)
	r.Add(branch.LowConfidence, false)
	r.Add(branch.LowConfidence, false)

	if r.Count(branch.ReachedSoma) != 1 || r.Committed(branch.ReachedSoma) != 1 {
		t.Errorf("ReachedSoma counts wrong")
	}
	if r.Count(branch.LowConfidence) != 2 || r.Committed(branch.LowConfidence) != 0 {
		t.Errorf("LowConfidence counts wrong")
	}
}

func TestTSVRoundTrip(t *testing.T) {
	r := report.New()
	r.Add(branch.ReachedSoma, true)
	r.Add(branch.GapExceeded, false)

	var buf bytes.Buffer
	if err := r.TSV(&buf); err != nil {
		t.Fatalf("TSV: %v", err)
	}

	got, err := report.ReadTSV(&buf)
	if err != nil {
		t.Fatalf("ReadTSV: %v", err)
	}
	if got.Count(branch.ReachedSoma) != 1 || got.Committed(branch.ReachedSoma) != 1 {
		t.Errorf("round-trip ReachedSoma wrong")
	}
	if got.Count(branch.GapExceeded) != 1 || got.Committed(branch.GapExceeded) != 0 {
		t.Errorf("round-trip GapExceeded wrong")
	}
}
