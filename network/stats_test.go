package network

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDistributionOfEmptyInput(t *testing.T) {
	d := newDistribution(nil)
	if d != (Distribution{}) {
		t.Fatalf("expected the zero distribution for empty input, got %+v", d)
	}
}

func TestDistributionMinMaxAvg(t *testing.T) {
	d := newDistribution([]uint64{3, 1, 4, 1, 5})
	if d.Min != 1 || d.Max != 5 {
		t.Fatalf("min/max = %d/%d, want 1/5", d.Min, d.Max)
	}
	if d.Avg != 2.8 {
		t.Fatalf("avg = %v, want 2.8", d.Avg)
	}
}

func TestStatsRecordAccumulatesCumulativeTotals(t *testing.T) {
	st := newStats()
	st.record(0, 10, 1, 2, 0, 1, 0)
	st.record(1, 12, 2, 0, 1, 0, 3)

	second := st.Summary()
	if second.Merges != 2 || second.Splits != 1 || second.Relocations != 1 || second.Rejections != 3 {
		t.Fatalf("unexpected cumulative sample: %+v", second)
	}
	if len(st.Samples()) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(st.Samples()))
	}
}

func TestStatsWriteToFileFormat(t *testing.T) {
	st := newStats()
	st.record(0, 10, 1, 1, 0, 0, 0)
	st.record(1, 11, 1, 1, 1, 2, 1)

	path := filepath.Join(t.TempDir(), "stats.txt")
	if err := st.WriteToFile(path); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening written stats file: %v", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	fields := strings.Fields(lines[1])
	if len(fields) != 7 {
		t.Fatalf("expected 7 space-separated columns, got %d: %q", len(fields), lines[1])
	}
	if fields[0] != "1" || fields[3] != "2" || fields[4] != "1" || fields[5] != "2" || fields[6] != "1" {
		t.Fatalf("unexpected column values: %q", lines[1])
	}
}
