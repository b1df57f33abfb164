package cpudetect

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func withPaths(t *testing.T, v2, v1Quota, v1Period string) {
	t.Helper()
	origV2, origQuota, origPeriod := cgroupV2MaxFile, cgroupV1QuotaFile, cgroupV1PeriodFile
	cgroupV2MaxFile, cgroupV1QuotaFile, cgroupV1PeriodFile = v2, v1Quota, v1Period
	t.Cleanup(func() {
		cgroupV2MaxFile, cgroupV1QuotaFile, cgroupV1PeriodFile = origV2, origQuota, origPeriod
	})
}

func TestDetectOverrideWins(t *testing.T) {
	withPaths(t, "/does/not/exist", "/does/not/exist", "/does/not/exist")
	if got := Detect(7); got != 7 {
		t.Fatalf("expected override 7, got %d", got)
	}
}

func TestDetectCgroupV2Quota(t *testing.T) {
	dir := t.TempDir()
	v2 := filepath.Join(dir, "cpu.max")
	if err := os.WriteFile(v2, []byte("200000 100000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	withPaths(t, v2, filepath.Join(dir, "missing-quota"), filepath.Join(dir, "missing-period"))

	if got := Detect(0); got != 2 {
		t.Fatalf("expected 2 CPUs from a 200000/100000 quota, got %d", got)
	}
}

func TestDetectCgroupV2Unlimited(t *testing.T) {
	dir := t.TempDir()
	v2 := filepath.Join(dir, "cpu.max")
	if err := os.WriteFile(v2, []byte("max 100000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	withPaths(t, v2, filepath.Join(dir, "missing-quota"), filepath.Join(dir, "missing-period"))

	if got := Detect(0); got != runtime.NumCPU() {
		t.Fatalf("expected fallback to NumCPU() for unlimited quota, got %d", got)
	}
}

func TestDetectCgroupV1Quota(t *testing.T) {
	dir := t.TempDir()
	quota := filepath.Join(dir, "cpu.cfs_quota_us")
	period := filepath.Join(dir, "cpu.cfs_period_us")
	if err := os.WriteFile(quota, []byte("150000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(period, []byte("100000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	withPaths(t, filepath.Join(dir, "missing-v2"), quota, period)

	if got := Detect(0); got != 2 {
		t.Fatalf("expected ceil(150000/100000)=2, got %d", got)
	}
}

func TestDetectFallsBackToNumCPU(t *testing.T) {
	dir := t.TempDir()
	withPaths(t, filepath.Join(dir, "missing-v2"), filepath.Join(dir, "missing-quota"), filepath.Join(dir, "missing-period"))

	if got := Detect(0); got != runtime.NumCPU() {
		t.Fatalf("expected NumCPU() fallback, got %d", got)
	}
}
