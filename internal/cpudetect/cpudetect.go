// Package cpudetect resolves how many CPUs are actually available to the
// process: the WORKER_THREADS override if set, else the cgroup quota if the
// process is running under one, else runtime.NumCPU().
package cpudetect

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
)

const cgroupV2UnlimitedTag = "max"

// Overridable for tests; in production these always point at the real
// cgroup filesystem.
var (
	cgroupV2MaxFile    = "/sys/fs/cgroup/cpu.max"
	cgroupV1QuotaFile  = "/sys/fs/cgroup/cpu/cpu.cfs_quota_us"
	cgroupV1PeriodFile = "/sys/fs/cgroup/cpu/cpu.cfs_period_us"
)

// Detect resolves the effective CPU count. override, when greater than
// zero, wins outright (this is WORKER_THREADS). Otherwise cgroup v2 is
// tried, then cgroup v1, falling back to runtime.NumCPU() if neither
// cgroup file is present or the container has no quota set.
func Detect(override int) int {
	if override > 0 {
		return override
	}
	if n, ok := cgroupV2(); ok {
		return n
	}
	if n, ok := cgroupV1(); ok {
		return n
	}
	return runtime.NumCPU()
}

func cgroupV2() (int, bool) {
	raw, err := os.ReadFile(cgroupV2MaxFile)
	if err != nil {
		return 0, false
	}
	fields := strings.Fields(strings.TrimSpace(string(raw)))
	if len(fields) != 2 {
		return 0, false
	}
	if fields[0] == cgroupV2UnlimitedTag {
		return 0, false
	}
	return quotaToCPUs(fields[0], fields[1])
}

func cgroupV1() (int, bool) {
	quotaRaw, err := os.ReadFile(cgroupV1QuotaFile)
	if err != nil {
		return 0, false
	}
	periodRaw, err := os.ReadFile(cgroupV1PeriodFile)
	if err != nil {
		return 0, false
	}
	quota := strings.TrimSpace(string(quotaRaw))
	if quota == "-1" {
		return 0, false
	}
	return quotaToCPUs(quota, strings.TrimSpace(string(periodRaw)))
}

func quotaToCPUs(quotaStr, periodStr string) (int, bool) {
	quota, err := strconv.ParseFloat(quotaStr, 64)
	if err != nil || quota <= 0 {
		return 0, false
	}
	period, err := strconv.ParseFloat(periodStr, 64)
	if err != nil || period <= 0 {
		return 0, false
	}
	n := int(math.Ceil(quota / period))
	if n < 1 {
		n = 1
	}
	return n, true
}
