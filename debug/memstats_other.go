//go:build !windows

package debug

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// residentSetSize reads the resident page count from /proc/self/statm.
func residentSetSize() (uint64, error) {
	data, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return 0, errors.Wrap(err, "read statm")
	}
	return parseStatm(string(data), os.Getpagesize())
}

func parseStatm(s string, pageSize int) (uint64, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return 0, errors.Errorf("statm: unexpected content %q", s)
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "statm: resident pages")
	}
	return pages * uint64(pageSize), nil
}
