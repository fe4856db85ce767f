//go:build windows

package debug

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// residentSetSize returns the working set of the current process.
func residentSetSize() (uint64, error) {
	var pmc windows.PROCESS_MEMORY_COUNTERS
	pmc.Cb = uint32(unsafe.Sizeof(pmc))
	if err := windows.GetProcessMemoryInfo(windows.CurrentProcess(), &pmc, pmc.Cb); err != nil {
		return 0, errors.Wrap(err, "GetProcessMemoryInfo")
	}
	return uint64(pmc.WorkingSetSize), nil
}
