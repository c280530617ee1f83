//go:build windows

package validation

import (
	"syscall"
	"unsafe"
)

var (
	kernel32            = syscall.NewLazyDLL("kernel32.dll")
	getDiskFreeSpaceExW = kernel32.NewProc("GetDiskFreeSpaceExW")
)

// getDiskSpace returns total and free bytes for the volume containing dir
// using GetDiskFreeSpaceExW.
func getDiskSpace(dir string) (total int64, free int64, err error) {
	pathPtr, err := syscall.UTF16PtrFromString(dir)
	if err != nil {
		return 0, 0, err
	}

	var callerFree, totalBytes, totalFree uint64

	ret, _, err := getDiskFreeSpaceExW.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&callerFree)),
		uintptr(unsafe.Pointer(&totalBytes)),
		uintptr(unsafe.Pointer(&totalFree)),
	)
	if ret == 0 {
		return 0, 0, err
	}
	return int64(totalBytes), int64(callerFree), nil
}
