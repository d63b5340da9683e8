package eviction

import (
	"fmt"
	"syscall"
)

// Policy decides how many bytes must be freed from a directory.
type Policy interface {
	// BytesToFree returns the number of bytes that should be evicted.
	// Returns 0 if no eviction is needed.
	BytesToFree(currentSize int64) (int64, error)
}

// MaxSize triggers eviction when the directory exceeds a fixed byte budget.
type MaxSize struct {
	MaxBytes int64
}

func (m *MaxSize) BytesToFree(currentSize int64) (int64, error) {
	if currentSize > m.MaxBytes {
		return currentSize - m.MaxBytes, nil
	}
	return 0, nil
}

// MinFreeSpace triggers eviction when the filesystem holding Path drops
// below a free-space threshold.
type MinFreeSpace struct {
	Path         string
	MinFreeBytes int64
}

func (m *MinFreeSpace) BytesToFree(currentSize int64) (int64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(m.Path, &stat); err != nil {
		return 0, fmt.Errorf("failed to check disk space: %w", err)
	}

	freeSpace := int64(stat.Bavail) * int64(stat.Bsize)
	if freeSpace < m.MinFreeBytes {
		return m.MinFreeBytes - freeSpace, nil
	}
	return 0, nil
}
