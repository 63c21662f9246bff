//go:build !linux && !darwin && !windows

package uart

import (
	"context"

	"github.com/boardlab/go-rc522/detection"
)

// getSerialPorts has no enumeration path on this platform.
func getSerialPorts(_ context.Context) ([]serialPort, error) {
	return nil, detection.ErrUnsupportedPlatform
}
