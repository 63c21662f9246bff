//go:build !linux

package i2c

import (
	"context"

	"github.com/boardlab/go-rc522/detection"
)

// detectLinux is linux-only; other platforms never reach it.
func detectLinux(_ context.Context, _ *detection.Options) ([]detection.DeviceInfo, error) {
	return nil, detection.ErrUnsupportedPlatform
}
