//go:build linux

package uart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// getSerialPorts returns serial ports likely to carry a reader on
// Linux: USB-serial adapters plus the SoC UARTs Raspberry Pi style
// boards expose.
func getSerialPorts(_ context.Context) ([]serialPort, error) {
	patterns := []string{
		"/dev/ttyUSB*",
		"/dev/ttyACM*",
		"/dev/ttyAMA*",
		"/dev/ttyS0",
	}

	var ports []serialPort
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			name := filepath.Base(path)
			port := serialPort{
				Path:   path,
				Name:   name,
				VIDPID: sysfsVIDPID(name),
			}
			port.Manufacturer = sysfsAttr(name, "manufacturer")
			port.Product = sysfsAttr(name, "product")
			port.SerialNumber = sysfsAttr(name, "serial")
			ports = append(ports, port)
		}
	}
	return ports, nil
}

// sysfsVIDPID reads the USB vendor and product IDs of a tty through
// sysfs. Non-USB UARTs have no such attributes and report "".
func sysfsVIDPID(ttyName string) string {
	vid := sysfsAttr(ttyName, "idVendor")
	pid := sysfsAttr(ttyName, "idProduct")
	if vid == "" || pid == "" {
		return ""
	}
	return strings.ToUpper(vid + ":" + pid)
}

// sysfsAttr walks up from the tty's sysfs node looking for a USB
// interface attribute. USB-serial ttys sit a few levels below the USB
// device that carries the descriptors.
func sysfsAttr(ttyName, attr string) string {
	base, err := filepath.EvalSymlinks(fmt.Sprintf("/sys/class/tty/%s/device", ttyName))
	if err != nil {
		return ""
	}

	dir := base
	for i := 0; i < 4; i++ {
		data, err := os.ReadFile(filepath.Join(dir, attr))
		if err == nil {
			return strings.TrimSpace(string(data))
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
