//go:build darwin

package uart

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	calloutRe = regexp.MustCompile(`"IOCalloutDevice"\s*=\s*"([^"]+)"`)
	vendorRe  = regexp.MustCompile(`"idVendor"\s*=\s*(\d+)`)
	productRe = regexp.MustCompile(`"idProduct"\s*=\s*(\d+)`)
	mfgRe     = regexp.MustCompile(`"USB Vendor Name"\s*=\s*"([^"]+)"`)
	prodRe    = regexp.MustCompile(`"USB Product Name"\s*=\s*"([^"]+)"`)
	serialRe  = regexp.MustCompile(`"USB Serial Number"\s*=\s*"([^"]+)"`)
)

// getSerialPorts enumerates serial ports on macOS via the I/O registry,
// falling back to a plain /dev/cu.* glob when ioreg is unavailable.
func getSerialPorts(ctx context.Context) ([]serialPort, error) {
	out, err := exec.CommandContext(ctx, "ioreg", "-r", "-c", "IOSerialBSDClient", "-a").Output()
	if err != nil {
		return globPorts()
	}

	var ports []serialPort
	for _, entry := range strings.Split(string(out), "+-o ") {
		if !strings.Contains(entry, "IOCalloutDevice") {
			continue
		}

		m := calloutRe.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		port := serialPort{
			Path: m[1],
			Name: filepath.Base(m[1]),
		}
		if systemDevice(port.Name) {
			continue
		}

		if v, p := vendorRe.FindStringSubmatch(entry), productRe.FindStringSubmatch(entry); v != nil && p != nil {
			var vid, pid int
			if _, err := fmt.Sscanf(v[1], "%d", &vid); err == nil {
				if _, err := fmt.Sscanf(p[1], "%d", &pid); err == nil {
					port.VIDPID = fmt.Sprintf("%04X:%04X", vid, pid)
				}
			}
		}
		if m := mfgRe.FindStringSubmatch(entry); m != nil {
			port.Manufacturer = m[1]
		}
		if m := prodRe.FindStringSubmatch(entry); m != nil {
			port.Product = m[1]
		}
		if m := serialRe.FindStringSubmatch(entry); m != nil {
			port.SerialNumber = m[1]
		}

		ports = append(ports, port)
	}

	if len(ports) == 0 {
		return globPorts()
	}
	return ports, nil
}

// globPorts lists callout devices without metadata. Callout (cu.*)
// nodes are preferred over tty.* for exclusive access.
func globPorts() ([]serialPort, error) {
	matches, err := filepath.Glob("/dev/cu.*")
	if err != nil {
		return nil, err
	}

	ports := make([]serialPort, 0, len(matches))
	for _, path := range matches {
		name := filepath.Base(path)
		if systemDevice(name) {
			continue
		}
		ports = append(ports, serialPort{Path: path, Name: name})
	}
	return ports, nil
}

// systemDevice filters out ports that are never reader candidates.
func systemDevice(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range []string{"bluetooth", "console", "debug", "wlan"} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
