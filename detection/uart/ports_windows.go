//go:build windows

package uart

import (
	"context"
	"errors"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// getSerialPorts enumerates COM ports on Windows. SetupAPI carries the
// USB metadata the confidence ranking wants; the SERIALCOMM registry
// key backfills ports SetupAPI misses.
func getSerialPorts(_ context.Context) ([]serialPort, error) {
	setupPorts, setupErr := setupAPIPorts()
	regPorts, regErr := registryPorts()
	if setupErr != nil && regErr != nil {
		return nil, errors.Join(setupErr, regErr)
	}

	merged := make(map[string]serialPort)
	for _, port := range regPorts {
		merged[port.Path] = port
	}
	for _, port := range setupPorts {
		merged[port.Path] = port
	}

	ports := make([]serialPort, 0, len(merged))
	for _, port := range merged {
		ports = append(ports, port)
	}
	return ports, nil
}

// registryPorts reads the live COM port map from the registry.
func registryPorts() ([]serialPort, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `HARDWARE\DEVICEMAP\SERIALCOMM`, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	names, err := key.ReadValueNames(-1)
	if err != nil {
		return nil, err
	}

	ports := make([]serialPort, 0, len(names))
	for _, name := range names {
		com, _, err := key.GetStringValue(name)
		if err != nil {
			continue
		}
		ports = append(ports, serialPort{Path: com, Name: com})
	}
	return ports, nil
}

var (
	setupapi                       = windows.NewLazySystemDLL("setupapi.dll")
	procGetClassDevs               = setupapi.NewProc("SetupDiGetClassDevsW")
	procEnumDeviceInfo             = setupapi.NewProc("SetupDiEnumDeviceInfo")
	procGetDeviceRegistryProperty  = setupapi.NewProc("SetupDiGetDeviceRegistryPropertyW")
	procDestroyDeviceInfoList      = setupapi.NewProc("SetupDiDestroyDeviceInfoList")
)

// SetupAPI device registry properties
const (
	spdrpHardwareID   = 0x00000001
	spdrpManufacturer = 0x0000000B
	spdrpFriendlyName = 0x0000000C

	digcfPresent = 0x00000002
)

type devInfoData struct {
	cbSize    uint32
	classGUID windows.GUID
	devInst   uint32
	reserved  uintptr
}

// setupAPIPorts walks the Ports device class and extracts COM names and
// USB identifiers.
func setupAPIPorts() ([]serialPort, error) {
	// Ports (COM & LPT) setup class
	guidPorts := windows.GUID{
		Data1: 0x4d36e978,
		Data2: 0xe325,
		Data3: 0x11ce,
		Data4: [8]byte{0xbf, 0xc1, 0x08, 0x00, 0x2b, 0xe1, 0x03, 0x18},
	}

	devInfo, _, _ := procGetClassDevs.Call(
		uintptr(unsafe.Pointer(&guidPorts)), 0, 0, digcfPresent)
	if devInfo == uintptr(windows.InvalidHandle) {
		return nil, windows.GetLastError()
	}
	defer func() { _, _, _ = procDestroyDeviceInfoList.Call(devInfo) }()

	var ports []serialPort
	var data devInfoData
	data.cbSize = uint32(unsafe.Sizeof(data))

	for i := uint32(0); ; i++ {
		ret, _, _ := procEnumDeviceInfo.Call(devInfo, uintptr(i), uintptr(unsafe.Pointer(&data)))
		if ret == 0 {
			break
		}

		friendly := deviceProperty(devInfo, &data, spdrpFriendlyName)
		com := comFromFriendlyName(friendly)
		if com == "" {
			continue
		}

		port := serialPort{
			Path:         com,
			Name:         friendly,
			Manufacturer: deviceProperty(devInfo, &data, spdrpManufacturer),
			VIDPID:       parseHardwareID(deviceProperty(devInfo, &data, spdrpHardwareID)),
		}
		if n := strings.Index(friendly, " ("); n > 0 {
			port.Product = friendly[:n]
		}
		ports = append(ports, port)
	}
	return ports, nil
}

// deviceProperty fetches one string property with the size-then-read
// two-call pattern.
func deviceProperty(devInfo uintptr, data *devInfoData, prop uintptr) string {
	var size uint32
	_, _, _ = procGetDeviceRegistryProperty.Call(
		devInfo, uintptr(unsafe.Pointer(data)), prop,
		0, 0, 0, uintptr(unsafe.Pointer(&size)))
	if size == 0 {
		return ""
	}

	buf := make([]uint16, size/2+1)
	ret, _, _ := procGetDeviceRegistryProperty.Call(
		devInfo, uintptr(unsafe.Pointer(data)), prop,
		0, uintptr(unsafe.Pointer(&buf[0])), uintptr(size), 0)
	if ret == 0 {
		return ""
	}
	return windows.UTF16ToString(buf)
}

// comFromFriendlyName pulls "COM7" out of a name like
// "USB-SERIAL CH340 (COM7)".
func comFromFriendlyName(name string) string {
	n := strings.LastIndex(name, "(COM")
	if n < 0 {
		return ""
	}
	m := strings.Index(name[n:], ")")
	if m < 0 {
		return ""
	}
	return name[n+1 : n+m]
}

// parseHardwareID extracts VID:PID from a hardware ID such as
// USB\VID_1A86&PID_7523.
func parseHardwareID(hwid string) string {
	hwid = strings.ToUpper(hwid)

	vidIdx := strings.Index(hwid, "VID_")
	pidIdx := strings.Index(hwid, "PID_")
	if vidIdx < 0 || pidIdx < 0 || vidIdx+8 > len(hwid) || pidIdx+8 > len(hwid) {
		return ""
	}

	vid := hwid[vidIdx+4 : vidIdx+8]
	pid := hwid[pidIdx+4 : pidIdx+8]
	for _, r := range vid + pid {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return ""
		}
	}
	return vid + ":" + pid
}
