package videorecord

import "github.com/pion/videorecord/pkg/driver"

// DeviceInfo describes a camera available to recorders.
type DeviceInfo struct {
	DeviceID string
	Label    string
	Position driver.Position
}

// EnumerateDevices lists the registered cameras, best first.
func EnumerateDevices() []DeviceInfo {
	drivers := driver.GetManager().Query(driver.FilterAnd(
		driver.FilterVideoRecorder(),
		driver.FilterDeviceType(driver.Camera),
	))
	info := make([]DeviceInfo, 0, len(drivers))
	for _, d := range drivers {
		info = append(info, DeviceInfo{
			DeviceID: d.ID(),
			Label:    d.Info().Label,
			Position: d.Info().Position,
		})
	}
	return info
}
