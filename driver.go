package videorecord

import (
	"github.com/pion/videorecord/pkg/driver"
	// Register the cameras of the host.
	_ "github.com/pion/videorecord/pkg/driver/camera"
)

// RegisterDriverAdapter allows user space level of driver registration
func RegisterDriverAdapter(a driver.Adapter, info driver.Info) error {
	if info.DeviceType == "" {
		info.DeviceType = driver.Camera
	}
	return driver.GetManager().Register(a, info)
}
