/*
Package camera registers the V4L2 cameras of a Linux host with the driver
manager. Importing it is enough; devices are discovered in init.

# Labels

A camera reachable through /dev/v4l/by-path gets that link's name followed by
the device node it resolves to:

	pci-0000:00:14.0-usb-0:1:1.0-video-index0;video0

Without by-path links (for example in a container that only binds
/dev/video*), the node name is used twice:

	video0;video0

Cameras whose by-path name contains "front", "back" or "rear" are
registered with that position; others have no position.
*/
package camera

// LabelSeparator is used to separate labels for a driver that
// is found from multiple locations on a host.
const LabelSeparator = ";"
