package passthrough

// MinSupportedOSVersion is the oldest headset OS major version with
// passthrough camera access.
const MinSupportedOSVersion = 74

// unreleasedOSVersion is reported by internal OS builds.
const unreleasedOSVersion = 10000

// Headset identifies a device model.
type Headset int

const (
	HeadsetUnknown Headset = iota
	HeadsetQuest3
	HeadsetQuest3S
)

// SupportsPassthroughCamera reports whether the device exposes the
// passthrough cameras at all.
func (h Headset) SupportsPassthroughCamera() bool {
	return h == HeadsetQuest3 || h == HeadsetQuest3S
}

// OSVersionKnown reports whether v is a released OS version number.
func OSVersionKnown(v int) bool {
	return v > 0 && v != unreleasedOSVersion
}

// IsSupported reports whether camera access is available on headset h at
// OS version osVersion. Unknown versions are given the benefit of the doubt.
func IsSupported(h Headset, osVersion int) bool {
	if !h.SupportsPassthroughCamera() {
		return false
	}
	if !OSVersionKnown(osVersion) {
		return true
	}
	return osVersion >= MinSupportedOSVersion
}
