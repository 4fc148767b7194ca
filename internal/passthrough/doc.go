// Package passthrough models the headset's physical passthrough cameras:
// intrinsics, lens distortion, camera poses relative to the head, and the
// pinhole ray casting that maps a camera pixel to a ray in the world.
//
// Camera metadata comes from a Characteristics source shaped like the
// Android Camera2 CameraCharacteristics store. Values that cannot change
// during a session (intrinsics, output sizes, head-relative lens pose) are
// read once and cached by Camera.
package passthrough
