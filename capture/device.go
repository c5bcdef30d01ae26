//go:build !gocv

package capture

import "fmt"

// newDeviceSource backs real camera devices. This build has no OpenCV
// bindings compiled in (build with -tags gocv for that); any device
// identifier that isn't a dummy-* source makes Open fail.
func newDeviceSource(ident string) (Source, error) {
	return nil, fmt.Errorf("capture: no camera backend compiled in for device %q (build with -tags gocv)", ident)
}
