package scanner

import (
	"context"
	"errors"
	"fmt"
)

// Constraints hints the decode source at how to acquire frames. Sources that
// are not camera-backed ignore them.
type Constraints struct {
	FacingMode string
	FPS        int
}

// DecodeHandler receives each decoded text event, duplicates included.
type DecodeHandler func(text string)

// ErrorHandler receives transient decode-source errors, typically a
// *CameraError.
type ErrorHandler func(err error)

// DecodeSource produces decoded text values from a live feed. Timing is
// non-deterministic and the same physical scan typically arrives several
// times in a row; the Sequencer deals with that.
type DecodeSource interface {
	Start(ctx context.Context, c Constraints, onDecode DecodeHandler, onError ErrorHandler) error
	Stop() error
	Clear()
}

type CameraErrorCategory string

const (
	CameraPermissionDenied CameraErrorCategory = "permission_denied"
	CameraNotFound         CameraErrorCategory = "not_found"
	CameraBusy             CameraErrorCategory = "busy"
	CameraUnsupported      CameraErrorCategory = "unsupported"
	CameraInsecureContext  CameraErrorCategory = "insecure_context"
)

// CameraError is a categorized decode-source failure. These never reach the
// server; the controller maps them to operator-facing text and carries on.
type CameraError struct {
	Category CameraErrorCategory
	Err      error
}

func (e *CameraError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("camera %s: %v", e.Category, e.Err)
	}
	return fmt.Sprintf("camera %s", e.Category)
}

func (e *CameraError) Unwrap() error {
	return e.Err
}

// DescribeCameraError maps a decode-source failure to the message the
// operator sees.
func DescribeCameraError(err error) string {
	var camErr *CameraError
	if !errors.As(err, &camErr) {
		return "scanner error, check the device"
	}

	switch camErr.Category {
	case CameraPermissionDenied:
		return "camera permission denied, allow camera access in the browser settings"
	case CameraNotFound:
		return "no camera found on this device"
	case CameraBusy:
		return "camera is already in use by another app"
	case CameraUnsupported:
		return "camera constraints not supported"
	case CameraInsecureContext:
		return "camera requires a secure (HTTPS or localhost) connection"
	default:
		return "scanner error, check the device"
	}
}
