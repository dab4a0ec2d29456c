package scanner_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shelfpoint/shelfpoint/internal/scanner"
)

var _ = Describe("DescribeCameraError", func() {
	It("should name the camera problem for the operator", func() {
		err := &scanner.CameraError{Category: scanner.CameraPermissionDenied, Err: errors.New("NotAllowedError")}
		Expect(scanner.DescribeCameraError(err)).To(ContainSubstring("permission"))

		err = &scanner.CameraError{Category: scanner.CameraNotFound, Err: errors.New("NotFoundError")}
		Expect(scanner.DescribeCameraError(err)).To(ContainSubstring("no camera"))

		err = &scanner.CameraError{Category: scanner.CameraBusy, Err: errors.New("NotReadableError")}
		Expect(scanner.DescribeCameraError(err)).To(ContainSubstring("in use"))
	})

	It("should give generic guidance for uncategorized failures", func() {
		msg := scanner.DescribeCameraError(errors.New("lens cap on"))
		Expect(msg).To(ContainSubstring("check the device"))
	})
})
