package scanner_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shelfpoint/shelfpoint/internal/scanner"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeSource delivers decode events only while started, the way a real
// camera pipeline only produces frames while running.
type fakeSource struct {
	mu         sync.Mutex
	active     bool
	startCount int
	onDecode   scanner.DecodeHandler
	onError    scanner.ErrorHandler
	startErr   error
}

func (f *fakeSource) Start(_ context.Context, _ scanner.Constraints, onDecode scanner.DecodeHandler, onError scanner.ErrorHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.active = true
	f.startCount++
	f.onDecode = onDecode
	f.onError = onError
	return nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	return nil
}

func (f *fakeSource) Clear() {}

func (f *fakeSource) Emit(text string) {
	f.mu.Lock()
	active := f.active
	onDecode := f.onDecode
	f.mu.Unlock()
	if active && onDecode != nil {
		onDecode(text)
	}
}

func (f *fakeSource) EmitError(err error) {
	f.mu.Lock()
	onError := f.onError
	f.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}

func (f *fakeSource) StartCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCount
}

func (f *fakeSource) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// fakeService is an in-memory record service with injectable failures.
type fakeService struct {
	mu            sync.Mutex
	books         map[string]*scanner.BookInfo
	lookupErr     error
	checkoutErr   error
	returnErr     error
	lookups       int
	checkoutCalls [][2]string
	returnCalls   []string
}

func newFakeService() *fakeService {
	return &fakeService{books: make(map[string]*scanner.BookInfo)}
}

func (f *fakeService) BookByCode(_ context.Context, code string) (*scanner.BookInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	b, ok := f.books[code]
	if !ok {
		return nil, errors.New("book not found")
	}
	copied := *b
	return &copied, nil
}

func (f *fakeService) Checkout(_ context.Context, bookCode, userCode string, _ int) (*scanner.CheckoutReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	f.checkoutCalls = append(f.checkoutCalls, [2]string{bookCode, userCode})
	return &scanner.CheckoutReceipt{BookTitle: f.books[bookCode].Title, UserName: userCode, DueDate: time.Now().AddDate(0, 0, 14)}, nil
}

func (f *fakeService) Return(_ context.Context, bookCode string) (*scanner.ReturnReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	f.returnCalls = append(f.returnCalls, bookCode)
	return &scanner.ReturnReceipt{BookTitle: f.books[bookCode].Title}, nil
}

func (f *fakeService) Lookups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

func (f *fakeService) CheckoutCalls() [][2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]string(nil), f.checkoutCalls...)
}

func (f *fakeService) ReturnCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.returnCalls...)
}

// recordingSink captures everything the controller tells the operator.
type recordingSink struct {
	mu        sync.Mutex
	states    []scanner.State
	prompts   []string
	successes []string
	failures  []string
}

func (s *recordingSink) StateChanged(state scanner.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
}

func (s *recordingSink) Prompt(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, msg)
}

func (s *recordingSink) Success(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes = append(s.successes, msg)
}

func (s *recordingSink) Failure(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, msg)
}

func (s *recordingSink) Successes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.successes...)
}

func (s *recordingSink) Failures() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.failures...)
}

var _ = Describe("Controller", func() {
	var (
		src        *fakeSource
		svc        *fakeService
		sink       *recordingSink
		controller *scanner.Controller
	)

	newController := func() *scanner.Controller {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		return scanner.NewController(scanner.Config{
			SettleDelay:    10 * time.Millisecond,
			Cooldown:       30 * time.Millisecond,
			RequestTimeout: time.Second,
			DueDays:        14,
		}, src, svc, sink, logger)
	}

	// waitForSecondStep blocks until the settle delay has elapsed and the
	// source is live again for the badge scan.
	waitForSecondStep := func(startsBefore int) {
		Eventually(func() int { return src.StartCount() }).Should(BeNumerically(">", startsBefore))
	}

	BeforeEach(func() {
		src = &fakeSource{}
		svc = newFakeService()
		sink = &recordingSink{}
		svc.books["BK-0001"] = &scanner.BookInfo{Code: "BK-0001", Title: "The Go Programming Language", Status: scanner.BookStatusAvailable}
		controller = newController()
	})

	AfterEach(func() {
		_ = controller.Stop()
	})

	Describe("starting and stopping", func() {
		It("should move from idle to awaiting the first scan", func() {
			Expect(controller.State()).To(Equal(scanner.StateIdle))
			Expect(controller.Start()).To(Succeed())
			Expect(controller.State()).To(Equal(scanner.StateAwaitingFirst))
			Expect(src.Active()).To(BeTrue())
		})

		It("should refuse a second start", func() {
			Expect(controller.Start()).To(Succeed())
			Expect(controller.Start()).To(MatchError(scanner.ErrNotIdle))
		})

		It("should surface a camera failure on start", func() {
			src.startErr = &scanner.CameraError{Category: scanner.CameraPermissionDenied, Err: errors.New("denied")}
			Expect(controller.Start()).NotTo(Succeed())
			Expect(controller.State()).To(Equal(scanner.StateIdle))
			Expect(sink.Failures()).NotTo(BeEmpty())
		})
	})

	Describe("a checkout cycle", func() {
		It("should check the book out to the scanned badge", func() {
			Expect(controller.Start()).To(Succeed())
			starts := src.StartCount()

			src.Emit("BK-0001")
			Expect(controller.State()).To(Equal(scanner.StateAwaitingSecond))

			waitForSecondStep(starts)
			src.Emit("US-1001")

			Eventually(func() []string { return sink.Successes() }).ShouldNot(BeEmpty())
			Expect(svc.CheckoutCalls()).To(Equal([][2]string{{"BK-0001", "US-1001"}}))
			Eventually(func() scanner.State { return controller.State() }).Should(Equal(scanner.StateAwaitingFirst))
		})

		It("should collapse duplicate decode events into one scan", func() {
			Expect(controller.Start()).To(Succeed())

			src.Emit("BK-0001")
			src.Emit("BK-0001")
			src.Emit("BK-0001")

			Expect(svc.Lookups()).To(Equal(1))
		})

		It("should allow the same literal code in both steps", func() {
			svc.books["SAME"] = &scanner.BookInfo{Code: "SAME", Title: "Self Reference", Status: scanner.BookStatusAvailable}

			Expect(controller.Start()).To(Succeed())
			starts := src.StartCount()

			src.Emit("SAME")
			waitForSecondStep(starts)
			src.Emit("SAME")

			Eventually(func() [][2]string { return svc.CheckoutCalls() }).Should(Equal([][2]string{{"SAME", "SAME"}}))
		})

		It("should report a failed checkout and recover after the cooldown", func() {
			svc.checkoutErr = errors.New("book is not available")

			Expect(controller.Start()).To(Succeed())
			starts := src.StartCount()

			src.Emit("BK-0001")
			waitForSecondStep(starts)
			src.Emit("US-1001")

			Eventually(func() []string { return sink.Failures() }).ShouldNot(BeEmpty())
			Expect(sink.Failures()[len(sink.Failures())-1]).To(ContainSubstring("not available"))
			Eventually(func() scanner.State { return controller.State() }).Should(Equal(scanner.StateAwaitingFirst))
		})
	})

	Describe("a return cycle", func() {
		BeforeEach(func() {
			svc.books["BK-0001"] = &scanner.BookInfo{
				Code:             "BK-0001",
				Title:            "The Go Programming Language",
				Status:           scanner.BookStatusCheckedOut,
				CheckedOutTo:     "Ada Lovelace",
				CheckedOutToCode: "US-1001",
			}
		})

		It("should return the book when the right badge is scanned", func() {
			Expect(controller.Start()).To(Succeed())
			starts := src.StartCount()

			src.Emit("BK-0001")
			waitForSecondStep(starts)
			src.Emit("US-1001")

			Eventually(func() []string { return sink.Successes() }).ShouldNot(BeEmpty())
			Expect(svc.ReturnCalls()).To(Equal([]string{"BK-0001"}))
		})

		It("should reject the wrong badge without calling the server", func() {
			Expect(controller.Start()).To(Succeed())
			starts := src.StartCount()

			src.Emit("BK-0001")
			waitForSecondStep(starts)
			src.Emit("US-9999")

			Eventually(func() []string { return sink.Failures() }).ShouldNot(BeEmpty())
			Expect(sink.Failures()[0]).To(ContainSubstring("wrong badge"))
			Expect(svc.ReturnCalls()).To(BeEmpty())
			Eventually(func() scanner.State { return controller.State() }).Should(Equal(scanner.StateAwaitingFirst))
		})
	})

	Describe("cancellation", func() {
		It("should discard the pending subject and not restart scanning", func() {
			Expect(controller.Start()).To(Succeed())
			starts := src.StartCount()

			src.Emit("BK-0001")
			Expect(controller.State()).To(Equal(scanner.StateAwaitingSecond))

			Expect(controller.Stop()).To(Succeed())
			Expect(controller.State()).To(Equal(scanner.StateIdle))

			// Let the settle timer window pass; the cancelled cycle must not
			// bring the source back.
			Consistently(func() int { return src.StartCount() }, 50*time.Millisecond).Should(Equal(starts))
			Expect(src.Active()).To(BeFalse())
		})

		It("should start a fresh cycle after a cancel", func() {
			Expect(controller.Start()).To(Succeed())
			src.Emit("BK-0001")
			Expect(controller.Stop()).To(Succeed())

			Expect(controller.Start()).To(Succeed())
			Expect(controller.State()).To(Equal(scanner.StateAwaitingFirst))

			// The first scan of the new cycle is a subject again, not a badge.
			src.Emit("BK-0001")
			Expect(controller.State()).To(Equal(scanner.StateAwaitingSecond))
			Expect(svc.CheckoutCalls()).To(BeEmpty())
		})
	})

	Describe("failure handling", func() {
		It("should cool down after an unknown book and resume scanning", func() {
			Expect(controller.Start()).To(Succeed())

			src.Emit("BK-9999")

			Eventually(func() []string { return sink.Failures() }).ShouldNot(BeEmpty())
			Expect(controller.State()).To(Equal(scanner.StateError))

			Eventually(func() scanner.State { return controller.State() }).Should(Equal(scanner.StateAwaitingFirst))
			Eventually(func() bool { return src.Active() }).Should(BeTrue())
		})

		It("should describe camera errors without disturbing the workflow", func() {
			Expect(controller.Start()).To(Succeed())

			src.EmitError(&scanner.CameraError{Category: scanner.CameraBusy, Err: errors.New("device busy")})

			Eventually(func() []string { return sink.Failures() }).ShouldNot(BeEmpty())
			Expect(controller.State()).To(Equal(scanner.StateAwaitingFirst))
		})
	})
})
