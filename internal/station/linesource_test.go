package station_test

import (
	"context"
	"io"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shelfpoint/shelfpoint/internal/scanner"
	"github.com/shelfpoint/shelfpoint/internal/station"
)

var _ = Describe("LineSource", func() {
	var (
		pr     *io.PipeReader
		pw     *io.PipeWriter
		source *station.LineSource

		mu      sync.Mutex
		decoded []string
	)

	record := func(text string) {
		mu.Lock()
		defer mu.Unlock()
		decoded = append(decoded, text)
	}

	snapshot := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), decoded...)
	}

	BeforeEach(func() {
		pr, pw = io.Pipe()
		source = station.NewLineSource(pr)
		decoded = nil
	})

	AfterEach(func() {
		pw.Close()
		pr.Close()
	})

	It("should deliver one event per line while started", func() {
		Expect(source.Start(context.Background(), scanner.Constraints{}, record, nil)).To(Succeed())

		go func() {
			pw.Write([]byte("BK-0001\n"))
			pw.Write([]byte("US-1001\n"))
		}()

		Eventually(snapshot).Should(Equal([]string{"BK-0001", "US-1001"}))
	})

	It("should skip blank lines and trim whitespace", func() {
		Expect(source.Start(context.Background(), scanner.Constraints{}, record, nil)).To(Succeed())

		go func() {
			pw.Write([]byte("\n  BK-0001  \n\n"))
		}()

		Eventually(snapshot).Should(Equal([]string{"BK-0001"}))
	})

	It("should drop lines read while stopped", func() {
		Expect(source.Start(context.Background(), scanner.Constraints{}, record, nil)).To(Succeed())
		Expect(source.Stop()).To(Succeed())

		done := make(chan struct{})
		go func() {
			pw.Write([]byte("IGNORED\n"))
			close(done)
		}()
		Eventually(done).Should(BeClosed())

		Consistently(snapshot).Should(BeEmpty())
	})
})
