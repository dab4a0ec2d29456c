package scanlog_test

import (
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/shelfpoint/shelfpoint/internal"
	"github.com/shelfpoint/shelfpoint/internal/scanlog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestScanlogService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scanlog Service Suite")
}

// MockRepository implements scanlog.Repository for testing
type MockRepository struct {
	records    map[int64]*scanlog.ScanRecord
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		records: make(map[int64]*scanlog.ScanRecord),
		nextID:  1,
	}
}

func (m *MockRepository) Insert(barcode, notes string) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	for _, rec := range m.records {
		if rec.Barcode == barcode {
			return 0, scanlog.ErrBarcodeExists
		}
	}
	id := m.nextID
	m.nextID++
	m.records[id] = &scanlog.ScanRecord{ID: id, Barcode: barcode, Notes: notes, ScannedAt: time.Now()}
	return id, nil
}

func (m *MockRepository) GetByBarcode(barcode string) (*scanlog.ScanRecord, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, rec := range m.records {
		if rec.Barcode == barcode {
			return rec, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) List() ([]*scanlog.ScanRecord, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*scanlog.ScanRecord
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockRepository) Delete(id int64) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	if _, ok := m.records[id]; !ok {
		return 0, nil
	}
	delete(m.records, id)
	return 1, nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

var _ = Describe("Scanlog Service", func() {
	var (
		mockRepo *MockRepository
		service  *scanlog.Service
		logger   *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = scanlog.NewService(mockRepo, logger)
	})

	Describe("Add", func() {
		It("should log a barcode and return the record", func() {
			rec, err := service.Add(scanlog.AddScanDTO{Barcode: "ITEM-001", Notes: "shelf A"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ID).To(BeNumerically(">", 0))
			Expect(rec.Barcode).To(Equal("ITEM-001"))
			Expect(rec.Notes).To(Equal("shelf A"))
		})

		It("should reject an empty barcode", func() {
			_, err := service.Add(scanlog.AddScanDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should conflict on a duplicate barcode", func() {
			_, err := service.Add(scanlog.AddScanDTO{Barcode: "ITEM-001"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Add(scanlog.AddScanDTO{Barcode: "ITEM-001"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeBarcodeExists))
		})
	})

	Describe("Lookup", func() {
		It("should return nil for an unknown barcode", func() {
			rec, err := service.Lookup("ITEM-404")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec).To(BeNil())
		})

		It("should return the record for a logged barcode", func() {
			_, err := service.Add(scanlog.AddScanDTO{Barcode: "ITEM-001"})
			Expect(err).NotTo(HaveOccurred())

			rec, err := service.Lookup("ITEM-001")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec).NotTo(BeNil())
			Expect(rec.Barcode).To(Equal("ITEM-001"))
		})
	})

	Describe("List", func() {
		It("should return the most recent scan first", func() {
			for _, code := range []string{"ITEM-001", "ITEM-002", "ITEM-003"} {
				_, err := service.Add(scanlog.AddScanDTO{Barcode: code})
				Expect(err).NotTo(HaveOccurred())
			}

			records, err := service.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(3))
			Expect(records[0].Barcode).To(Equal("ITEM-003"))
		})
	})

	Describe("Delete", func() {
		It("should report one change for an existing record", func() {
			rec, err := service.Add(scanlog.AddScanDTO{Barcode: "ITEM-001"})
			Expect(err).NotTo(HaveOccurred())

			changes, err := service.Delete(rec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(changes).To(Equal(int64(1)))
		})

		It("should report zero changes for an unknown id", func() {
			changes, err := service.Delete(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(changes).To(BeZero())
		})
	})

	Context("when the repository fails", func() {
		BeforeEach(func() {
			mockRepo.SetShouldFail(true, errors.New("database error"))
		})

		It("should surface errors from every operation", func() {
			_, err := service.Add(scanlog.AddScanDTO{Barcode: "ITEM-001"})
			Expect(err).To(HaveOccurred())

			_, err = service.Lookup("ITEM-001")
			Expect(err).To(HaveOccurred())

			_, err = service.List()
			Expect(err).To(HaveOccurred())

			_, err = service.Delete(1)
			Expect(err).To(HaveOccurred())
		})
	})
})
