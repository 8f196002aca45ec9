package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/domain/shared"
)

// ReportStorage stores report bodies and hands out download links
type ReportStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)
}

// ReportReader is implemented by storages that serve report bodies through
// the API instead of handing out external links
type ReportReader interface {
	Get(ctx context.Context, key string) (data []byte, contentType string, ok bool, err error)
}

// ReportFile is a downloaded report body
type ReportFile struct {
	Key         string
	ContentType string
	Data        []byte
}

var reportHeader = []string{
	"id", "name", "category", "serial_number", "location", "status",
	"stock_level", "reorder_point", "low_stock", "supplier", "updated_at",
}

// ReportService exports inventory snapshots as CSV
type ReportService struct {
	itemRepo inventory.InventoryItemRepository
	storage  ReportStorage
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(itemRepo inventory.InventoryItemRepository, storage ReportStorage, logger *zap.Logger) *ReportService {
	return &ReportService{
		itemRepo: itemRepo,
		storage:  storage,
		logger:   logger,
		now:      time.Now,
	}
}

// Export writes the items matching filter to storage and returns a link
func (s *ReportService) Export(ctx context.Context, filter ListFilter) (*ReportResult, error) {
	items, err := s.itemRepo.FindAll(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}

	body, err := encodeItemsCSV(items)
	if err != nil {
		return nil, fmt.Errorf("encode inventory report: %w", err)
	}

	key := fmt.Sprintf("reports/inventory-%s-%s.csv", s.now().UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
	if err := s.storage.Put(ctx, key, body, "text/csv"); err != nil {
		return nil, fmt.Errorf("upload inventory report: %w", err)
	}
	url, expiresAt, err := s.storage.DownloadURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("sign inventory report url: %w", err)
	}

	s.logger.Info("Inventory report exported",
		zap.String("key", key),
		zap.Int("rows", len(items)),
		zap.Int("bytes", len(body)),
	)

	return &ReportResult{
		Key:       key,
		URL:       url,
		ExpiresAt: expiresAt,
		Rows:      len(items),
	}, nil
}

// Download returns a stored report. Reports held by an external object store
// are fetched from their presigned link, so they are NotFound here.
func (s *ReportService) Download(ctx context.Context, key string) (*ReportFile, error) {
	if key == "" {
		return nil, shared.NewValidationError("Report key is required")
	}
	reader, ok := s.storage.(ReportReader)
	if !ok {
		return nil, shared.NewNotFoundError("Report")
	}
	data, contentType, found, err := reader.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read inventory report: %w", err)
	}
	if !found {
		return nil, shared.NewNotFoundError("Report")
	}
	return &ReportFile{Key: key, ContentType: contentType, Data: data}, nil
}

func encodeItemsCSV(items []inventory.InventoryItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return nil, err
	}
	for i := range items {
		item := &items[i]
		supplier := ""
		if item.SupplierName != nil {
			supplier = *item.SupplierName
		}
		serial := ""
		if item.SerialNumber != nil {
			serial = *item.SerialNumber
		}
		if err := w.Write([]string{
			item.ID.String(),
			item.Name,
			item.Category,
			serial,
			item.Location,
			item.Status.String(),
			strconv.Itoa(item.StockLevel),
			strconv.Itoa(item.ReorderPoint),
			strconv.FormatBool(item.IsLowStock()),
			supplier,
			item.UpdatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
