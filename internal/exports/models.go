package exports

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Export is a rendered shopping list file.
type Export struct {
	ID          uuid.UUID
	OwnerUserID string
	Format      string // "pdf" or "csv"
	FromDate    string // YYYY-MM-DD
	ToDate      string // YYYY-MM-DD
	ItemCount   int
	ObjectKey   *string
	SizeBytes   int64
	Status      string
	CreatedAt   time.Time
	Data        []byte // only set in local mode
}

// Filename is the name the file is downloaded under.
func (e *Export) Filename() string {
	return downloadFilename(e.FromDate, e.ToDate, e.Format)
}

func downloadFilename(from, to, format string) string {
	return fmt.Sprintf("shopping_%s_%s.%s", from, to, format)
}

// ExportDTO is the response representation of an export.
type ExportDTO struct {
	ID          uuid.UUID `json:"id"`
	Format      string    `json:"format"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ItemCount   int       `json:"item_count"`
	DownloadURL string    `json:"download_url"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportsResponse is the list response
type ExportsResponse struct {
	Exports []ExportDTO `json:"exports"`
}

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"

	StatusReady = "ready"
)

func contentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}
