package shopping

import (
	"context"
	"errors"
	"time"
)

// Delivery channels.
const (
	ChannelExport = "export"
	ChannelEmail  = "email"
	ChannelSMS    = "sms"
)

var (
	ErrNothingToExport = errors.New("shopping list is empty")
	ErrTooManyItems    = errors.New("shopping list has too many items to export")
	ErrChannelBusy     = errors.New("a delivery on this channel is already in progress")
	ErrDeliveryFailed  = errors.New("delivery failed")
)

// Publisher hands a finalized list to the outside world. Implementations
// return ErrChannelBusy while a previous call for the same owner and
// channel is running and wrap ErrDeliveryFailed on transport errors.
type Publisher interface {
	ExportList(ctx context.Context, req ExportRequest) (*ExportResult, error)
	ShareViaEmail(ctx context.Context, req EmailShareRequest) error
	ShareViaSMS(ctx context.Context, req SMSShareRequest) error
}

type ExportRequest struct {
	OwnerUserID string
	Items       []Item
	Format      string // pdf | csv, empty selects the default
	From, To    string
	BaseURL     string
}

type ExportResult struct {
	ID          string    `json:"id"`
	Format      string    `json:"format"`
	ItemCount   int       `json:"item_count"`
	SizeBytes   int64     `json:"size_bytes"`
	DownloadURL string    `json:"download_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type EmailShareRequest struct {
	OwnerUserID string
	Items       []Item
	From, To    string
	Address     string
}

type SMSShareRequest struct {
	OwnerUserID string
	Items       []Item
	From, To    string
	Phone       string
}
