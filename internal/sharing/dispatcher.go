// Package sharing delivers finalized shopping lists: as a stored file,
// by email or by SMS.
package sharing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/exports"
	"github.com/fdg312/meal-planner/internal/mailer"
	"github.com/fdg312/meal-planner/internal/observability"
	"github.com/fdg312/meal-planner/internal/shopping"
	"github.com/fdg312/meal-planner/internal/sms"
)

// Exporter renders and stores a list file.
type Exporter interface {
	Create(ctx context.Context, req shopping.ExportRequest) (*shopping.ExportResult, error)
}

// Dispatcher implements shopping.Publisher. At most one delivery per owner
// and channel runs at a time.
type Dispatcher struct {
	exporter    Exporter
	renderer    *exports.Renderer
	email       mailer.Sender
	sms         sms.Sender
	metrics     *observability.Metrics
	logger      *zap.Logger
	smsMaxChars int

	mu   sync.Mutex
	busy map[string]struct{}
}

var _ shopping.Publisher = (*Dispatcher)(nil)

func NewDispatcher(exporter Exporter, email mailer.Sender, smsSender sms.Sender, metrics *observability.Metrics, logger *zap.Logger, smsMaxChars int) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		exporter:    exporter,
		renderer:    exports.NewRenderer(),
		email:       email,
		sms:         smsSender,
		metrics:     metrics,
		logger:      logger.Named("sharing"),
		smsMaxChars: smsMaxChars,
		busy:        make(map[string]struct{}),
	}
}

func (d *Dispatcher) ExportList(ctx context.Context, req shopping.ExportRequest) (*shopping.ExportResult, error) {
	var result *shopping.ExportResult
	err := d.run(ctx, req.OwnerUserID, shopping.ChannelExport, func(ctx context.Context) error {
		var err error
		result, err = d.exporter.Create(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Dispatcher) ShareViaEmail(ctx context.Context, req shopping.EmailShareRequest) error {
	return d.run(ctx, req.OwnerUserID, shopping.ChannelEmail, func(ctx context.Context) error {
		attachment, err := d.renderer.Render(exports.Document{From: req.From, To: req.To, Items: req.Items}, exports.FormatCSV)
		if err != nil {
			return err
		}
		return d.email.Send(ctx, mailer.Message{
			To:      req.Address,
			Subject: fmt.Sprintf("Shopping list %s to %s", req.From, req.To),
			Text:    RenderText(req.From, req.To, req.Items),
			Attachments: []mailer.Attachment{{
				Filename:    fmt.Sprintf("shopping_%s_%s.csv", req.From, req.To),
				ContentType: "text/csv",
				Data:        attachment,
			}},
		})
	})
}

func (d *Dispatcher) ShareViaSMS(ctx context.Context, req shopping.SMSShareRequest) error {
	return d.run(ctx, req.OwnerUserID, shopping.ChannelSMS, func(ctx context.Context) error {
		return d.sms.Send(ctx, sms.Message{
			To:   req.Phone,
			Text: RenderSMS(req.Items, d.smsMaxChars),
		})
	})
}

// run holds the busy flag for (owner, channel) while fn executes and maps
// transport errors to shopping.ErrDeliveryFailed.
func (d *Dispatcher) run(ctx context.Context, ownerUserID, channel string, fn func(context.Context) error) error {
	start := time.Now()
	key := ownerUserID + "|" + channel

	if !d.acquire(key) {
		d.metrics.ObserveDelivery(channel, observability.OutcomeBusy, start)
		return shopping.ErrChannelBusy
	}
	defer d.release(key)

	err := fn(ctx)
	if err == nil {
		d.metrics.ObserveDelivery(channel, observability.OutcomeSuccess, start)
		d.logger.Info("delivery succeeded",
			zap.String("owner", ownerUserID),
			zap.String("channel", channel),
			zap.Duration("took", time.Since(start)),
		)
		return nil
	}

	d.metrics.ObserveDelivery(channel, observability.OutcomeFailure, start)
	if errors.Is(err, shopping.ErrTooManyItems) || errors.Is(err, shopping.ErrNothingToExport) {
		return err
	}
	d.logger.Warn("delivery failed",
		zap.String("owner", ownerUserID),
		zap.String("channel", channel),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", shopping.ErrDeliveryFailed, channel, err)
}

func (d *Dispatcher) acquire(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.busy[key]; ok {
		return false
	}
	d.busy[key] = struct{}{}
	return true
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	delete(d.busy, key)
	d.mu.Unlock()
}
