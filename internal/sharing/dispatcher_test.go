package sharing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-planner/internal/mailer"
	"github.com/fdg312/meal-planner/internal/observability"
	"github.com/fdg312/meal-planner/internal/shopping"
	"github.com/fdg312/meal-planner/internal/sms"
	"github.com/fdg312/meal-planner/internal/units"
)

type fakeExporter struct {
	err  error
	reqs []shopping.ExportRequest
}

func (f *fakeExporter) Create(ctx context.Context, req shopping.ExportRequest) (*shopping.ExportResult, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &shopping.ExportResult{ID: "e1", Format: "pdf", ItemCount: len(req.Items)}, nil
}

type fakeMail struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMail) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

// blockingSMS parks Send until release is closed.
type blockingSMS struct {
	entered chan struct{}
	release chan struct{}
	sent    []sms.Message
}

func (b *blockingSMS) Send(ctx context.Context, msg sms.Message) error {
	b.entered <- struct{}{}
	<-b.release
	b.sent = append(b.sent, msg)
	return nil
}

func items() []shopping.Item {
	return []shopping.Item{
		{ID: "garlic-clove", Name: "Garlic", Category: shopping.SectionProduce, TotalAmount: 6, Unit: units.Clove, Notes: "peeled"},
		{ID: "milk-cup", Name: "Milk", Category: shopping.SectionDairy, TotalAmount: 1, Unit: units.Cup},
		{ID: "egg-piece", Name: "Egg", Category: shopping.SectionDairy, TotalAmount: 4, Unit: units.Piece},
	}
}

func TestShareViaEmail(t *testing.T) {
	mail := &fakeMail{}
	metrics := observability.New()
	d := NewDispatcher(&fakeExporter{}, mail, &blockingSMS{}, metrics, nil, 160)

	err := d.ShareViaEmail(context.Background(), shopping.EmailShareRequest{
		OwnerUserID: "alice", Items: items(), From: "2026-03-02", To: "2026-03-08", Address: "cook@example.com",
	})
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "cook@example.com", mail.sent[0].To)
	assert.Equal(t, "Shopping list 2026-03-02 to 2026-03-08", mail.sent[0].Subject)
	assert.Contains(t, mail.sent[0].Text, "- [ ] Garlic: 6 clove (peeled)")
	require.Len(t, mail.sent[0].Attachments, 1)
	assert.Equal(t, "shopping_2026-03-02_2026-03-08.csv", mail.sent[0].Attachments[0].Filename)
	assert.Contains(t, string(mail.sent[0].Attachments[0].Data), "Produce,Garlic,6,clove,peeled")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Deliveries.WithLabelValues(shopping.ChannelEmail, observability.OutcomeSuccess)))
}

func TestShareViaEmail_FailureWrapsDeliveryFailed(t *testing.T) {
	mail := &fakeMail{err: errors.New("connection refused")}
	metrics := observability.New()
	d := NewDispatcher(&fakeExporter{}, mail, &blockingSMS{}, metrics, nil, 160)

	req := shopping.EmailShareRequest{OwnerUserID: "alice", Items: items(), Address: "cook@example.com"}
	err := d.ShareViaEmail(context.Background(), req)
	assert.ErrorIs(t, err, shopping.ErrDeliveryFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Deliveries.WithLabelValues(shopping.ChannelEmail, observability.OutcomeFailure)))

	// retry after failure is allowed
	mail.err = nil
	assert.NoError(t, d.ShareViaEmail(context.Background(), req))
}

func TestExportList_PassesThroughLimits(t *testing.T) {
	exporter := &fakeExporter{err: shopping.ErrTooManyItems}
	d := NewDispatcher(exporter, &fakeMail{}, &blockingSMS{}, nil, nil, 160)

	_, err := d.ExportList(context.Background(), shopping.ExportRequest{OwnerUserID: "alice", Items: items()})
	assert.ErrorIs(t, err, shopping.ErrTooManyItems)
	assert.NotErrorIs(t, err, shopping.ErrDeliveryFailed)

	exporter.err = errors.New("disk full")
	_, err = d.ExportList(context.Background(), shopping.ExportRequest{OwnerUserID: "alice", Items: items()})
	assert.ErrorIs(t, err, shopping.ErrDeliveryFailed)

	exporter.err = nil
	result, err := d.ExportList(context.Background(), shopping.ExportRequest{OwnerUserID: "alice", Items: items()})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ItemCount)
}

func TestShareViaSMS_BusyPerOwnerAndChannel(t *testing.T) {
	smsSender := &blockingSMS{entered: make(chan struct{}, 1), release: make(chan struct{})}
	mail := &fakeMail{}
	metrics := observability.New()
	d := NewDispatcher(&fakeExporter{}, mail, smsSender, metrics, nil, 160)

	req := shopping.SMSShareRequest{OwnerUserID: "alice", Items: items(), Phone: "+14155552671"}

	done := make(chan error, 1)
	go func() { done <- d.ShareViaSMS(context.Background(), req) }()
	<-smsSender.entered

	assert.ErrorIs(t, d.ShareViaSMS(context.Background(), req), shopping.ErrChannelBusy)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Deliveries.WithLabelValues(shopping.ChannelSMS, observability.OutcomeBusy)))

	// other channels and other owners are not blocked
	assert.NoError(t, d.ShareViaEmail(context.Background(), shopping.EmailShareRequest{OwnerUserID: "alice", Items: items(), Address: "a@b.co"}))

	close(smsSender.release)
	require.NoError(t, <-done)
	require.Len(t, smsSender.sent, 1)
	assert.Equal(t, "Shopping: Garlic 6 clove, Egg 4, Milk 1 cup", smsSender.sent[0].Text)
}

func TestRenderSMS_Truncates(t *testing.T) {
	full := RenderSMS(items(), 0)
	assert.Equal(t, "Shopping: Garlic 6 clove, Egg 4, Milk 1 cup", full)

	short := RenderSMS(items(), 36)
	assert.Equal(t, "Shopping: Garlic 6 clove, +2 more", short)
	assert.LessOrEqual(t, len([]rune(short)), 36)

	tiny := RenderSMS(items(), 12)
	assert.LessOrEqual(t, len([]rune(tiny)), 12)
}

func TestRenderText(t *testing.T) {
	text := RenderText("2026-03-02", "2026-03-08", items())

	produce := strings.Index(text, "Produce")
	dairy := strings.Index(text, "Dairy & Eggs")
	require.True(t, produce >= 0 && dairy > produce, text)
	assert.Contains(t, text, "- [ ] Egg: 4 piece\n")
	assert.True(t, strings.HasSuffix(text, "3 items\n"), text)
}
