package shopping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fdg312/meal-planner/internal/observability"
	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/fdg312/meal-planner/internal/validation"
)

const (
	dateLayout       = "2006-01-02"
	defaultRangeDays = 7
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrInvalidRange  = errors.New("from date must not be after to date")
	ErrRangeTooLarge = errors.New("date range too large")
)

// Service generates shopping lists and keeps the per-owner selection
// session in sync with them.
type Service struct {
	plans        PlanReader
	inventory    InventoryReader
	sessions     storage.ShoppingSessionsStorage
	publisher    Publisher
	aggregator   *Aggregator
	validator    *validation.Validator
	metrics      *observability.Metrics
	logger       *zap.Logger
	maxRangeDays int
	now          func() time.Time

	// serializes session read-modify-write
	sessionMu sync.Mutex
}

// NewService creates a shopping service. metrics may be nil.
func NewService(
	plans PlanReader,
	inventory InventoryReader,
	sessions storage.ShoppingSessionsStorage,
	publisher Publisher,
	aggregator *Aggregator,
	metrics *observability.Metrics,
	logger *zap.Logger,
	maxRangeDays int,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aggregator == nil {
		aggregator = NewAggregator(WithLogger(logger))
	}
	if maxRangeDays <= 0 {
		maxRangeDays = 31
	}
	return &Service{
		plans:        plans,
		inventory:    inventory,
		sessions:     sessions,
		publisher:    publisher,
		aggregator:   aggregator,
		validator:    validation.New(),
		metrics:      metrics,
		logger:       logger,
		maxRangeDays: maxRangeDays,
		now:          time.Now,
	}
}

// Generate computes the list for a date range and reconciles the session
// against its item keys.
func (s *Service) Generate(ctx context.Context, ownerUserID string, q RangeQuery) (*ListResponse, error) {
	if err := s.validate(q); err != nil {
		return nil, err
	}
	from, to, err := s.resolveRange(q.From, q.To)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	list, err := s.compute(ctx, ownerUserID, from, to)
	if err != nil {
		return nil, err
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	session, err := s.reconcile(ctx, ownerUserID, list)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveGenerate(start, list.TotalItems)

	s.logger.Debug("shopping list generated",
		zap.String("owner_user_id", ownerUserID),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("items", list.TotalItems),
		zap.Int("sections", len(list.Sections)),
	)

	return &ListResponse{From: from, To: to, List: list, Session: session}, nil
}

// Toggle flips the selected (default) or purchased mark of an item on the
// last generated list.
func (s *Service) Toggle(ctx context.Context, ownerUserID string, req ToggleRequest) (*ToggleResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	session, err := s.loadSession(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	if !session.Has(req.ItemID) {
		return nil, ErrUnknownItem
	}

	if req.Field == TogglePurchased {
		session.TogglePurchased(req.ItemID)
	} else {
		session.Toggle(req.ItemID)
	}
	if err := s.saveSession(ctx, ownerUserID, session); err != nil {
		return nil, err
	}

	return &ToggleResponse{
		ItemID:    req.ItemID,
		Selected:  session.IsSelected(req.ItemID),
		Purchased: session.Purchased[req.ItemID],
	}, nil
}

// SetOverride sets or clears the quantity and notes overrides of one item.
func (s *Service) SetOverride(ctx context.Context, ownerUserID string, req OverrideRequest) (*Session, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	session, err := s.loadSession(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	if !session.Has(req.ItemID) {
		return nil, ErrUnknownItem
	}

	switch {
	case req.ClearQuantity:
		session.ClearQuantity(req.ItemID)
	case req.Quantity != nil:
		if err := session.SetQuantity(req.ItemID, *req.Quantity); err != nil {
			return nil, err
		}
	}
	switch {
	case req.ClearNotes:
		session.ClearNotes(req.ItemID)
	case req.Notes != nil:
		session.SetNotes(req.ItemID, *req.Notes)
	}

	if err := s.saveSession(ctx, ownerUserID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ClearSession forgets selection and overrides.
func (s *Service) ClearSession(ctx context.Context, ownerUserID string) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if err := s.sessions.DeleteSession(ctx, ownerUserID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Export renders the finalized list into a stored document.
func (s *Service) Export(ctx context.Context, ownerUserID string, req ExportListRequest, baseURL string) (*ExportResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	from, to, items, err := s.finalized(ctx, ownerUserID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	return s.publisher.ExportList(ctx, ExportRequest{
		OwnerUserID: ownerUserID,
		Items:       items,
		Format:      req.Format,
		From:        from,
		To:          to,
		BaseURL:     baseURL,
	})
}

// ShareEmail sends the finalized list as a plain-text email.
func (s *Service) ShareEmail(ctx context.Context, ownerUserID string, req ShareEmailRequest) (*ShareResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	from, to, items, err := s.finalized(ctx, ownerUserID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.ShareViaEmail(ctx, EmailShareRequest{
		OwnerUserID: ownerUserID,
		Items:       items,
		From:        from,
		To:          to,
		Address:     req.Address,
	}); err != nil {
		return nil, err
	}
	return &ShareResponse{Channel: ChannelEmail, ItemCount: len(items), Status: "sent"}, nil
}

// ShareSMS sends the finalized list as a compact text message.
func (s *Service) ShareSMS(ctx context.Context, ownerUserID string, req ShareSMSRequest) (*ShareResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	from, to, items, err := s.finalized(ctx, ownerUserID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.ShareViaSMS(ctx, SMSShareRequest{
		OwnerUserID: ownerUserID,
		Items:       items,
		From:        from,
		To:          to,
		Phone:       req.Phone,
	}); err != nil {
		return nil, err
	}
	return &ShareResponse{Channel: ChannelSMS, ItemCount: len(items), Status: "sent"}, nil
}

// finalized regenerates the list from a fresh snapshot and applies the
// session to it. The session is saved before the publisher runs so a
// failed delivery leaves it unchanged.
func (s *Service) finalized(ctx context.Context, ownerUserID, rawFrom, rawTo string) (string, string, []Item, error) {
	from, to, err := s.resolveRange(rawFrom, rawTo)
	if err != nil {
		return "", "", nil, err
	}
	list, err := s.compute(ctx, ownerUserID, from, to)
	if err != nil {
		return "", "", nil, err
	}

	s.sessionMu.Lock()
	session, err := s.reconcile(ctx, ownerUserID, list)
	s.sessionMu.Unlock()
	if err != nil {
		return "", "", nil, err
	}

	items := Finalize(list.Items(), session)
	if len(items) == 0 {
		return "", "", nil, ErrNothingToExport
	}
	return from, to, items, nil
}

// compute loads slots and inventory concurrently and runs the engine.
func (s *Service) compute(ctx context.Context, ownerUserID, from, to string) (List, error) {
	var (
		slots     []MealSlot
		inventory []InventoryItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		slots, err = s.plans.LoadSlots(gctx, ownerUserID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		inventory, err = s.inventory.LoadInventory(gctx, ownerUserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return List{}, fmt.Errorf("load snapshot: %w", err)
	}

	return Assemble(s.aggregator.Aggregate(slots, inventory)), nil
}

// reconcile must be called with sessionMu held.
func (s *Service) reconcile(ctx context.Context, ownerUserID string, list List) (*Session, error) {
	session, err := s.loadSession(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	items := list.Items()
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.ID
	}
	if dropped := session.Reconcile(keys); dropped > 0 {
		s.metrics.AddSessionDropped(dropped)
		s.logger.Debug("session entries dropped",
			zap.String("owner_user_id", ownerUserID),
			zap.Int("dropped", dropped),
		)
	}

	if err := s.saveSession(ctx, ownerUserID, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) loadSession(ctx context.Context, ownerUserID string) (*Session, error) {
	payload, found, err := s.sessions.GetSession(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !found {
		return NewSession(), nil
	}

	session := NewSession()
	if err := json.Unmarshal(payload, session); err != nil {
		s.logger.Warn("discarding unreadable shopping session",
			zap.String("owner_user_id", ownerUserID),
			zap.Error(err),
		)
		return NewSession(), nil
	}
	session.ensure()
	if session.Keys == nil {
		session.Keys = []string{}
	}
	return session, nil
}

func (s *Service) saveSession(ctx context.Context, ownerUserID string, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.sessions.SaveSession(ctx, ownerUserID, payload); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// resolveRange applies defaults and checks the range length. Both bounds
// are inclusive.
func (s *Service) resolveRange(rawFrom, rawTo string) (string, string, error) {
	fromDate := s.now().UTC().Truncate(24 * time.Hour)
	if rawFrom != "" {
		d, err := time.Parse(dateLayout, rawFrom)
		if err != nil {
			return "", "", fmt.Errorf("%w: from must match %s", ErrValidation, dateLayout)
		}
		fromDate = d
	}

	toDate := fromDate.AddDate(0, 0, defaultRangeDays-1)
	if rawTo != "" {
		d, err := time.Parse(dateLayout, rawTo)
		if err != nil {
			return "", "", fmt.Errorf("%w: to must match %s", ErrValidation, dateLayout)
		}
		toDate = d
	}

	if fromDate.After(toDate) {
		return "", "", ErrInvalidRange
	}
	if days := int(toDate.Sub(fromDate).Hours()/24) + 1; days > s.maxRangeDays {
		return "", "", fmt.Errorf("%w: %d days requested, max %d", ErrRangeTooLarge, days, s.maxRangeDays)
	}
	return fromDate.Format(dateLayout), toDate.Format(dateLayout), nil
}

func (s *Service) validate(req any) error {
	if err := s.validator.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	return nil
}
