package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"eventparticipation/internal/domain"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memoryRepository is an in-memory ParticipationRepository with the same
// uniqueness and versioning rules as the Postgres store.
type memoryRepository struct {
	mu       sync.Mutex
	rows     map[string]*domain.Participation
	payments map[string]map[domain.PaymentOutcome]bool
	nextID   int

	// staleWrites makes that many versioned updates fail with ErrStaleVersion
	// after bumping the stored version, as if another writer got there first.
	staleWrites int
	updates     int
	err         error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		rows:     map[string]*domain.Participation{},
		payments: map[string]map[domain.PaymentOutcome]bool{},
	}
}

func (m *memoryRepository) Create(_ context.Context, p *domain.Participation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, row := range m.rows {
		if row.EventID == p.EventID && row.Tower == p.Tower && row.FlatNo == p.FlatNo {
			return domain.ErrConflict
		}
	}
	m.nextID++
	now := time.Now().UTC()
	p.ID = fmt.Sprintf("p%d", m.nextID)
	p.Version = 1
	p.RegisteredAt = now
	p.UpdatedAt = now
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memoryRepository) GetByID(_ context.Context, id string) (*domain.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memoryRepository) GetByUserAndEvent(_ context.Context, userID, eventID string) (*domain.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.UserID == userID && row.EventID == eventID {
			cp := *row
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryRepository) list(match func(*domain.Participation) bool) ([]*domain.Participation, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Participation{}
	for _, row := range m.rows {
		if match(row) {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepository) ListByEvent(_ context.Context, eventID string, _ domain.PaginationParams) ([]*domain.Participation, int, error) {
	return m.list(func(p *domain.Participation) bool { return p.EventID == eventID })
}

func (m *memoryRepository) ListByUser(_ context.Context, userID string, _ domain.PaginationParams) ([]*domain.Participation, int, error) {
	return m.list(func(p *domain.Participation) bool { return p.UserID == userID })
}

func (m *memoryRepository) ListAll(_ context.Context, _ domain.PaginationParams) ([]*domain.Participation, int, error) {
	return m.list(func(*domain.Participation) bool { return true })
}

func (m *memoryRepository) Update(_ context.Context, id string, upd domain.ParticipationUpdate) (*domain.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if rec := upd.Payment; rec != nil {
		seen := m.payments[rec.TransactionID]
		if seen[domain.PaymentSucceeded] || seen[rec.Outcome] {
			return nil, domain.ErrDuplicatePayment
		}
	}
	if upd.ExpectedVersion > 0 && m.staleWrites > 0 {
		m.staleWrites--
		row.Version++
		return nil, domain.ErrStaleVersion
	}
	if upd.ExpectedVersion > 0 && upd.ExpectedVersion != row.Version {
		return nil, domain.ErrStaleVersion
	}
	next := *row
	if upd.Tower != nil {
		next.Tower = *upd.Tower
	}
	if upd.FlatNo != nil {
		next.FlatNo = *upd.FlatNo
	}
	for otherID, other := range m.rows {
		if otherID != id && other.EventID == next.EventID && other.Tower == next.Tower && other.FlatNo == next.FlatNo {
			return nil, domain.ErrConflict
		}
	}
	setString(&next.UserName, upd.UserName)
	setString(&next.PhoneNumber, upd.PhoneNumber)
	setString(&next.EmailID, upd.EmailID)
	setString(&next.ContributionComments, upd.ContributionComments)
	if upd.EventDate != nil {
		d := *upd.EventDate
		next.EventDate = &d
	}
	setInt(&next.NumTickets, upd.NumTickets)
	setInt(&next.VegHeads, upd.VegHeads)
	setInt(&next.NonVegHeads, upd.NonVegHeads)
	setDecimal(&next.TotalPayable, upd.TotalPayable)
	setDecimal(&next.AmountPaid, upd.AmountPaid)
	setDecimal(&next.PaymentRemaining, upd.PaymentRemaining)
	setDecimal(&next.AdditionalContribution, upd.AdditionalContribution)
	if upd.Status != nil {
		next.Status = *upd.Status
	}
	if upd.TransactionID != nil {
		txn := *upd.TransactionID
		next.TransactionID = &txn
	}
	if rec := upd.Payment; rec != nil {
		if m.payments[rec.TransactionID] == nil {
			m.payments[rec.TransactionID] = map[domain.PaymentOutcome]bool{}
		}
		m.payments[rec.TransactionID][rec.Outcome] = true
	}
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	m.rows[id] = &next
	m.updates++
	cp := next
	return &cp, nil
}

func (m *memoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryRepository) Ping(context.Context) error { return nil }

// put stores p as is and returns its id.
func (m *memoryRepository) put(p domain.Participation) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if p.ID == "" {
		p.ID = fmt.Sprintf("p%d", m.nextID)
	}
	if p.Version == 0 {
		p.Version = 1
	}
	m.rows[p.ID] = &p
	return p.ID
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

type mockUserDirectory struct {
	users map[string]*domain.UserProfile
	err   error
}

func (m *mockUserDirectory) GetUser(_ context.Context, userID string) (*domain.UserProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type mockCatalog struct {
	configs map[string]*domain.EventChargeConfig
	err     error
}

func (m *mockCatalog) GetChargeConfig(_ context.Context, eventID string) (*domain.EventChargeConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	cfg, ok := m.configs[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cfg, nil
}

func perHeadConfig(eventID string, cover, veg, nonVeg int64) *domain.EventChargeConfig {
	return &domain.EventChargeConfig{
		EventID:              eventID,
		CoverCharge:          decimal.NewFromInt(cover),
		CoverChargeMode:      domain.ChargePerHead,
		VegFoodCharge:        decimal.NewFromInt(veg),
		VegFoodChargeMode:    domain.ChargePerHead,
		NonVegFoodCharge:     decimal.NewFromInt(nonVeg),
		NonVegFoodChargeMode: domain.ChargePerHead,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// recordingNotifier captures receipts; err makes every send fail.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []*domain.PaymentReceiptEmailData
	err  error
}

func (r *recordingNotifier) SendPaymentReceipt(_ context.Context, data *domain.PaymentReceiptEmailData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, data)
	return nil
}
