package memory

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	"redpacket/contexts/finance-core/packet-service/ports"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Store is the in-process atomic substrate. Every create and mutate runs under
// the store write lock against a staged ledger that is applied only on success.
type Store struct {
	mu sync.RWMutex

	packets  map[entities.PacketID]entities.Packet
	accounts map[entities.Account]accountRecord
	outbox   map[string]outboxRecord

	// clockMu guards nowFn on its own so Now can be called inside a unit.
	clockMu sync.RWMutex
	nowFn   func() time.Time
}

type accountRecord struct {
	Balance  uint64
	OpenedBy string
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		packets:  make(map[entities.PacketID]entities.Packet),
		accounts: make(map[entities.Account]accountRecord),
		outbox:   make(map[string]outboxRecord),
	}
}

// SetClock overrides the store clock; nil restores wall time.
func (s *Store) SetClock(now func() time.Time) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	s.nowFn = now
}

// SeedBalance sets the balance of an account, opening it if needed.
func (s *Store) SeedBalance(account entities.Account, amount uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.accounts[account]
	record.Balance = amount
	if record.OpenedBy == "" {
		record.OpenedBy = account.Owner
	}
	s.accounts[account] = record
}

// BalanceOf reports the committed balance of an account and whether it exists.
func (s *Store) BalanceOf(account entities.Account) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.accounts[account]
	return record.Balance, ok
}

// OpenedBy reports which principal paid to open an account.
func (s *Store) OpenedBy(account entities.Account) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accounts[account].OpenedBy
}

func (s *Store) CreatePacket(ctx context.Context, packetID entities.PacketID, fn ports.CreateFunc) (entities.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.packets[packetID]; exists {
		return entities.Packet{}, domainerrors.ErrPacketExists
	}

	ledger := newStagedLedger(s.accounts)
	change, err := fn(ctx, ledger)
	if err != nil {
		return entities.Packet{}, err
	}
	if change.Packet.ID != packetID {
		return entities.Packet{}, domainerrors.ErrInvariantViolated
	}
	if err := s.commitLocked(change, ledger); err != nil {
		return entities.Packet{}, err
	}
	return change.Packet.Clone(), nil
}

func (s *Store) MutatePacket(ctx context.Context, packetID entities.PacketID, fn ports.MutateFunc) (entities.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.packets[packetID]
	if !exists {
		return entities.Packet{}, domainerrors.ErrPacketNotFound
	}

	ledger := newStagedLedger(s.accounts)
	change, err := fn(ctx, current.Clone(), ledger)
	if err != nil {
		return entities.Packet{}, err
	}
	if change.Packet.ID != packetID {
		return entities.Packet{}, domainerrors.ErrInvariantViolated
	}
	if err := s.commitLocked(change, ledger); err != nil {
		return entities.Packet{}, err
	}
	return change.Packet.Clone(), nil
}

func (s *Store) commitLocked(change ports.PacketChange, ledger *stagedLedger) error {
	outboxID := strings.TrimSpace(change.Event.EventID)
	if outboxID == "" {
		return domainerrors.ErrInvalidRequest
	}
	if _, exists := s.outbox[outboxID]; exists {
		return domainerrors.ErrRepositoryConflict
	}
	payload, err := json.Marshal(change.Event)
	if err != nil {
		return err
	}

	ledger.applyTo(s.accounts)
	s.packets[change.Packet.ID] = change.Packet.Clone()
	s.outbox[outboxID] = outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    change.Event.EventType,
			PartitionKey: change.Event.PartitionKey,
			Payload:      payload,
			CreatedAt:    change.Event.OccurredAt.UTC(),
		},
		Status: outboxStatusPending,
	}
	return nil
}

func (s *Store) GetPacket(_ context.Context, packetID entities.PacketID) (entities.Packet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	packet, exists := s.packets[packetID]
	if !exists {
		return entities.Packet{}, domainerrors.ErrPacketNotFound
	}
	return packet.Clone(), nil
}

func (s *Store) ListPacketsByCreator(_ context.Context, creator string, limit int, offset int) ([]entities.Packet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	items := make([]entities.Packet, 0)
	for _, packet := range s.packets {
		if packet.Creator == strings.TrimSpace(creator) {
			items = append(items, packet)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreateTime.Equal(items[j].CreateTime) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].CreateTime.After(items[j].CreateTime)
	})
	if offset >= len(items) {
		return []entities.Packet{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	out := make([]entities.Packet, 0, end-offset)
	for _, packet := range items[offset:end] {
		out = append(out, packet.Clone())
	}
	return out, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.Status == outboxStatusPending {
			items = append(items, row.Message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrRepositoryConflict
	}
	ts := publishedAt.UTC()
	row.Status = outboxStatusPublished
	row.PublishedAt = &ts
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	s.clockMu.RLock()
	nowFn := s.nowFn
	s.clockMu.RUnlock()
	if nowFn != nil {
		return nowFn().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// stagedLedger records account changes over a read-only base map. Nothing
// reaches the base until applyTo runs.
type stagedLedger struct {
	base    map[entities.Account]accountRecord
	staged  map[entities.Account]accountRecord
	removed map[entities.Account]struct{}
}

func newStagedLedger(base map[entities.Account]accountRecord) *stagedLedger {
	return &stagedLedger{
		base:    base,
		staged:  make(map[entities.Account]accountRecord),
		removed: make(map[entities.Account]struct{}),
	}
}

func (l *stagedLedger) lookup(account entities.Account) (accountRecord, bool) {
	if _, gone := l.removed[account]; gone {
		return accountRecord{}, false
	}
	if record, ok := l.staged[account]; ok {
		return record, true
	}
	record, ok := l.base[account]
	return record, ok
}

func (l *stagedLedger) put(account entities.Account, record accountRecord) {
	delete(l.removed, account)
	l.staged[account] = record
}

func (l *stagedLedger) Balance(_ context.Context, account entities.Account) (uint64, bool, error) {
	record, ok := l.lookup(account)
	return record.Balance, ok, nil
}

func (l *stagedLedger) OpenAccount(_ context.Context, account entities.Account, payer string) error {
	if _, ok := l.lookup(account); ok {
		return nil
	}
	l.put(account, accountRecord{OpenedBy: strings.TrimSpace(payer)})
	return nil
}

func (l *stagedLedger) Debit(_ context.Context, account entities.Account, amount uint64) error {
	record, ok := l.lookup(account)
	if !ok {
		return domainerrors.ErrAccountNotFound
	}
	if record.Balance < amount {
		return domainerrors.ErrInsufficientBalance
	}
	record.Balance -= amount
	l.put(account, record)
	return nil
}

func (l *stagedLedger) Credit(_ context.Context, account entities.Account, amount uint64) error {
	record, ok := l.lookup(account)
	if !ok {
		return domainerrors.ErrAccountNotFound
	}
	if record.Balance > math.MaxUint64-amount {
		return domainerrors.ErrInvariantViolated
	}
	record.Balance += amount
	l.put(account, record)
	return nil
}

func (l *stagedLedger) CloseAccount(_ context.Context, account entities.Account) error {
	record, ok := l.lookup(account)
	if !ok {
		return domainerrors.ErrAccountNotFound
	}
	if record.Balance != 0 {
		return domainerrors.ErrInvariantViolated
	}
	delete(l.staged, account)
	l.removed[account] = struct{}{}
	return nil
}

func (l *stagedLedger) applyTo(accounts map[entities.Account]accountRecord) {
	for account, record := range l.staged {
		accounts[account] = record
	}
	for account := range l.removed {
		delete(accounts, account)
	}
}
