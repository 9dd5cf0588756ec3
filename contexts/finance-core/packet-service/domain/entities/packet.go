package entities

import (
	"encoding/hex"
	"strings"
	"time"

	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
)

const (
	MaxTotalNumber   = 200
	MaxNameLength    = 100
	MaxMessageLength = 200
	IssuerKeySize    = 32
	PacketIDSize     = 32
)

// PacketID is the 32 byte identity derived from (creator, create time).
type PacketID [PacketIDSize]byte

func (id PacketID) String() string {
	return hex.EncodeToString(id[:])
}

func (id PacketID) IsZero() bool {
	return id == PacketID{}
}

func ParsePacketID(raw string) (PacketID, error) {
	decoded, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil || len(decoded) != PacketIDSize {
		return PacketID{}, domainerrors.ErrInvalidRequest
	}
	var id PacketID
	copy(id[:], decoded)
	return id, nil
}

type SplitMode string

const (
	SplitModeEqual  SplitMode = "equal"
	SplitModeRandom SplitMode = "random"
)

func (m SplitMode) Valid() bool {
	return m == SplitModeEqual || m == SplitModeRandom
}

type WithdrawStatus string

const (
	WithdrawStatusOpen      WithdrawStatus = "open"
	WithdrawStatusWithdrawn WithdrawStatus = "withdrawn"
)

// State is derived from the record and the current time; it is never stored.
type State string

const (
	StateActive    State = "active"
	StateExhausted State = "exhausted"
	StateExpired   State = "expired"
	StateWithdrawn State = "withdrawn"
)

// ClaimRecord is one payout. Claimant and amount live in the same record so the
// claimant list and the payout list cannot drift apart.
type ClaimRecord struct {
	Claimant  string
	Amount    uint64
	ClaimedAt time.Time
}

type Packet struct {
	ID             PacketID
	Creator        string
	IssuerKey      []byte
	CreateTime     time.Time
	Duration       time.Duration
	TotalNumber    int
	TotalAmount    uint64
	Asset          Asset
	SplitMode      SplitMode
	ClaimedNumber  int
	ClaimedAmount  uint64
	Claims         []ClaimRecord
	WithdrawStatus WithdrawStatus
	Name           string
	Message        string
	WithdrawnAt    *time.Time
	UpdatedAt      time.Time
}

func (p Packet) Expiry() time.Time {
	return p.CreateTime.Add(p.Duration)
}

func (p Packet) IsExpired(now time.Time) bool {
	return !now.Before(p.Expiry())
}

func (p Packet) RemainingAmount() uint64 {
	return p.TotalAmount - p.ClaimedAmount
}

func (p Packet) RemainingSlots() int {
	return p.TotalNumber - p.ClaimedNumber
}

func (p Packet) HasClaimed(principal string) bool {
	for _, claim := range p.Claims {
		if claim.Claimant == principal {
			return true
		}
	}
	return false
}

func (p Packet) Vault() Account {
	return VaultAccount(p.ID, p.Asset)
}

func (p Packet) State(now time.Time) State {
	switch {
	case p.WithdrawStatus == WithdrawStatusWithdrawn:
		return StateWithdrawn
	case p.IsExpired(now):
		return StateExpired
	case p.ClaimedNumber >= p.TotalNumber:
		return StateExhausted
	default:
		return StateActive
	}
}

// RecordClaim appends a payout and advances both counters.
func (p *Packet) RecordClaim(claimant string, amount uint64, claimedAt time.Time) {
	p.Claims = append(p.Claims, ClaimRecord{
		Claimant:  claimant,
		Amount:    amount,
		ClaimedAt: claimedAt.UTC(),
	})
	p.ClaimedNumber++
	p.ClaimedAmount += amount
	p.UpdatedAt = claimedAt.UTC()
}

func (p *Packet) MarkWithdrawn(at time.Time) {
	ts := at.UTC()
	p.WithdrawStatus = WithdrawStatusWithdrawn
	p.WithdrawnAt = &ts
	p.UpdatedAt = ts
}

// CheckInvariants verifies counters, the claim sequence and the conservation law.
func (p Packet) CheckInvariants() error {
	if p.TotalNumber < 1 || p.TotalNumber > MaxTotalNumber || p.TotalAmount == 0 {
		return domainerrors.ErrInvariantViolated
	}
	if p.ClaimedNumber < 0 || p.ClaimedNumber > p.TotalNumber {
		return domainerrors.ErrInvariantViolated
	}
	if p.ClaimedAmount > p.TotalAmount || len(p.Claims) != p.ClaimedNumber {
		return domainerrors.ErrInvariantViolated
	}

	seen := make(map[string]struct{}, len(p.Claims))
	var sum uint64
	for _, claim := range p.Claims {
		if _, dup := seen[claim.Claimant]; dup {
			return domainerrors.ErrInvariantViolated
		}
		seen[claim.Claimant] = struct{}{}
		sum += claim.Amount
	}
	if sum != p.ClaimedAmount {
		return domainerrors.ErrInvariantViolated
	}
	if (p.ClaimedNumber == p.TotalNumber) != (p.ClaimedAmount == p.TotalAmount) {
		return domainerrors.ErrInvariantViolated
	}
	return nil
}

// Clone returns a copy that shares no slices with p.
func (p Packet) Clone() Packet {
	out := p
	out.IssuerKey = append([]byte(nil), p.IssuerKey...)
	out.Claims = append([]ClaimRecord{}, p.Claims...)
	if p.WithdrawnAt != nil {
		ts := *p.WithdrawnAt
		out.WithdrawnAt = &ts
	}
	return out
}
