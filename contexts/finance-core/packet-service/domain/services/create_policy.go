package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
)

// PacketDraft carries the creator-supplied parameters of a new packet.
type PacketDraft struct {
	Creator     string
	TotalNumber int
	TotalAmount uint64
	CreateTime  time.Time
	Duration    time.Duration
	SplitMode   entities.SplitMode
	IssuerKey   []byte
	Asset       entities.Asset
	Name        string
	Message     string
}

// CreatePolicy bounds the time parameters accepted at creation.
type CreatePolicy struct {
	// MaxCreateSkew is the largest accepted distance between the declared
	// create time and the current time.
	MaxCreateSkew time.Duration
	// MinValidity is how far past now the expiry must at least be.
	MinValidity time.Duration
}

const DefaultMaxCreateSkew = 120 * time.Second

// ValidateDraft checks every creation rule that does not need ledger state.
// Balance sufficiency is checked later inside the atomic create unit.
func ValidateDraft(draft PacketDraft, policy CreatePolicy, now time.Time) error {
	if !entities.ValidPrincipal(draft.Creator) {
		return domainerrors.ErrInvalidRequest
	}
	// Packets keep whole-second create times; expiry is judged on the stored value.
	draft.CreateTime = draft.CreateTime.Truncate(time.Second)
	if draft.TotalNumber < 1 || draft.TotalNumber > entities.MaxTotalNumber {
		return domainerrors.ErrInvalidTotalNumber
	}
	if draft.TotalAmount == 0 {
		return domainerrors.ErrInvalidTotalAmount
	}
	// Random shares reserve one unit for every later claimant.
	if draft.SplitMode == entities.SplitModeRandom && draft.TotalAmount < uint64(draft.TotalNumber) {
		return domainerrors.ErrInvalidTotalAmount
	}
	if !draft.SplitMode.Valid() {
		return domainerrors.ErrInvalidRequest
	}

	skew := policy.MaxCreateSkew
	if skew <= 0 {
		skew = DefaultMaxCreateSkew
	}
	if absDuration(now.Sub(draft.CreateTime)) >= skew {
		return domainerrors.ErrInvalidCreateTime
	}
	if draft.Duration <= 0 {
		return domainerrors.ErrInvalidExpiryTime
	}
	if !draft.CreateTime.Add(draft.Duration).After(now.Add(policy.MinValidity)) {
		return domainerrors.ErrInvalidExpiryTime
	}

	if len(draft.IssuerKey) != entities.IssuerKeySize {
		return domainerrors.ErrInvalidIssuerKey
	}
	if !draft.Asset.Valid() {
		return domainerrors.ErrInvalidAsset
	}
	if utf8.RuneCountInString(draft.Name) > entities.MaxNameLength ||
		utf8.RuneCountInString(draft.Message) > entities.MaxMessageLength {
		return domainerrors.ErrInvalidMetadata
	}
	return nil
}

// NewPacket builds the initial record for a validated draft.
func NewPacket(id entities.PacketID, draft PacketDraft) entities.Packet {
	return entities.Packet{
		ID:             id,
		Creator:        strings.TrimSpace(draft.Creator),
		IssuerKey:      append([]byte(nil), draft.IssuerKey...),
		CreateTime:     draft.CreateTime.UTC().Truncate(time.Second),
		Duration:       draft.Duration,
		TotalNumber:    draft.TotalNumber,
		TotalAmount:    draft.TotalAmount,
		Asset:          draft.Asset,
		SplitMode:      draft.SplitMode,
		Claims:         []entities.ClaimRecord{},
		WithdrawStatus: entities.WithdrawStatusOpen,
		Name:           draft.Name,
		Message:        draft.Message,
		UpdatedAt:      draft.CreateTime.UTC().Truncate(time.Second),
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
