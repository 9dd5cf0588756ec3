package postgresadapter

import (
	"fmt"
	"math/big"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"

	"github.com/shopspring/decimal"
)

// Amounts are stored as numeric(20,0) so the full uint64 range survives.

type packetModel struct {
	PacketID       string          `gorm:"column:packet_id;primaryKey"`
	Creator        string          `gorm:"column:creator"`
	IssuerKey      []byte          `gorm:"column:issuer_key"`
	CreateTime     time.Time       `gorm:"column:create_time"`
	DurationNanos  int64           `gorm:"column:duration_ns"`
	ExpiresAt      time.Time       `gorm:"column:expires_at"`
	TotalNumber    int             `gorm:"column:total_number"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(20,0)"`
	AssetKind      string          `gorm:"column:asset_kind"`
	AssetID        string          `gorm:"column:asset_id"`
	AssetDecimals  int32           `gorm:"column:asset_decimals"`
	SplitMode      string          `gorm:"column:split_mode"`
	ClaimedNumber  int             `gorm:"column:claimed_number"`
	ClaimedAmount  decimal.Decimal `gorm:"column:claimed_amount;type:numeric(20,0)"`
	WithdrawStatus string          `gorm:"column:withdraw_status"`
	Name           string          `gorm:"column:name"`
	Message        string          `gorm:"column:message"`
	WithdrawnAt    *time.Time      `gorm:"column:withdrawn_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (packetModel) TableName() string {
	return "packets"
}

func packetModelFromEntity(item entities.Packet) (packetModel, error) {
	if item.ID.IsZero() {
		return packetModel{}, fmt.Errorf("packet id is required")
	}
	return packetModel{
		PacketID:       item.ID.String(),
		Creator:        item.Creator,
		IssuerKey:      append([]byte(nil), item.IssuerKey...),
		CreateTime:     item.CreateTime.UTC(),
		DurationNanos:  int64(item.Duration),
		ExpiresAt:      item.Expiry().UTC(),
		TotalNumber:    item.TotalNumber,
		TotalAmount:    amountToDecimal(item.TotalAmount),
		AssetKind:      string(item.Asset.Kind),
		AssetID:        item.Asset.ID,
		AssetDecimals:  item.Asset.Decimals,
		SplitMode:      string(item.SplitMode),
		ClaimedNumber:  item.ClaimedNumber,
		ClaimedAmount:  amountToDecimal(item.ClaimedAmount),
		WithdrawStatus: string(item.WithdrawStatus),
		Name:           item.Name,
		Message:        item.Message,
		WithdrawnAt:    normalizeOptionalTime(item.WithdrawnAt),
		UpdatedAt:      item.UpdatedAt.UTC(),
	}, nil
}

// packetUpdatesFromEntity lists the columns a packet may change after creation.
func packetUpdatesFromEntity(item entities.Packet) map[string]any {
	return map[string]any{
		"claimed_number":  item.ClaimedNumber,
		"claimed_amount":  amountToDecimal(item.ClaimedAmount),
		"withdraw_status": string(item.WithdrawStatus),
		"withdrawn_at":    normalizeOptionalTime(item.WithdrawnAt),
		"updated_at":      item.UpdatedAt.UTC(),
	}
}

func (m packetModel) toEntity(claims []claimModel) (entities.Packet, error) {
	id, err := entities.ParsePacketID(m.PacketID)
	if err != nil {
		return entities.Packet{}, fmt.Errorf("decode packet id %q: %w", m.PacketID, err)
	}
	totalAmount, err := decimalToAmount(m.TotalAmount)
	if err != nil {
		return entities.Packet{}, err
	}
	claimedAmount, err := decimalToAmount(m.ClaimedAmount)
	if err != nil {
		return entities.Packet{}, err
	}

	records := make([]entities.ClaimRecord, 0, len(claims))
	for _, claim := range claims {
		amount, err := decimalToAmount(claim.Amount)
		if err != nil {
			return entities.Packet{}, err
		}
		records = append(records, entities.ClaimRecord{
			Claimant:  claim.Claimant,
			Amount:    amount,
			ClaimedAt: claim.ClaimedAt.UTC(),
		})
	}

	return entities.Packet{
		ID:          id,
		Creator:     m.Creator,
		IssuerKey:   append([]byte(nil), m.IssuerKey...),
		CreateTime:  m.CreateTime.UTC(),
		Duration:    time.Duration(m.DurationNanos),
		TotalNumber: m.TotalNumber,
		TotalAmount: totalAmount,
		Asset: entities.Asset{
			Kind:     entities.AssetKind(m.AssetKind),
			ID:       m.AssetID,
			Decimals: m.AssetDecimals,
		},
		SplitMode:      entities.SplitMode(m.SplitMode),
		ClaimedNumber:  m.ClaimedNumber,
		ClaimedAmount:  claimedAmount,
		Claims:         records,
		WithdrawStatus: entities.WithdrawStatus(m.WithdrawStatus),
		Name:           m.Name,
		Message:        m.Message,
		WithdrawnAt:    normalizeOptionalTime(m.WithdrawnAt),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}, nil
}

type claimModel struct {
	PacketID  string          `gorm:"column:packet_id;primaryKey"`
	Seq       int             `gorm:"column:seq;primaryKey"`
	Claimant  string          `gorm:"column:claimant"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(20,0)"`
	ClaimedAt time.Time       `gorm:"column:claimed_at"`
}

func (claimModel) TableName() string {
	return "packet_claims"
}

type ledgerAccountModel struct {
	Kind     string          `gorm:"column:kind;primaryKey"`
	Owner    string          `gorm:"column:owner;primaryKey"`
	AssetKey string          `gorm:"column:asset_key;primaryKey"`
	Balance  decimal.Decimal `gorm:"column:balance;type:numeric(20,0)"`
	OpenedBy string          `gorm:"column:opened_by"`
}

func (ledgerAccountModel) TableName() string {
	return "ledger_accounts"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "packet_outbox"
}

func amountToDecimal(amount uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
}

func decimalToAmount(value decimal.Decimal) (uint64, error) {
	if value.IsNegative() || !value.IsInteger() {
		return 0, fmt.Errorf("stored amount %s is not a whole unit count", value.String())
	}
	amount := value.BigInt()
	if !amount.IsUint64() {
		return 0, fmt.Errorf("stored amount %s overflows uint64", value.String())
	}
	return amount.Uint64(), nil
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
