package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	"redpacket/contexts/finance-core/packet-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreatePacket(ctx context.Context, packetID entities.PacketID, fn ports.CreateFunc) (entities.Packet, error) {
	var created entities.Packet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&packetModel{}).
			Where("packet_id = ?", packetID.String()).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrPacketExists
		}

		change, err := fn(ctx, ledger{tx: tx})
		if err != nil {
			return err
		}
		if change.Packet.ID != packetID {
			return domainerrors.ErrInvariantViolated
		}

		row, err := packetModelFromEntity(change.Packet)
		if err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrPacketExists
			}
			return fmt.Errorf("insert packet: %w", err)
		}
		if err := insertClaimsTx(tx, change.Packet, 0); err != nil {
			return err
		}
		if err := insertOutboxEnvelopeTx(tx, change.Event); err != nil {
			return err
		}
		created = change.Packet
		return nil
	})
	if err != nil {
		return entities.Packet{}, err
	}
	return created.Clone(), nil
}

func (r *Repository) MutatePacket(ctx context.Context, packetID entities.PacketID, fn ports.MutateFunc) (entities.Packet, error) {
	var updated entities.Packet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row packetModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("packet_id = ?", packetID.String()).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPacketNotFound
			}
			return err
		}
		claims, err := loadClaimsTx(tx, []string{row.PacketID})
		if err != nil {
			return err
		}
		current, err := row.toEntity(claims[row.PacketID])
		if err != nil {
			return err
		}

		change, err := fn(ctx, current.Clone(), ledger{tx: tx})
		if err != nil {
			return err
		}
		next := change.Packet
		if next.ID != packetID || len(next.Claims) < len(current.Claims) {
			return domainerrors.ErrInvariantViolated
		}

		if err := tx.Model(&packetModel{}).
			Where("packet_id = ?", row.PacketID).
			Updates(packetUpdatesFromEntity(next)).
			Error; err != nil {
			return fmt.Errorf("update packet: %w", err)
		}
		if err := insertClaimsTx(tx, next, len(current.Claims)); err != nil {
			return err
		}
		if err := insertOutboxEnvelopeTx(tx, change.Event); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return entities.Packet{}, err
	}
	return updated.Clone(), nil
}

func (r *Repository) GetPacket(ctx context.Context, packetID entities.PacketID) (entities.Packet, error) {
	var row packetModel
	err := r.db.WithContext(ctx).
		Where("packet_id = ?", packetID.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Packet{}, domainerrors.ErrPacketNotFound
		}
		return entities.Packet{}, err
	}
	claims, err := loadClaimsTx(r.db.WithContext(ctx), []string{row.PacketID})
	if err != nil {
		return entities.Packet{}, err
	}
	return row.toEntity(claims[row.PacketID])
}

func (r *Repository) ListPacketsByCreator(ctx context.Context, creator string, limit int, offset int) ([]entities.Packet, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []packetModel
	if err := r.db.WithContext(ctx).
		Where("creator = ?", strings.TrimSpace(creator)).
		Order("create_time DESC").
		Order("packet_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []entities.Packet{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PacketID)
	}
	claims, err := loadClaimsTx(r.db.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}

	items := make([]entities.Packet, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity(claims[row.PacketID])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRepositoryConflict
	}
	return nil
}

func loadClaimsTx(tx *gorm.DB, packetIDs []string) (map[string][]claimModel, error) {
	var rows []claimModel
	if err := tx.Where("packet_id IN ?", packetIDs).
		Order("packet_id ASC").
		Order("seq ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	grouped := make(map[string][]claimModel, len(packetIDs))
	for _, row := range rows {
		grouped[row.PacketID] = append(grouped[row.PacketID], row)
	}
	return grouped, nil
}

// insertClaimsTx appends the claim records from index from onward. The
// (packet_id, claimant) unique index backs the one-claim-per-principal rule.
func insertClaimsTx(tx *gorm.DB, packet entities.Packet, from int) error {
	for i := from; i < len(packet.Claims); i++ {
		claim := packet.Claims[i]
		row := claimModel{
			PacketID:  packet.ID.String(),
			Seq:       i,
			Claimant:  claim.Claimant,
			Amount:    amountToDecimal(claim.Amount),
			ClaimedAt: claim.ClaimedAt.UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyClaimed
			}
			return fmt.Errorf("insert packet claim: %w", err)
		}
	}
	return nil
}

func insertOutboxEnvelopeTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		return domainerrors.ErrInvalidRequest
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := tx.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryConflict
		}
		return fmt.Errorf("insert packet outbox: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
