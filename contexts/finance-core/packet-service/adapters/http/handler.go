package httpadapter

import (
	"context"
	"encoding/hex"
	"log/slog"
	"math"
	"math/big"
	"strings"
	"time"

	"redpacket/contexts/finance-core/packet-service/application/commands"
	"redpacket/contexts/finance-core/packet-service/application/queries"
	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	"redpacket/contexts/finance-core/packet-service/domain/services"
	"redpacket/contexts/finance-core/packet-service/ports"
	httptransport "redpacket/contexts/finance-core/packet-service/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	CreatePacket  commands.CreatePacketUseCase
	ClaimPacket   commands.ClaimPacketUseCase
	ReclaimPacket commands.ReclaimPacketUseCase
	GetPacket     queries.GetPacketUseCase
	ListPackets   queries.ListPacketsUseCase
	ListClaims    queries.ListClaimsUseCase
	Clock         ports.Clock
	Logger        *slog.Logger
}

func (h Handler) CreatePacketHandler(
	ctx context.Context,
	creator string,
	req httptransport.CreatePacketRequest,
) (httptransport.PacketResponse, error) {
	issuerKey, err := decodeHex(req.IssuerKey)
	if err != nil {
		return httptransport.PacketResponse{}, domainerrors.ErrInvalidIssuerKey
	}
	createTime := h.now()
	if strings.TrimSpace(req.CreateTime) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(req.CreateTime))
		if err != nil {
			return httptransport.PacketResponse{}, domainerrors.ErrInvalidCreateTime
		}
		createTime = parsed
	}
	duration, err := durationFromSeconds(req.DurationSeconds)
	if err != nil {
		return httptransport.PacketResponse{}, err
	}
	asset, err := assetFromDTO(req.Asset)
	if err != nil {
		return httptransport.PacketResponse{}, err
	}

	packet, err := h.CreatePacket.Execute(ctx, commands.CreatePacketCommand{
		Creator:     creator,
		TotalNumber: req.TotalNumber,
		TotalAmount: req.TotalAmount,
		CreateTime:  createTime,
		Duration:    duration,
		SplitMode:   entities.SplitMode(strings.ToLower(strings.TrimSpace(req.SplitMode))),
		IssuerKey:   issuerKey,
		Asset:       asset,
		Name:        req.Name,
		Message:     req.Message,
	})
	if err != nil {
		return httptransport.PacketResponse{}, err
	}
	return httptransport.PacketResponse{
		Status: "success",
		Data:   toPacketDTO(packet, packet.State(h.now())),
	}, nil
}

func (h Handler) ClaimPacketHandler(
	ctx context.Context,
	claimant string,
	packetID string,
	req httptransport.ClaimPacketRequest,
) (httptransport.ClaimPacketResponse, error) {
	id, err := entities.ParsePacketID(packetID)
	if err != nil {
		return httptransport.ClaimPacketResponse{}, err
	}
	claimant = strings.TrimSpace(claimant)
	publicKey, err := decodeHex(req.PublicKey)
	if err != nil {
		return httptransport.ClaimPacketResponse{}, domainerrors.ErrInvalidSignature
	}
	signature, err := decodeHex(req.Signature)
	if err != nil {
		return httptransport.ClaimPacketResponse{}, domainerrors.ErrInvalidSignature
	}
	message := services.ClaimMessage(id, claimant)
	if strings.TrimSpace(req.Message) != "" {
		message, err = decodeHex(req.Message)
		if err != nil {
			return httptransport.ClaimPacketResponse{}, domainerrors.ErrInvalidSignature
		}
	}

	result, err := h.ClaimPacket.Execute(ctx, commands.ClaimPacketCommand{
		PacketID: id,
		Claimant: claimant,
		Proof: entities.ClaimProof{
			PublicKey: publicKey,
			Message:   message,
			Signature: signature,
		},
	})
	if err != nil {
		return httptransport.ClaimPacketResponse{}, err
	}

	resp := httptransport.ClaimPacketResponse{Status: "success"}
	resp.Data.PacketID = result.Packet.ID.String()
	resp.Data.Claimant = claimant
	resp.Data.Amount = result.Amount
	resp.Data.AmountDisplay = DisplayAmount(result.Amount, result.Packet.Asset.Decimals)
	resp.Data.Packet = toPacketDTO(result.Packet, result.Packet.State(h.now()))
	return resp, nil
}

func (h Handler) ReclaimPacketHandler(
	ctx context.Context,
	caller string,
	packetID string,
) (httptransport.ReclaimPacketResponse, error) {
	id, err := entities.ParsePacketID(packetID)
	if err != nil {
		return httptransport.ReclaimPacketResponse{}, err
	}
	result, err := h.ReclaimPacket.Execute(ctx, commands.ReclaimPacketCommand{
		PacketID: id,
		Caller:   caller,
	})
	if err != nil {
		return httptransport.ReclaimPacketResponse{}, err
	}

	resp := httptransport.ReclaimPacketResponse{Status: "success"}
	resp.Data.PacketID = result.Packet.ID.String()
	resp.Data.Returned = result.Returned
	resp.Data.ReturnedDisplay = DisplayAmount(result.Returned, result.Packet.Asset.Decimals)
	resp.Data.Packet = toPacketDTO(result.Packet, result.Packet.State(h.now()))
	return resp, nil
}

func (h Handler) GetPacketHandler(ctx context.Context, packetID string) (httptransport.PacketResponse, error) {
	id, err := entities.ParsePacketID(packetID)
	if err != nil {
		return httptransport.PacketResponse{}, err
	}
	view, err := h.GetPacket.Execute(ctx, id)
	if err != nil {
		return httptransport.PacketResponse{}, err
	}
	return httptransport.PacketResponse{
		Status: "success",
		Data:   toPacketDTO(view.Packet, view.State),
	}, nil
}

func (h Handler) ListPacketsHandler(
	ctx context.Context,
	req httptransport.ListPacketsRequest,
) (httptransport.ListPacketsResponse, error) {
	items, err := h.ListPackets.Execute(ctx, queries.ListPacketsQuery{
		Creator: req.Creator,
		Limit:   req.Limit,
		Offset:  req.Offset,
	})
	if err != nil {
		return httptransport.ListPacketsResponse{}, err
	}
	resp := httptransport.ListPacketsResponse{
		Status: "success",
		Data:   make([]httptransport.PacketDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toPacketDTO(item.Packet, item.State))
	}
	return resp, nil
}

func (h Handler) ListClaimsHandler(ctx context.Context, packetID string) (httptransport.ListClaimsResponse, error) {
	id, err := entities.ParsePacketID(packetID)
	if err != nil {
		return httptransport.ListClaimsResponse{}, err
	}
	view, err := h.GetPacket.Execute(ctx, id)
	if err != nil {
		return httptransport.ListClaimsResponse{}, err
	}
	claims, err := h.ListClaims.Execute(ctx, id)
	if err != nil {
		return httptransport.ListClaimsResponse{}, err
	}
	resp := httptransport.ListClaimsResponse{
		Status: "success",
		Data:   make([]httptransport.ClaimDTO, 0, len(claims)),
	}
	for _, claim := range claims {
		resp.Data = append(resp.Data, httptransport.ClaimDTO{
			Claimant:      claim.Claimant,
			Amount:        claim.Amount,
			AmountDisplay: DisplayAmount(claim.Amount, view.Packet.Asset.Decimals),
			ClaimedAt:     claim.ClaimedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (h Handler) now() time.Time {
	if h.Clock == nil {
		return time.Now().UTC()
	}
	return h.Clock.Now().UTC()
}

// DisplayAmount renders base units as a fixed-point string with the asset's
// decimal places, e.g. 1500 units at 3 decimals is "1.500".
func DisplayAmount(units uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -decimals).StringFixed(decimals)
}

func toPacketDTO(packet entities.Packet, state entities.State) httptransport.PacketDTO {
	dto := httptransport.PacketDTO{
		PacketID:               packet.ID.String(),
		Creator:                packet.Creator,
		IssuerKey:              hex.EncodeToString(packet.IssuerKey),
		CreateTime:             packet.CreateTime.UTC().Format(time.RFC3339),
		ExpiresAt:              packet.Expiry().UTC().Format(time.RFC3339),
		DurationSeconds:        int64(packet.Duration / time.Second),
		TotalNumber:            packet.TotalNumber,
		TotalAmount:            packet.TotalAmount,
		TotalAmountDisplay:     DisplayAmount(packet.TotalAmount, packet.Asset.Decimals),
		ClaimedNumber:          packet.ClaimedNumber,
		ClaimedAmount:          packet.ClaimedAmount,
		ClaimedAmountDisplay:   DisplayAmount(packet.ClaimedAmount, packet.Asset.Decimals),
		RemainingAmount:        packet.RemainingAmount(),
		RemainingAmountDisplay: DisplayAmount(packet.RemainingAmount(), packet.Asset.Decimals),
		Asset: httptransport.AssetDTO{
			Kind:     string(packet.Asset.Kind),
			ID:       packet.Asset.ID,
			Decimals: packet.Asset.Decimals,
		},
		SplitMode:      string(packet.SplitMode),
		WithdrawStatus: string(packet.WithdrawStatus),
		State:          string(state),
		Name:           packet.Name,
		Message:        packet.Message,
		UpdatedAt:      packet.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if packet.WithdrawnAt != nil {
		dto.WithdrawnAt = packet.WithdrawnAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func assetFromDTO(dto httptransport.AssetDTO) (entities.Asset, error) {
	switch entities.AssetKind(strings.ToLower(strings.TrimSpace(dto.Kind))) {
	case entities.AssetKindNative, "":
		return entities.NativeAsset(dto.Decimals), nil
	case entities.AssetKindFungibleToken:
		return entities.TokenAsset(dto.ID, dto.Decimals), nil
	default:
		return entities.Asset{}, domainerrors.ErrInvalidAsset
	}
}

// durationFromSeconds rejects windows that are not positive or that overflow time.Duration.
func durationFromSeconds(seconds int64) (time.Duration, error) {
	if seconds <= 0 || seconds > math.MaxInt64/int64(time.Second) {
		return 0, domainerrors.ErrInvalidExpiryTime
	}
	return time.Duration(seconds) * time.Second, nil
}

func decodeHex(raw string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
}
