package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AssetDTO struct {
	Kind     string `json:"kind"`
	ID       string `json:"id,omitempty"`
	Decimals int32  `json:"decimals"`
}

type CreatePacketRequest struct {
	TotalNumber     int      `json:"total_number"`
	TotalAmount     uint64   `json:"total_amount"`
	CreateTime      string   `json:"create_time,omitempty"`
	DurationSeconds int64    `json:"duration_seconds"`
	SplitMode       string   `json:"split_mode"`
	IssuerKey       string   `json:"issuer_key"`
	Asset           AssetDTO `json:"asset"`
	Name            string   `json:"name,omitempty"`
	Message         string   `json:"message,omitempty"`
}

// ClaimPacketRequest carries the issuer proof as hex strings. Message may be
// omitted, in which case the canonical claim message is verified.
type ClaimPacketRequest struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
	Message   string `json:"message,omitempty"`
}

type PacketDTO struct {
	PacketID               string   `json:"packet_id"`
	Creator                string   `json:"creator"`
	IssuerKey              string   `json:"issuer_key"`
	CreateTime             string   `json:"create_time"`
	ExpiresAt              string   `json:"expires_at"`
	DurationSeconds        int64    `json:"duration_seconds"`
	TotalNumber            int      `json:"total_number"`
	TotalAmount            uint64   `json:"total_amount"`
	TotalAmountDisplay     string   `json:"total_amount_display"`
	ClaimedNumber          int      `json:"claimed_number"`
	ClaimedAmount          uint64   `json:"claimed_amount"`
	ClaimedAmountDisplay   string   `json:"claimed_amount_display"`
	RemainingAmount        uint64   `json:"remaining_amount"`
	RemainingAmountDisplay string   `json:"remaining_amount_display"`
	Asset                  AssetDTO `json:"asset"`
	SplitMode              string   `json:"split_mode"`
	WithdrawStatus         string   `json:"withdraw_status"`
	State                  string   `json:"state"`
	Name                   string   `json:"name,omitempty"`
	Message                string   `json:"message,omitempty"`
	WithdrawnAt            string   `json:"withdrawn_at,omitempty"`
	UpdatedAt              string   `json:"updated_at"`
}

type ClaimDTO struct {
	Claimant      string `json:"claimant"`
	Amount        uint64 `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	ClaimedAt     string `json:"claimed_at"`
}

type PacketResponse struct {
	Status string    `json:"status"`
	Data   PacketDTO `json:"data"`
}

type ListPacketsRequest struct {
	Creator string
	Limit   int
	Offset  int
}

type ListPacketsResponse struct {
	Status string      `json:"status"`
	Data   []PacketDTO `json:"data"`
}

type ClaimPacketResponse struct {
	Status string `json:"status"`
	Data   struct {
		PacketID      string    `json:"packet_id"`
		Claimant      string    `json:"claimant"`
		Amount        uint64    `json:"amount"`
		AmountDisplay string    `json:"amount_display"`
		Packet        PacketDTO `json:"packet"`
	} `json:"data"`
}

type ReclaimPacketResponse struct {
	Status string `json:"status"`
	Data   struct {
		PacketID        string    `json:"packet_id"`
		Returned        uint64    `json:"returned"`
		ReturnedDisplay string    `json:"returned_display"`
		Packet          PacketDTO `json:"packet"`
	} `json:"data"`
}

type ListClaimsResponse struct {
	Status string     `json:"status"`
	Data   []ClaimDTO `json:"data"`
}
