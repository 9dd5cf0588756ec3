package commands

import (
	"encoding/json"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	"redpacket/contexts/finance-core/packet-service/ports"
)

func newPacketEnvelope(
	eventID string,
	eventType string,
	packetID entities.PacketID,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "packet-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "packet_id",
		PartitionKey:     packetID.String(),
		Data:             payload,
	}, nil
}
