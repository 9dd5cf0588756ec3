package blake2badapter

import (
	"encoding/binary"
	"strings"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"

	"golang.org/x/crypto/blake2b"
)

// Deriver derives packet ids as BLAKE2b-256(creator || le_u64(unix seconds)).
// The create time occupies a fixed width suffix, so no separator is needed.
type Deriver struct{}

func (Deriver) DerivePacketID(creator string, createTime time.Time) entities.PacketID {
	creator = strings.TrimSpace(creator)
	seed := make([]byte, 0, len(creator)+8)
	seed = append(seed, creator...)
	seed = binary.LittleEndian.AppendUint64(seed, uint64(createTime.Unix()))
	return entities.PacketID(blake2b.Sum256(seed))
}
