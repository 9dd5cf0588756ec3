// Package packetservice implements red packets: a creator escrows a fixed
// amount of one asset into a packet vault, up to TotalNumber principals
// holding an issuer signature each claim one share, and after expiry the
// creator reclaims whatever is left.
//
// Shares follow the packet split mode. Equal packets pay floor(total/number)
// and the final claim absorbs the remainder; random packets draw each share
// from a bounded window that always leaves one unit for every later slot.
// Every create, claim and reclaim commits the packet record, the ledger
// movements and an outbox event as one unit.
package packetservice
