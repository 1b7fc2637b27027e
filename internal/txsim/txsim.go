// Package txsim synthesizes deterministic transaction histories for wallet
// addresses.
//
// In production this would query the Algorand indexer for real activity; the
// demo generates a reproducible pattern instead, keyed on the address string,
// so the same wallet always scores the same. Pattern selection is an ordered
// substring match: MULE, HUB, STU, GOVT, then a small default history.
package txsim

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strings"
)

// Transaction is a single simulated transfer. Generated per request and
// never persisted.
type Transaction struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   int64  `json:"amount"`
}

// HubCollector is the sink address mule wallets drain into.
const HubCollector = "HUB_COLLECTOR_01"

// ScholarshipDept is the source address for student stipend payments.
const ScholarshipDept = "GOVT_SCHOLARSHIP_DEPT"

// Seed derives the PRNG seed from a stable hash of the address: the low
// 32 bits (big-endian) of its MD5 digest. Restarting the process must not
// change a wallet's history.
func Seed(address string) int64 {
	sum := md5.Sum([]byte(address))
	return int64(binary.BigEndian.Uint32(sum[12:16]))
}

// Simulate returns the transaction history for the given wallet address.
// Calls with the same address always return the same list.
func Simulate(address string) []Transaction {
	rng := rand.New(rand.NewSource(Seed(address)))

	switch {
	case strings.Contains(address, "MULE"):
		// Structuring pattern: many small outbound transfers to the hub.
		n := randRange(rng, 15, 30)
		txns := make([]Transaction, n)
		for i := range txns {
			txns[i] = Transaction{
				Sender:   address,
				Receiver: HubCollector,
				Amount:   int64(randRange(rng, 100, 500)),
			}
		}
		return txns

	case strings.Contains(address, "HUB"):
		// Collector pattern: heavy inbound from rotating mules.
		n := randRange(rng, 20, 40)
		txns := make([]Transaction, n)
		for i := range txns {
			txns[i] = Transaction{
				Sender:   fmt.Sprintf("MULE_%d", i%10),
				Receiver: address,
				Amount:   int64(randRange(rng, 100, 500)),
			}
		}
		return txns

	case strings.Contains(address, "STU"):
		// Student pattern: a few larger stipend deposits.
		n := randRange(rng, 1, 5)
		txns := make([]Transaction, n)
		for i := range txns {
			txns[i] = Transaction{
				Sender:   ScholarshipDept,
				Receiver: address,
				Amount:   int64(randRange(rng, 1000, 5000)),
			}
		}
		return txns

	case strings.Contains(address, "GOVT"):
		// Disbursement pattern: many outbound stipends to students.
		n := randRange(rng, 40, 60)
		txns := make([]Transaction, n)
		for i := range txns {
			txns[i] = Transaction{
				Sender:   address,
				Receiver: fmt.Sprintf("STU_%d", i%50),
				Amount:   int64(randRange(rng, 1000, 5000)),
			}
		}
		return txns

	default:
		n := randRange(rng, 1, 3)
		txns := make([]Transaction, n)
		for i := range txns {
			txns[i] = Transaction{
				Sender:   address,
				Receiver: "UNKNOWN_RECIPIENT",
				Amount:   int64(randRange(rng, 100, 1000)),
			}
		}
		return txns
	}
}

// randRange draws an integer in [lo, hi] inclusive.
func randRange(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}
