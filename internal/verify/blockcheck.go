package verify

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/opendav/da-verifier/internal/verrors"
)

// closestBlock implements spec §4.6 step 6: among the three blocks
// surrounding the claimed block number, find the one whose timestamp is
// closest to (but not after) the receipt timestamp.
func (v *Verifier) closestBlock(ctx context.Context, claimed uint64, receiptTimestampMs int64) (*types.Block, error) {
	var candidates []uint64
	if claimed > 0 {
		candidates = append(candidates, claimed-1)
	}
	candidates = append(candidates, claimed, claimed+1)

	blocks := make([]*types.Block, 0, len(candidates))
	for _, num := range candidates {
		b, err := v.chain.GetBlock(ctx, new(big.Int).SetUint64(num))
		if err != nil {
			return nil, verrors.New(verrors.KindBlockCantBeReadFromNode, err)
		}
		blocks = append(blocks, b)
	}

	var best *types.Block
	var bestDiff int64 = -1
	for _, b := range blocks {
		ts := int64(b.Time()) * 1000
		if ts > receiptTimestampMs {
			continue
		}
		diff := receiptTimestampMs - ts
		if best == nil || b.NumberU64() > best.NumberU64() {
			best = b
			bestDiff = diff
		}
	}
	if best == nil {
		// Every candidate is after the receipt timestamp: fall back to
		// the smallest absolute difference among all candidates.
		for _, b := range blocks {
			ts := int64(b.Time()) * 1000
			diff := ts - receiptTimestampMs
			if diff < 0 {
				diff = -diff
			}
			if best == nil || diff < bestDiff {
				best = b
				bestDiff = diff
			}
		}
	}

	return best, nil
}
