package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verrors"
)

// Run is the driver-facing steady-state loop (spec §4.7's tail mode): it
// repeatedly pages the DA service for new ids since the last cursor,
// dedups within a page, and hands the page to VerifyMany. It returns
// only on a batch-level (not per-record) failure or ctx cancellation.
func (p *Pipeline) Run(ctx context.Context, resync bool) error {
	var cursor record.Cursor
	if !resync {
		c, err := p.da.LatestCursor(ctx, p.owners)
		switch {
		case err == nil:
			cursor = c
		case errors.Is(err, verrors.ErrNoLastTransactionFound):
			// No prior records for these owners; start from the beginning.
		default:
			return err
		}
	}

	for {
		ids, next, err := p.da.BulkIdsSince(ctx, p.owners, cursor, maxPagesPerTick)
		if err != nil {
			return err
		}

		if len(ids) == 0 {
			select {
			case <-time.After(emptyPageSleep):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		cursor = next
		p.VerifyMany(ctx, dedupeIds(ids))
	}
}

func dedupeIds(ids []record.Id) []record.Id {
	seen := make(map[record.Id]bool, len(ids))
	out := make([]record.Id, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
