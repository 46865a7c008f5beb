package pipeline

import (
	"context"
	"fmt"

	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verrors"
)

// fetchSummaries bulk-fetches and decodes ids, splitting the batch into
// successfully decoded summaries and per-id failures. A transport-level
// failure of the bulk-fetch call itself is treated as every id in the
// batch failing the same way.
func (p *Pipeline) fetchSummaries(ctx context.Context, ids []record.Id) (map[record.Id]*record.Summary, map[record.Id]error) {
	summaries := make(map[record.Id]*record.Summary)
	failures := make(map[record.Id]error)

	res, err := p.da.BulkFetch(ctx, ids)
	if err != nil {
		for _, id := range ids {
			failures[id] = err
		}
		return summaries, failures
	}

	for id, reason := range res.Failed {
		failures[id] = verrors.New(verrors.KindInvalidTransactionFormat, fmt.Errorf("bundler reported failure: %s", reason))
	}
	for _, item := range res.Success {
		pub, err := record.Decode(item.DataBase64)
		if err != nil {
			failures[item.Id] = err
			continue
		}
		summaries[item.Id] = &record.Summary{Id: item.Id, Publication: pub, Submitter: item.Owner}
	}
	return summaries, failures
}

// fetchOne fetches and decodes a single record, used for the
// below-threshold lazy pointer fetch path.
func (p *Pipeline) fetchOne(ctx context.Context, id record.Id) (*record.Summary, error) {
	summaries, failures := p.fetchSummaries(ctx, []record.Id{id})
	if err, ok := failures[id]; ok {
		return nil, err
	}
	s, ok := summaries[id]
	if !ok {
		return nil, verrors.New(verrors.KindCannotConnectToBundler, fmt.Errorf("record %s not returned by bundler", id))
	}
	p.attachEchoes(ctx, map[record.Id]*record.Summary{id: s})
	return s, nil
}

// attachEchoes bulk-fetches each summary's companion TimestampProofsEcho
// record (spec §4.7 step 2) and attaches it in place.
func (p *Pipeline) attachEchoes(ctx context.Context, summaries map[record.Id]*record.Summary) {
	if len(summaries) == 0 {
		return
	}

	seen := make(map[record.Id]bool, len(summaries))
	var echoIds []record.Id
	for _, s := range summaries {
		eid := record.EchoRecordId(s.Publication)
		if eid == "" || seen[eid] {
			continue
		}
		seen[eid] = true
		echoIds = append(echoIds, eid)
	}
	if len(echoIds) == 0 {
		return
	}

	res, err := p.da.BulkFetch(ctx, echoIds)
	if err != nil {
		// Leave TimestampProofsEcho nil; the per-record echo consistency
		// step will fail with TimestampProofInvalidDAID for these records.
		return
	}

	decoded := make(map[record.Id]*record.TimestampProofsEcho, len(res.Success))
	for _, item := range res.Success {
		echo, err := record.DecodeEcho(item.DataBase64)
		if err != nil {
			continue
		}
		decoded[item.Id] = echo
	}

	for _, s := range summaries {
		eid := record.EchoRecordId(s.Publication)
		if echo, ok := decoded[eid]; ok {
			s.TimestampProofsEcho = echo
		}
	}
}

// prefetchPointers implements spec §4.7 step 3: above the
// pointer-bearing-record threshold, bulk-fetch every distinct pointer
// target up front instead of lazily, one at a time, during verification.
func (p *Pipeline) prefetchPointers(ctx context.Context, summaries map[record.Id]*record.Summary) {
	seen := make(map[record.Id]bool)
	var pointerIds []record.Id
	pointerBearing := 0

	for _, s := range summaries {
		ptr := pointerOf(s.Publication)
		if ptr == nil {
			continue
		}
		pointerBearing++
		pid := record.RecordIdFromPointer(*ptr)
		if !seen[pid] {
			seen[pid] = true
			pointerIds = append(pointerIds, pid)
		}
	}

	if pointerBearing <= pointerBulkThreshold || len(pointerIds) == 0 {
		return
	}

	fetched, _ := p.fetchSummaries(ctx, pointerIds)
	p.attachEchoes(ctx, fetched)

	for _, s := range summaries {
		ptr := pointerOf(s.Publication)
		if ptr == nil {
			continue
		}
		pid := record.RecordIdFromPointer(*ptr)
		if fs, ok := fetched[pid]; ok {
			s.PointerSummary = fs
		}
	}
}
