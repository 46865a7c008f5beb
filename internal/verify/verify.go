// Package verify implements the Record Verifier (spec §4.6): the
// per-record state machine that checks a DA record's submitter
// signature, its generated id, its timestamp invariants, its claimed
// block's closeness to the bundler's receipt, and finally replays the
// action against historical chain state.
package verify

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/opendav/da-verifier/internal/chain"
	"github.com/opendav/da-verifier/internal/config"
	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/tsproof"
	"github.com/opendav/da-verifier/internal/verrors"
)

// Verifier runs the ordered step chain of spec §4.6 against a single
// enriched record.Summary.
type Verifier struct {
	chain      *chain.Client
	hubAddress common.Address
	env        config.Environment
	deployment config.Deployment
}

// New builds a Verifier bound to chainClient and the hub contract at
// hubAddress, checking submitters against (env, deployment).
func New(chainClient *chain.Client, hubAddress common.Address, env config.Environment, deployment config.Deployment) *Verifier {
	return &Verifier{chain: chainClient, hubAddress: hubAddress, env: env, deployment: deployment}
}

// Verify runs spec §4.6 steps 1-8 against s, terminating at the first
// failing step. It does not recurse into s.PointerSummary — the pointer
// chain is the pipeline's responsibility (spec §4.7 step 4a), so s must
// already carry PointerSummary/TimestampProofsEcho when they're needed.
func (v *Verifier) Verify(ctx context.Context, s *record.Summary) error {
	pub := s.Publication
	common_ := pub.CommonFields()

	// Step 1: submitter recovery over the canonicalized publication.
	submitter, err := RecoverSubmitter(pub)
	if err != nil {
		return err
	}
	if !config.IsSubmitter(v.env, v.deployment, submitter) {
		return verrors.New(verrors.KindInvalidSignatureSubmitter, fmt.Errorf("recovered signer %s is not a whitelisted submitter", submitter))
	}

	// Step 2: generated-id check.
	ev := eventIds(pub)
	wantId := record.FormatPublicationId(ev.profileId, ev.pubId, common_.DataAvailabilityId)
	if wantId != common_.PublicationId {
		return verrors.New(verrors.KindGeneratedPublicationIdMismatch, fmt.Errorf("want %s, got %s", wantId, common_.PublicationId))
	}

	// Step 3: echo-submitter check.
	if !config.IsSubmitter(v.env, v.deployment, s.Submitter) {
		return verrors.New(verrors.KindTimestampProofNotSubmitter, fmt.Errorf("bundler-reported owner %s is not a whitelisted submitter", s.Submitter))
	}

	cp := common_.ChainProofs.ThisPublication

	// Step 4: event timestamp check.
	if uint64(ev.timestamp) != uint64(cp.BlockTimestamp) {
		return verrors.New(verrors.KindInvalidEventTimestamp, fmt.Errorf("event timestamp %d != block timestamp %d", ev.timestamp, cp.BlockTimestamp))
	}

	// Step 5: deadline timestamp check.
	if cp.TypedData.Value.Deadline.Cmp(big.NewInt(int64(cp.BlockTimestamp))) != 0 {
		return verrors.New(verrors.KindInvalidTypedDataDeadlineTimestamp, fmt.Errorf("deadline %s != block timestamp %d", cp.TypedData.Value.Deadline.String(), cp.BlockTimestamp))
	}

	// Step 6: block closeness check.
	receiptTsMs := common_.TimestampProofs.Response.Timestamp
	claimed := uint64(cp.BlockNumber)
	chosen, err := v.closestBlock(ctx, claimed, receiptTsMs)
	if err != nil {
		return err
	}
	if chosen.NumberU64() != claimed && chosen.NumberU64() != claimed+1 {
		return verrors.New(verrors.KindNotClosestBlock, fmt.Errorf("closest block %d is neither %d nor %d", chosen.NumberU64(), claimed, claimed+1))
	}

	// Step 7: timestamp-proof echo consistency, then invoke the
	// timestamp-proof verifier on the embedded receipt.
	if s.TimestampProofsEcho == nil {
		return verrors.New(verrors.KindTimestampProofInvalidDAID, fmt.Errorf("no echo record attached"))
	}
	if s.TimestampProofsEcho.ActionType != common_.PublicationType {
		return verrors.New(verrors.KindTimestampProofInvalidType, fmt.Errorf("echo action type %s != %s", s.TimestampProofsEcho.ActionType, common_.PublicationType))
	}
	if s.TimestampProofsEcho.DataAvailabilityId != common_.DataAvailabilityId {
		return verrors.New(verrors.KindTimestampProofInvalidDAID, fmt.Errorf("echo da id %s != %s", s.TimestampProofsEcho.DataAvailabilityId, common_.DataAvailabilityId))
	}
	if err := tsproof.Verify(common_.TimestampProofs.Response); err != nil {
		return err
	}

	// Step 8: action-specific validation.
	switch p := pub.(type) {
	case *record.PostCreated:
		return v.verifyPost(ctx, p)
	case *record.CommentCreated:
		return v.verifyComment(ctx, p)
	case *record.MirrorCreated:
		return v.verifyMirror(ctx, p)
	default:
		return verrors.New(verrors.KindInvalidTransactionType, fmt.Errorf("unknown publication type %T", pub))
	}
}

type eventIdPair struct {
	profileId *big.Int
	pubId     *big.Int
	timestamp uint64
}

func eventIds(pub record.Publication) eventIdPair {
	switch p := pub.(type) {
	case *record.PostCreated:
		return eventIdPair{p.Event.ProfileId.Int, p.Event.PubId.Int, uint64(p.Event.Timestamp)}
	case *record.CommentCreated:
		return eventIdPair{p.Event.ProfileId.Int, p.Event.PubId.Int, uint64(p.Event.Timestamp)}
	case *record.MirrorCreated:
		return eventIdPair{p.Event.ProfileId.Int, p.Event.PubId.Int, uint64(p.Event.Timestamp)}
	default:
		return eventIdPair{big.NewInt(0), big.NewInt(0), 0}
	}
}

type chainMulticallItem = chain.MulticallItem

func (v *Verifier) multicall(ctx context.Context, items []chainMulticallItem, blockNum *big.Int) ([]chainMulticallResult, error) {
	results, err := v.chain.Multicall(ctx, items, blockNum)
	if err != nil {
		return nil, err
	}
	out := make([]chainMulticallResult, len(results))
	for i, r := range results {
		out[i] = chainMulticallResult{Success: r.Success, ReturnData: r.ReturnData}
	}
	return out, nil
}

type chainMulticallResult struct {
	Success    bool
	ReturnData []byte
}

func unpackBigInt(parsed *abi.ABI, method string, data []byte) (*big.Int, error) {
	out, err := parsed.Unpack(method, data)
	if err != nil || len(out) == 0 {
		return nil, verrors.New(verrors.KindSimulationNodeCouldNotRun, fmt.Errorf("unpack %s: %w", method, err))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, verrors.New(verrors.KindSimulationNodeCouldNotRun, fmt.Errorf("unpack %s: unexpected type %T", method, out[0]))
	}
	return v, nil
}

func unpackAddress(parsed *abi.ABI, method string, data []byte) (common.Address, error) {
	out, err := parsed.Unpack(method, data)
	if err != nil || len(out) == 0 {
		return common.Address{}, verrors.New(verrors.KindSimulationNodeCouldNotRun, fmt.Errorf("unpack %s: %w", method, err))
	}
	v, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, verrors.New(verrors.KindSimulationNodeCouldNotRun, fmt.Errorf("unpack %s: unexpected type %T", method, out[0]))
	}
	return v, nil
}
