package verify

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/opendav/da-verifier/internal/hubabi"
	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verrors"
)

func isEmptyBytes(b hexutil.Bytes) bool { return len(b) == 0 }

// verifyPost implements spec §4.6a.
func (v *Verifier) verifyPost(ctx context.Context, p *record.PostCreated) error {
	cp := p.ChainProofs
	if cp.Pointer != nil {
		return verrors.New(verrors.KindInvalidPointerSetNotNeeded, nil)
	}

	td := cp.ThisPublication.TypedData
	sig := []byte(cp.ThisPublication.Signature)
	signer, err := RecoverPostSigner(td, sig)
	if err != nil {
		return verrors.New(verrors.KindInvalidFormattedTypedData, err)
	}

	blockNum := new(big.Int).SetUint64(uint64(cp.ThisPublication.BlockNumber))

	vByte, r, s, err := splitSignature(sig)
	if err != nil {
		return verrors.New(verrors.KindInvalidFormattedTypedData, err)
	}

	vars := hubabi.PostWithSigVars{
		ProfileId:               td.Value.ProfileId.Int,
		ContentURI:              td.Value.ContentURI,
		CollectModule:           td.Value.CollectModule,
		CollectModuleInitData:   []byte(td.Value.CollectModuleInitData),
		ReferenceModule:         td.Value.ReferenceModule,
		ReferenceModuleInitData: []byte(td.Value.ReferenceModuleInitData),
		Sig: hubabi.Sig{
			V:        vByte,
			R:        r,
			S:        s,
			Deadline: td.Value.Deadline.Int,
		},
	}

	var calldata []byte
	if cp.ThisPublication.SignedByDelegate {
		calldata, err = hubabi.PackPostWithSigDispatcher(vars)
	} else {
		calldata, err = hubabi.PackPostWithSig(vars)
	}
	if err != nil {
		return verrors.New(verrors.KindSimulationNodeCouldNotRun, err)
	}

	simResult, err := v.chain.Simulate(ctx, calldata, blockNum)
	if err != nil {
		return err
	}

	pubCount, err := v.chain.PubCount(ctx, td.Value.ProfileId.Int)
	if err != nil {
		return err
	}
	expected := new(big.Int).Add(pubCount, big.NewInt(1))

	if !simResult.Simulated {
		if _, err := v.chain.GetBlockByHash(ctx, cp.ThisPublication.BlockHash); err == nil {
			return verrors.New(verrors.KindSimulationFailed, fmt.Errorf("postWithSig simulation reverted: %s", simResult.Revert))
		}
		return verrors.New(verrors.KindPotentialReorg, fmt.Errorf("block %s no longer resolvable", cp.ThisPublication.BlockHash))
	}

	ev := p.Event
	if ev.PubId.Cmp(expected) != 0 {
		return verrors.New(verrors.KindEventMismatch, fmt.Errorf("event pubId %s != expected %s", ev.PubId.String(), expected.String()))
	}
	if ev.ProfileId.Cmp(td.Value.ProfileId.Int) != 0 ||
		ev.ContentURI != td.Value.ContentURI ||
		ev.CollectModule != td.Value.CollectModule ||
		ev.ReferenceModule != td.Value.ReferenceModule {
		return verrors.New(verrors.KindEventMismatch, fmt.Errorf("event fields diverge from typed data"))
	}
	if !isEmptyBytes(ev.CollectModuleReturnData) || !isEmptyBytes(ev.ReferenceModuleReturnData) ||
		!isEmptyBytes(td.Value.CollectModuleInitData) || !isEmptyBytes(td.Value.ReferenceModuleInitData) {
		return verrors.New(verrors.KindEventMismatch, fmt.Errorf("expected empty return/init data for a fresh post"))
	}

	_ = signer // recovered only to reject malformed typed data; it is not compared, and Simulate sets no sender on the eth_call
	return nil
}

// verifyComment implements spec §4.6b.
func (v *Verifier) verifyComment(ctx context.Context, c *record.CommentCreated) error {
	if err := requirePointer(c.ChainProofs.Pointer); err != nil {
		return err
	}

	td := c.ChainProofs.ThisPublication.TypedData
	sig := []byte(c.ChainProofs.ThisPublication.Signature)
	signer, err := RecoverCommentSigner(td, sig)
	if err != nil {
		return verrors.New(verrors.KindInvalidFormattedTypedData, err)
	}

	blockNum := new(big.Int).SetUint64(uint64(c.ChainProofs.ThisPublication.BlockNumber))

	sigNonces, pubCount, dispatcher, owner, err := v.profileMulticall(ctx, signer, td.Value.ProfileId.Int, blockNum)
	if err != nil {
		return err
	}

	if sigNonces.Cmp(td.Value.Nonce.Int) != 0 || !(dispatcher == signer || owner == signer) {
		return verrors.New(verrors.KindPublicationNonceInvalid, fmt.Errorf("nonce/signer mismatch for comment"))
	}

	expected := new(big.Int).Add(pubCount, big.NewInt(1))
	ev := c.Event
	if ev.PubId.Cmp(expected) != 0 {
		return verrors.New(verrors.KindEventMismatch, fmt.Errorf("event pubId %s != expected %s", ev.PubId.String(), expected.String()))
	}
	if ev.ProfileId.Cmp(td.Value.ProfileId.Int) != 0 ||
		ev.ContentURI != td.Value.ContentURI ||
		ev.ProfileIdPointed.Cmp(td.Value.ProfileIdPointed.Int) != 0 ||
		ev.PubIdPointed.Cmp(td.Value.PubIdPointed.Int) != 0 ||
		ev.CollectModule != td.Value.CollectModule ||
		ev.ReferenceModule != td.Value.ReferenceModule {
		return verrors.New(verrors.KindEventMismatch, fmt.Errorf("event fields diverge from typed data"))
	}
	if !isEmptyBytes(ev.ReferenceModuleData) || !isEmptyBytes(td.Value.ReferenceModuleInitData) ||
		!isEmptyBytes(td.Value.CollectModuleInitData) ||
		!isEmptyBytes(ev.CollectModuleReturnData) || !isEmptyBytes(ev.ReferenceModuleReturnData) {
		return verrors.New(verrors.KindEventMismatch, fmt.Errorf("expected empty return/init data for a fresh comment"))
	}

	return nil
}

// verifyMirror implements spec §4.6c.
func (v *Verifier) verifyMirror(ctx context.Context, m *record.MirrorCreated) error {
	if err := requirePointer(m.ChainProofs.Pointer); err != nil {
		return err
	}

	td := m.ChainProofs.ThisPublication.TypedData
	sig := []byte(m.ChainProofs.ThisPublication.Signature)
	signer, err := RecoverMirrorSigner(td, sig)
	if err != nil {
		return verrors.New(verrors.KindInvalidFormattedTypedData, err)
	}

	blockNum := new(big.Int).SetUint64(uint64(m.ChainProofs.ThisPublication.BlockNumber))

	sigNonces, pubCount, dispatcher, owner, err := v.profileMulticall(ctx, signer, td.Value.ProfileId.Int, blockNum)
	if err != nil {
		return err
	}

	if sigNonces.Cmp(td.Value.Nonce.Int) != 0 {
		return verrors.New(verrors.KindPublicationNonceInvalid, fmt.Errorf("nonce mismatch for mirror"))
	}
	if !(dispatcher == signer || owner == signer) {
		return verrors.New(verrors.KindPublicationSignerNotAllowed, fmt.Errorf("signer %s is neither dispatcher nor owner", signer))
	}

	expected := new(big.Int).Add(pubCount, big.NewInt(1))
	ev := m.Event
	if ev.PubId.Cmp(expected) != 0 {
		return verrors.New(verrors.KindEventMismatch, fmt.Errorf("event pubId %s != expected %s", ev.PubId.String(), expected.String()))
	}
	if ev.ProfileId.Cmp(td.Value.ProfileId.Int) != 0 ||
		ev.ProfileIdPointed.Cmp(td.Value.ProfileIdPointed.Int) != 0 ||
		ev.PubIdPointed.Cmp(td.Value.PubIdPointed.Int) != 0 ||
		ev.ReferenceModule != td.Value.ReferenceModule {
		return verrors.New(verrors.KindEventMismatch, fmt.Errorf("event fields diverge from typed data"))
	}
	if !isEmptyBytes(ev.ReferenceModuleData) || !isEmptyBytes(td.Value.ReferenceModuleInitData) ||
		!isEmptyBytes(ev.ReferenceModuleReturnData) {
		return verrors.New(verrors.KindEventMismatch, fmt.Errorf("expected empty return/init data for a fresh mirror"))
	}

	return nil
}

func requirePointer(p *record.Pointer) error {
	if p == nil {
		return verrors.New(verrors.KindPublicationNoPointer, nil)
	}
	if p.PointerType != record.PointerTypeOnDa {
		return verrors.New(verrors.KindPublicationNoneDA, nil)
	}
	return nil
}

// profileMulticall issues the standard 4-call batch (sigNonces,
// getPubCount, getDispatcher, ownerOf) through Multicall3, at a
// specific historical block.
func (v *Verifier) profileMulticall(ctx context.Context, signer common.Address, profileId *big.Int, blockNum *big.Int) (sigNonces, pubCount *big.Int, dispatcher, owner common.Address, err error) {
	parsed, err := hubabi.ParsedABI()
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}

	sigNoncesData, err := parsed.Pack("sigNonces", signer)
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}
	pubCountData, err := parsed.Pack("getPubCount", profileId)
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}
	dispatcherData, err := parsed.Pack("getDispatcher", profileId)
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}
	ownerData, err := parsed.Pack("ownerOf", profileId)
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}

	hub := v.hubAddress
	items := []chainMulticallItem{
		{Target: hub, AllowFailure: false, CallData: sigNoncesData},
		{Target: hub, AllowFailure: false, CallData: pubCountData},
		{Target: hub, AllowFailure: false, CallData: dispatcherData},
		{Target: hub, AllowFailure: false, CallData: ownerData},
	}

	results, err := v.multicall(ctx, items, blockNum)
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}
	if len(results) != 4 {
		return nil, nil, common.Address{}, common.Address{}, verrors.New(verrors.KindSimulationNodeCouldNotRun, fmt.Errorf("expected 4 multicall results, got %d", len(results)))
	}

	sn, err := unpackBigInt(parsed, "sigNonces", results[0].ReturnData)
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}
	pc, err := unpackBigInt(parsed, "getPubCount", results[1].ReturnData)
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}
	disp, err := unpackAddress(parsed, "getDispatcher", results[2].ReturnData)
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}
	own, err := unpackAddress(parsed, "ownerOf", results[3].ReturnData)
	if err != nil {
		return nil, nil, common.Address{}, common.Address{}, err
	}

	return sn, pc, disp, own, nil
}
