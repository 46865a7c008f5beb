package verify

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verrors"
)

// signatureFieldPattern strips the top-level "signature":"0x<65-byte
// hex>" pair from a publication's canonical JSON form before submitter
// recovery. Per the design note this is a literal-regex strip, not a
// structural one — the submitter's original signing code produced the
// signature over the JSON text with this exact substring removed.
var signatureFieldPattern = regexp.MustCompile(`"signature":"0x[0-9a-fA-F]{130}",?\s*`)

// verifyingContractFieldPattern and collectModuleFieldPattern match the
// two address fields the submitter's original signing code rewrites to
// EIP-55 checksum case before stringifying: the typed-data domain's
// verifyingContract, and collectModule (which appears both in
// typedData.value and, mirrored, in the publication's own event).
// common.Address only marshals to lowercase hex, so the checksummed form
// is substituted back into the already-marshaled JSON text.
var verifyingContractFieldPattern = regexp.MustCompile(`"verifyingContract":"0x[0-9a-fA-F]{40}"`)
var collectModuleFieldPattern = regexp.MustCompile(`"collectModule":"0x[0-9a-fA-F]{40}"`)

// RecoverSubmitter recovers the ECDSA signer of pub's top-level
// signature. The submitter's original signing code took this signature
// over the publication's canonical JSON form with its own signature
// field stripped, its verifyingContract and collectModule addresses
// rewritten to EIP-55 checksum case, and the resulting text hashed
// through the EIP-191 personal-message prefix — not a bare keccak256.
func RecoverSubmitter(pub record.Publication) (common.Address, error) {
	raw, err := json.Marshal(pub)
	if err != nil {
		return common.Address{}, verrors.New(verrors.KindInvalidSignatureSubmitter, fmt.Errorf("canonicalize: %w", err))
	}

	verifyingContract := pub.CommonFields().ChainProofs.ThisPublication.TypedData.Domain.VerifyingContract
	raw = verifyingContractFieldPattern.ReplaceAll(raw, []byte(fmt.Sprintf(`"verifyingContract":"%s"`, verifyingContract.Hex())))
	if collectModule, ok := collectModuleAddress(pub); ok {
		raw = collectModuleFieldPattern.ReplaceAll(raw, []byte(fmt.Sprintf(`"collectModule":"%s"`, collectModule.Hex())))
	}

	// Only the first match is the top-level field (Common.Signature is
	// marshaled first); later matches belong to nested objects.
	stripped := raw
	if loc := signatureFieldPattern.FindIndex(raw); loc != nil {
		stripped = append(append([]byte{}, raw[:loc[0]]...), raw[loc[1]:]...)
	}

	sig := []byte(pub.CommonFields().Signature)
	if len(sig) != 65 {
		return common.Address{}, verrors.New(verrors.KindInvalidSignatureSubmitter, fmt.Errorf("signature must be 65 bytes, got %d", len(sig)))
	}
	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	hash := accounts.TextHash(stripped)
	pubKey, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return common.Address{}, verrors.New(verrors.KindInvalidSignatureSubmitter, fmt.Errorf("recover signer: %w", err))
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// collectModuleAddress returns the collect-module address bound in
// pub's typed data, if its primary type carries one. MirrorWithSig has
// no collectModule field, so mirrors report false.
func collectModuleAddress(pub record.Publication) (common.Address, bool) {
	if _, isMirror := pub.(*record.MirrorCreated); isMirror {
		return common.Address{}, false
	}
	return pub.CommonFields().ChainProofs.ThisPublication.TypedData.Value.CollectModule, true
}

// eip712Hash computes the EIP-712 signing hash "\x19\x01" || domainSeparator || structHash.
func eip712Hash(domain record.TypedDataDomain, types apitypes.Types, primaryType string, message apitypes.TypedDataMessage) ([]byte, error) {
	td := apitypes.TypedData{
		Types:       types,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              domain.Name,
			Version:           domain.Version,
			ChainId:           bigIntToHexOrDecimal(domain.ChainId),
			VerifyingContract: domain.VerifyingContract.Hex(),
		},
		Message: message,
	}

	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("hash domain: %w", err)
	}
	structHash, err := td.HashStruct(primaryType, message)
	if err != nil {
		return nil, fmt.Errorf("hash struct: %w", err)
	}

	rawData := append([]byte{0x19, 0x01}, domainSeparator...)
	rawData = append(rawData, structHash...)
	return crypto.Keccak256(rawData), nil
}

func bigIntToHexOrDecimal(b record.BigInt) *math.HexOrDecimal256 {
	if b.Int == nil {
		return nil
	}
	v := math.HexOrDecimal256(*b.Int)
	return &v
}

// splitSignature decomposes a 65-byte [R || S || V] signature into the
// (v, r, s) triple the hub contract's *WithSig methods expect, with v
// normalized to {27, 28}.
func splitSignature(sig []byte) (v uint8, r, s [32]byte, err error) {
	if len(sig) != 65 {
		return 0, r, s, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}
	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])
	v = sig[64]
	if v < 27 {
		v += 27
	}
	return v, r, s, nil
}

// recoverEIP712Signer recovers the signer of a hash+65-byte-signature pair.
func recoverEIP712Signer(hash, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}
	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pubKey, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

var postWithSigTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"PostWithSig": {
		{Name: "profileId", Type: "uint256"},
		{Name: "contentURI", Type: "string"},
		{Name: "collectModule", Type: "address"},
		{Name: "collectModuleInitData", Type: "bytes"},
		{Name: "referenceModule", Type: "address"},
		{Name: "referenceModuleInitData", Type: "bytes"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	},
}

var commentWithSigTypes = apitypes.Types{
	"EIP712Domain": postWithSigTypes["EIP712Domain"],
	"CommentWithSig": {
		{Name: "profileId", Type: "uint256"},
		{Name: "contentURI", Type: "string"},
		{Name: "profileIdPointed", Type: "uint256"},
		{Name: "pubIdPointed", Type: "uint256"},
		{Name: "referenceModuleData", Type: "bytes"},
		{Name: "collectModule", Type: "address"},
		{Name: "collectModuleInitData", Type: "bytes"},
		{Name: "referenceModule", Type: "address"},
		{Name: "referenceModuleInitData", Type: "bytes"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	},
}

var mirrorWithSigTypes = apitypes.Types{
	"EIP712Domain": postWithSigTypes["EIP712Domain"],
	"MirrorWithSig": {
		{Name: "profileId", Type: "uint256"},
		{Name: "profileIdPointed", Type: "uint256"},
		{Name: "pubIdPointed", Type: "uint256"},
		{Name: "referenceModuleData", Type: "bytes"},
		{Name: "referenceModule", Type: "address"},
		{Name: "referenceModuleInitData", Type: "bytes"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	},
}

// RecoverPostSigner recovers the signer of a PostWithSig typed-data message.
func RecoverPostSigner(td record.SignedTypedData, sig []byte) (common.Address, error) {
	v := td.Value
	msg := apitypes.TypedDataMessage{
		"profileId":               v.ProfileId.String(),
		"contentURI":              v.ContentURI,
		"collectModule":           v.CollectModule.Hex(),
		"collectModuleInitData":   []byte(v.CollectModuleInitData),
		"referenceModule":         v.ReferenceModule.Hex(),
		"referenceModuleInitData": []byte(v.ReferenceModuleInitData),
		"nonce":                   v.Nonce.String(),
		"deadline":                v.Deadline.String(),
	}
	hash, err := eip712Hash(td.Domain, postWithSigTypes, "PostWithSig", msg)
	if err != nil {
		return common.Address{}, err
	}
	return recoverEIP712Signer(hash, sig)
}

// RecoverCommentSigner recovers the signer of a CommentWithSig typed-data message.
func RecoverCommentSigner(td record.SignedTypedData, sig []byte) (common.Address, error) {
	v := td.Value
	msg := apitypes.TypedDataMessage{
		"profileId":               v.ProfileId.String(),
		"contentURI":              v.ContentURI,
		"profileIdPointed":        v.ProfileIdPointed.String(),
		"pubIdPointed":            v.PubIdPointed.String(),
		"referenceModuleData":     []byte(v.ReferenceModuleData),
		"collectModule":           v.CollectModule.Hex(),
		"collectModuleInitData":   []byte(v.CollectModuleInitData),
		"referenceModule":         v.ReferenceModule.Hex(),
		"referenceModuleInitData": []byte(v.ReferenceModuleInitData),
		"nonce":                   v.Nonce.String(),
		"deadline":                v.Deadline.String(),
	}
	hash, err := eip712Hash(td.Domain, commentWithSigTypes, "CommentWithSig", msg)
	if err != nil {
		return common.Address{}, err
	}
	return recoverEIP712Signer(hash, sig)
}

// RecoverMirrorSigner recovers the signer of a MirrorWithSig typed-data message.
func RecoverMirrorSigner(td record.SignedTypedData, sig []byte) (common.Address, error) {
	v := td.Value
	msg := apitypes.TypedDataMessage{
		"profileId":               v.ProfileId.String(),
		"profileIdPointed":        v.ProfileIdPointed.String(),
		"pubIdPointed":            v.PubIdPointed.String(),
		"referenceModuleData":     []byte(v.ReferenceModuleData),
		"referenceModule":         v.ReferenceModule.Hex(),
		"referenceModuleInitData": []byte(v.ReferenceModuleInitData),
		"nonce":                   v.Nonce.String(),
		"deadline":                v.Deadline.String(),
	}
	hash, err := eip712Hash(td.Domain, mirrorWithSigTypes, "MirrorWithSig", msg)
	if err != nil {
		return common.Address{}, err
	}
	return recoverEIP712Signer(hash, sig)
}
