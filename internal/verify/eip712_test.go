package verify

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/opendav/da-verifier/internal/record"
)

func testDomain() record.TypedDataDomain {
	return record.TypedDataDomain{
		Name:              "Hub",
		Version:           "1",
		ChainId:           record.NewBigInt(137),
		VerifyingContract: common.HexToAddress("0xDb46d1Dc155634Fbc732f92E853b10B288AD5a1a"),
	}
}

func TestRecoverPostSignerRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)

	td := record.SignedTypedData{
		Domain:      testDomain(),
		PrimaryType: "PostWithSig",
		Value: record.TypedDataValue{
			Nonce:         record.NewBigInt(0),
			Deadline:      record.NewBigInt(9999999999),
			ProfileId:     record.NewBigInt(5),
			ContentURI:    "ipfs://abc",
			CollectModule: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		},
	}

	// Compute the hash the same way RecoverPostSigner will, so the test
	// signs exactly what will be verified.
	v := td.Value
	msg := map[string]interface{}{
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
		t.Fatalf("eip712Hash: %v", err)
	}

	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := RecoverPostSigner(td, sig)
	if err != nil {
		t.Fatalf("RecoverPostSigner: %v", err)
	}
	if got != want {
		t.Fatalf("recovered %s, want %s", got.Hex(), want.Hex())
	}
}

func TestRecoverPostSignerRejectsWrongLengthSignature(t *testing.T) {
	td := record.SignedTypedData{
		Domain:      testDomain(),
		PrimaryType: "PostWithSig",
		Value: record.TypedDataValue{
			Nonce:     record.NewBigInt(0),
			Deadline:  record.NewBigInt(1),
			ProfileId: record.NewBigInt(1),
		},
	}
	if _, err := RecoverPostSigner(td, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for malformed signature")
	}
}

func TestSplitSignatureNormalizesV(t *testing.T) {
	sig := make([]byte, 65)
	sig[64] = 0 // raw recovery id
	v, _, _, err := splitSignature(sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 27 {
		t.Fatalf("expected v=27, got %d", v)
	}

	sig[64] = 28
	v, _, _, err = splitSignature(sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 28 {
		t.Fatalf("expected v=28 unchanged, got %d", v)
	}
}

// submitterTestPublication builds a PostCreated record whose domain and
// collect-module addresses both contain hex letters, so their EIP-55
// checksum form differs from the lowercase hex json.Marshal emits and
// the test exercises the checksum rewrite rather than happening to
// already match it.
func submitterTestPublication() *record.PostCreated {
	pub := &record.PostCreated{}
	pub.Common.PublicationType = record.PublicationTypePost
	pub.Common.DataAvailabilityId = "11111111-1111-1111-1111-111111111111"
	pub.Common.Signature = make(hexutil.Bytes, 65)
	pub.Common.ChainProofs.ThisPublication.TypedData.Domain = testDomain()
	pub.Common.ChainProofs.ThisPublication.TypedData.Value.CollectModule = common.HexToAddress("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	pub.Event.CollectModule = pub.Common.ChainProofs.ThisPublication.TypedData.Value.CollectModule
	return pub
}

// canonicalSubmitterHash reproduces exactly what RecoverSubmitter hashes:
// the publication's JSON form, with verifyingContract/collectModule
// rewritten to EIP-55 checksum case and its own signature field
// stripped, run through the EIP-191 personal-message prefix.
func canonicalSubmitterHash(t *testing.T, pub *record.PostCreated) []byte {
	t.Helper()
	raw, err := json.Marshal(pub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	raw = verifyingContractFieldPattern.ReplaceAll(raw, []byte(fmt.Sprintf(`"verifyingContract":"%s"`, pub.Common.ChainProofs.ThisPublication.TypedData.Domain.VerifyingContract.Hex())))
	raw = collectModuleFieldPattern.ReplaceAll(raw, []byte(fmt.Sprintf(`"collectModule":"%s"`, pub.Common.ChainProofs.ThisPublication.TypedData.Value.CollectModule.Hex())))
	stripped := signatureFieldPattern.ReplaceAll(raw, nil)
	return accounts.TextHash(stripped)
}

func TestRecoverSubmitterRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)

	pub := submitterTestPublication()
	hash := canonicalSubmitterHash(t, pub)

	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	pub.Common.Signature = hexutil.Bytes(sig)

	got, err := RecoverSubmitter(pub)
	if err != nil {
		t.Fatalf("RecoverSubmitter: %v", err)
	}
	if got != want {
		t.Fatalf("recovered %s, want %s", got.Hex(), want.Hex())
	}
}

// TestRecoverSubmitterRequiresChecksumCasing pins a signature taken over
// the raw (lowercase) address encoding go-ethereum's marshaler would
// otherwise produce. If RecoverSubmitter stopped checksum-rewriting the
// two address fields, this signature would suddenly recover correctly —
// catching a regression a same-construction round trip cannot.
func TestRecoverSubmitterRequiresChecksumCasing(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	notWant := crypto.PubkeyToAddress(key.PublicKey)

	pub := submitterTestPublication()
	raw, err := json.Marshal(pub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	stripped := signatureFieldPattern.ReplaceAll(raw, nil)
	hash := accounts.TextHash(stripped) // no checksum rewrite

	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	pub.Common.Signature = hexutil.Bytes(sig)

	got, err := RecoverSubmitter(pub)
	if err != nil {
		t.Fatalf("RecoverSubmitter: %v", err)
	}
	if got == notWant {
		t.Fatal("expected recovery against non-checksummed bytes to diverge from the checksummed submitter")
	}
}

// TestRecoverSubmitterRequiresEIP191Prefix pins a signature taken over a
// bare keccak256 of the canonical bytes, with no EIP-191 personal-message
// prefix. If RecoverSubmitter stopped applying the prefix, this would
// suddenly recover correctly.
func TestRecoverSubmitterRequiresEIP191Prefix(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	notWant := crypto.PubkeyToAddress(key.PublicKey)

	pub := submitterTestPublication()
	raw, err := json.Marshal(pub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	raw = verifyingContractFieldPattern.ReplaceAll(raw, []byte(fmt.Sprintf(`"verifyingContract":"%s"`, pub.Common.ChainProofs.ThisPublication.TypedData.Domain.VerifyingContract.Hex())))
	raw = collectModuleFieldPattern.ReplaceAll(raw, []byte(fmt.Sprintf(`"collectModule":"%s"`, pub.Common.ChainProofs.ThisPublication.TypedData.Value.CollectModule.Hex())))
	stripped := signatureFieldPattern.ReplaceAll(raw, nil)
	hash := crypto.Keccak256(stripped) // no EIP-191 prefix

	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	pub.Common.Signature = hexutil.Bytes(sig)

	got, err := RecoverSubmitter(pub)
	if err != nil {
		t.Fatalf("RecoverSubmitter: %v", err)
	}
	if got == notWant {
		t.Fatal("expected recovery against an unprefixed hash to diverge from the EIP-191-prefixed submitter")
	}
}

// TestRecoverSubmitterMirrorHasNoCollectModule confirms that mirror
// publications, whose typed data carries no collectModule field, are
// still recovered correctly: the collect-module checksum rewrite must be
// a no-op for them rather than corrupting the canonical JSON.
func TestRecoverSubmitterMirrorHasNoCollectModule(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)

	pub := &record.MirrorCreated{}
	pub.Common.PublicationType = record.PublicationTypeMirror
	pub.Common.DataAvailabilityId = "22222222-2222-2222-2222-222222222222"
	pub.Common.Signature = make(hexutil.Bytes, 65)
	pub.Common.ChainProofs.ThisPublication.TypedData.Domain = testDomain()

	raw, err := json.Marshal(pub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	raw = verifyingContractFieldPattern.ReplaceAll(raw, []byte(fmt.Sprintf(`"verifyingContract":"%s"`, pub.Common.ChainProofs.ThisPublication.TypedData.Domain.VerifyingContract.Hex())))
	stripped := signatureFieldPattern.ReplaceAll(raw, nil)
	hash := accounts.TextHash(stripped)

	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	pub.Common.Signature = hexutil.Bytes(sig)

	got, err := RecoverSubmitter(pub)
	if err != nil {
		t.Fatalf("RecoverSubmitter: %v", err)
	}
	if got != want {
		t.Fatalf("recovered %s, want %s", got.Hex(), want.Hex())
	}
}
