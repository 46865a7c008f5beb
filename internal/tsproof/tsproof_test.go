package tsproof

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"testing"

	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verrors"
)

func mustKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key.E = publicExponent
	return key
}

func signReceipt(t *testing.T, key *rsa.PrivateKey, r record.TimestampProofsReceipt) string {
	t.Helper()
	commitment := deepHashList([]interface{}{
		[]byte("Bundlr"),
		[]byte(r.Version),
		[]byte(r.Id),
		[]byte(strconv.FormatUint(r.DeadlineHeight, 10)),
		[]byte(strconv.FormatInt(r.Timestamp, 10)),
	})
	digest := sha256.Sum256(commitment)
	sig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], &rsa.PSSOptions{SaltLength: 0, Hash: crypto.SHA256})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(sig)
}

func receiptFor(key *rsa.PrivateKey, sig string) record.TimestampProofsReceipt {
	return record.TimestampProofsReceipt{
		Id:             "rec-1",
		Timestamp:      1700000000,
		Version:        "1.0",
		PublicKey:      base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		Signature:      sig,
		DeadlineHeight: 42,
	}
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	key := mustKey(t)
	r := receiptFor(key, "")
	r.Signature = signReceipt(t, key, r)

	if err := Verify(r); err != nil {
		t.Fatalf("expected valid signature to verify, got %v", err)
	}
}

func TestVerifyRejectsTamperedField(t *testing.T) {
	key := mustKey(t)
	r := receiptFor(key, "")
	r.Signature = signReceipt(t, key, r)
	r.Timestamp++ // tamper after signing

	err := Verify(r)
	if err == nil {
		t.Fatal("expected tampered receipt to fail verification")
	}
	kind, ok := verrors.KindOf(err)
	if !ok || kind != verrors.KindTimestampProofInvalidSignature {
		t.Fatalf("expected TimestampProofInvalidSignature, got %v", err)
	}
}

func TestVerifyRejectsBadBase64(t *testing.T) {
	key := mustKey(t)
	r := receiptFor(key, "not valid base64 !!")
	if err := Verify(r); err == nil {
		t.Fatal("expected error for malformed signature encoding")
	}
}

// TestVerifyAcceptsRealBundlrReceipt pins a genuine Bundlr-issued
// timestamp-proofs receipt (id, timestamp, version, publicKey, signature
// and deadlineHeight taken from a real Lens Momoka submission) instead
// of a self-signed round trip. A self-sign test encodes whatever domain
// separator the test helper happens to use on both the signing and
// verifying side, so it cannot catch the construction drifting from the
// real bundler's deep-hash scheme the way this fixture can.
func TestVerifyAcceptsRealBundlrReceipt(t *testing.T) {
	r := record.TimestampProofsReceipt{
		Id:             "1cgDW9R4aSFXYd2NuVHITPvXQbA13-nUQwS1fhL6R0g",
		Timestamp:      1682525560422,
		Version:        "1.0.0",
		PublicKey:      "sq9JbppKLlAKtQwalfX5DagnGMlTirditXk7y4jgoeA7DEM0Z6cVPE5xMQ9kz_T9VppP6BFHtHyZCZODercEVWipzkr36tfQkR5EDGUQyLivdxUzbWgVkzw7D27PJEa4cd1Uy6r18rYLqERgbRvAZph5YJZmpSJk7r3MwnQquuktjvSpfCLFwSxP1w879-ss_JalM9ICzRi38henONio8gll6GV9-omrWwRMZer_15bspCK5txCwpY137nfKwKD5YBAuzxxcj424M7zlSHlsafBwaRwFbf8gHtW03iJER4lR4GxeY0WvnYaB3KDISHQp53a9nlbmiWO5WcHHYsR83OT2eJ0Pl3RWA-_imk_SNwGQTCjmA6tf_UVwL8HzYS2iyuu85b7iYK9ZQoh8nqbNC6qibICE4h9Fe3bN7AgitIe9XzCTOXDfMr4ahjC8kkqJ1z4zNAI6-Leei_Mgd8JtZh2vqFNZhXK0lSadFl_9Oh3AET7tUds2E7s-6zpRPd9oBZu6-kNuHDRJ6TQhZSwJ9ZO5HYsccb_G_1so72aXJymR9ggJgWr4J3bawAYYnqmvmzGklYOlE_5HVnMxf-UxpT7ztdsHbc9QEH6W2bzwxbpjTczEZs3JCCB3c-NewNHsj9PYM3b5tTlTNP9kNAwPZHWpt11t79LuNkNGt9LfOek",
		Signature:      "VwDTklBWgxilmvgwZnal6JvGwF0fKcPx3JqZ5TMo35jKVOEKyCR8czY82x0fYz_rRqeZc96DAJPtMeHaKK-p3Taw-WvEbX9vvDISTjaEQMEYAl1aeAQG-RzcmmB8Ac9a57-OXThDUa88lQPYRrRCu8pIMc1fa-CnBY9CxXJQLv8K1XbZ5L1Hsg97lF64c0wYsxD72svLsc-s9fUmAZ1aB3fpAVYSUgpxK5FPZI1dxFA_TjJSrVEBGUz_ODWho1ZPtGpLlkr81Z10WkaohTLPe-_CBEouLy6fDPCrE3MUUj_-F-OHtzRgK756MQreMxoDEZSXNI22E7CFRiyy_1Rbw4Ax2lu65JeedGnajGcTpTVPlV6UTJRo8kPm6Zo6O6nTqaiZCvnNcLmcOXhNWSSJXVX2zxHWo6kT3ffwKRPuawaNgXFmIDzznfEqg-7uVEByI2UxpD_pF74J44ZxKUurBl8vm6OM7zvyL86VNNTVjafy4Qi6Y45NNqfcbsQpkYfindz0gBWU64NktRE3qUsPce4pL8C1vifL3P7SGF8RLhKedPi52-BNaufRk_vmUlBcNpsvsBSECcCU9SLgY3cSaZekClnPCM2kPQjg5bAIvHr88WSnFwm2niQ8ZZSJPaEEy6qI0QrgXnYDidgbGeUvygeFKG-E2itlF3tBtvR4SlQ",
		DeadlineHeight: 1170647,
	}

	if err := Verify(r); err != nil {
		t.Fatalf("expected real Bundlr receipt to verify, got %v", err)
	}
}

func TestDeepHashListIsDeterministic(t *testing.T) {
	chunks := []interface{}{[]byte("a"), []byte("bb")}
	h1 := deepHashList(chunks)
	h2 := deepHashList(chunks)
	if string(h1) != string(h2) {
		t.Fatal("expected deep hash to be deterministic")
	}

	other := deepHashList([]interface{}{[]byte("a"), []byte("bc")})
	if string(h1) == string(other) {
		t.Fatal("expected different chunks to hash differently")
	}
}
