// Package tsproof verifies a bundler's timestamp-proof receipt (spec
// §4.5): the bundler's deep-hash commitment over the receipt fields,
// signed with RSA-PSS over the bundler's published public key.
//
// No third-party library in the retrieved corpus implements this
// scheme (it is a bespoke Arweave-style deep-hash, not a standard
// JWS/JWT construction), so this package is built directly on
// crypto/rsa and crypto/sha512/sha256.
package tsproof

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"

	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verrors"
)

const publicExponent = 65537

// Verify checks that receipt.Signature is a valid RSA-PSS signature,
// under receipt.PublicKey, over the deep-hash commitment of the
// receipt's own fields.
func Verify(receipt record.TimestampProofsReceipt) error {
	pubKeyBytes, err := decodeB64URL(receipt.PublicKey)
	if err != nil {
		return verrors.New(verrors.KindTimestampProofInvalidSignature, fmt.Errorf("decode public key: %w", err))
	}
	sigBytes, err := decodeB64URL(receipt.Signature)
	if err != nil {
		return verrors.New(verrors.KindTimestampProofInvalidSignature, fmt.Errorf("decode signature: %w", err))
	}

	pub := &rsa.PublicKey{N: new(big.Int).SetBytes(pubKeyBytes), E: publicExponent}

	commitment := deepHashList([]interface{}{
		[]byte("Bundlr"),
		[]byte(receipt.Version),
		[]byte(receipt.Id),
		[]byte(strconv.FormatUint(receipt.DeadlineHeight, 10)),
		[]byte(strconv.FormatInt(receipt.Timestamp, 10)),
	})
	digest := sha256.Sum256(commitment)

	opts := &rsa.PSSOptions{SaltLength: 0, Hash: crypto.SHA256}
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sigBytes, opts); err != nil {
		return verrors.New(verrors.KindTimestampProofInvalidSignature, fmt.Errorf("rsa-pss verify: %w", err))
	}
	return nil
}

func decodeB64URL(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// deepHashChunk hashes one node of the deep-hash tree: either a nested
// list ([]interface{}) or a leaf ([]byte).
func deepHashChunk(v interface{}) []byte {
	switch t := v.(type) {
	case []interface{}:
		return deepHashList(t)
	case []byte:
		return deepHashBlob(t)
	default:
		panic(fmt.Sprintf("tsproof: unsupported deep-hash chunk type %T", v))
	}
}

// deepHashList implements the "list" branch of the deep-hash scheme:
// fold a length-tagged accumulator over each child's own deep hash.
func deepHashList(chunks []interface{}) []byte {
	acc := sha384([]byte("list" + strconv.Itoa(len(chunks))))
	for _, c := range chunks {
		child := deepHashChunk(c)
		acc = sha384(concat(acc, child))
	}
	return acc
}

// deepHashBlob implements the "blob" branch: hash the length tag and
// the payload separately, then hash their concatenation.
func deepHashBlob(data []byte) []byte {
	tagHash := sha384([]byte("blob" + strconv.Itoa(len(data))))
	dataHash := sha384(data)
	return sha384(concat(tagHash, dataHash))
}

func sha384(b []byte) []byte {
	sum := sha512.Sum384(b)
	return sum[:]
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
