// Package record defines the DA record data model (spec §3) and the
// payload decoder (spec §4.3).
package record

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Id is an opaque bundler-assigned record identifier.
type Id string

// Cursor is an opaque DA-service pagination token. The empty string
// means "from the beginning".
type Cursor string

// Order controls DA-service query ordering.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// PublicationType tags the Action union.
type PublicationType string

const (
	PublicationTypePost    PublicationType = "POST_CREATED"
	PublicationTypeComment PublicationType = "COMMENT_CREATED"
	PublicationTypeMirror  PublicationType = "MIRROR_CREATED"
)

// PointerType distinguishes where a comment/mirror's pointed publication
// was meant to live.
type PointerType string

const (
	PointerTypeOnEvmChain PointerType = "ON_EVM_CHAIN"
	PointerTypeOnDa       PointerType = "ON_DA"
)

// BigInt tolerates both JSON numbers and decimal/hex strings, matching
// the loose encodings different bundler payload producers have used.
type BigInt struct{ *big.Int }

func NewBigInt(v int64) BigInt { return BigInt{big.NewInt(v)} }

// Number tolerates a JSON number, a decimal string, or a 0x-prefixed hex
// string of either parity, unmarshaling into a plain uint64.
type Number uint64

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%d", uint64(n)))
}

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := hexutil.DecodeUint64(s)
		if err != nil {
			return fmt.Errorf("record: invalid hex number %q: %w", s, err)
		}
		*n = Number(v)
		return nil
	}
	var v uint64
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return fmt.Errorf("record: invalid number %q: %w", s, err)
	}
	*n = Number(v)
	return nil
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	if b.Int == nil {
		return []byte(`"0"`), nil
	}
	return json.Marshal(b.Int.String())
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		b.Int = big.NewInt(0)
		return nil
	}
	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		n, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return fmt.Errorf("record: invalid big integer %q", s)
	}
	b.Int = n
	return nil
}

// TypedDataDomain is the EIP-712 domain separator carried inside each
// ChainPublication's typed data.
type TypedDataDomain struct {
	Name              string         `json:"name"`
	Version           string         `json:"version"`
	ChainId           BigInt         `json:"chainId"`
	VerifyingContract common.Address `json:"verifyingContract"`
}

// TypedDataValue carries the fields common to PostWithSig / CommentWithSig
// / MirrorWithSig, with action-specific fields left zero when unused.
type TypedDataValue struct {
	Nonce    BigInt `json:"nonce"`
	Deadline BigInt `json:"deadline"`

	ProfileId     BigInt         `json:"profileId"`
	ContentURI    string         `json:"contentURI,omitempty"`
	CollectModule common.Address `json:"collectModule"`
	CollectModuleInitData hexutil.Bytes `json:"collectModuleInitData,omitempty"`

	ReferenceModule         common.Address `json:"referenceModule"`
	ReferenceModuleInitData hexutil.Bytes  `json:"referenceModuleInitData,omitempty"`
	ReferenceModuleData     hexutil.Bytes  `json:"referenceModuleData,omitempty"`

	ProfileIdPointed BigInt `json:"profileIdPointed,omitempty"`
	PubIdPointed     BigInt `json:"pubIdPointed,omitempty"`
}

// SignedTypedData is the full EIP-712-style structured payload a
// ChainPublication's signature was taken over.
type SignedTypedData struct {
	Domain      TypedDataDomain `json:"domain"`
	PrimaryType string          `json:"primaryType"`
	Value       TypedDataValue  `json:"value"`
}

// Pointer is a reference from a comment/mirror to the record it targets.
type Pointer struct {
	Location    string      `json:"location"`
	PointerType PointerType `json:"type"`
}

// RecordIdFromPointer strips the "ar://" (or any "<scheme>://") prefix
// from a pointer location, yielding the bundler record id.
func RecordIdFromPointer(p Pointer) Id {
	if idx := strings.Index(p.Location, "://"); idx >= 0 {
		return Id(p.Location[idx+3:])
	}
	return Id(p.Location)
}

// ChainPublication is the claim: had this been submitted on chain at
// BlockNumber, it would have produced an identical effect.
type ChainPublication struct {
	Signature         hexutil.Bytes   `json:"signature"`
	SignedByDelegate  bool            `json:"signedByDelegate"`
	SignatureDeadline BigInt          `json:"signatureDeadline"`
	TypedData         SignedTypedData `json:"typedData"`
	BlockHash         common.Hash     `json:"blockHash"`
	BlockNumber       Number          `json:"blockNumber"`
	BlockTimestamp    Number          `json:"blockTimestamp"`
}

// ChainProofs bundles the publication claim with an optional pointer to
// a previously-submitted DA record.
type ChainProofs struct {
	ThisPublication ChainPublication `json:"thisPublication"`
	Pointer         *Pointer         `json:"pointer,omitempty"`
}

// TimestampProofsReceipt is the bundler's atomic-commit receipt.
type TimestampProofsReceipt struct {
	Id                  Id       `json:"id"`
	Timestamp           int64    `json:"timestamp"`
	Version             string   `json:"version"`
	PublicKey           string   `json:"publicKey"`
	Signature           string   `json:"signature"`
	DeadlineHeight      uint64   `json:"deadlineHeight"`
	Block               uint64   `json:"block"`
	ValidatorSignatures []string `json:"validatorSignatures,omitempty"`
}

// TimestampProofsEnvelope is stored inside every publication.
type TimestampProofsEnvelope struct {
	ProofsType string                  `json:"type"`
	HashPrefix string                  `json:"hashPrefix"`
	Response   TimestampProofsReceipt  `json:"response"`
}

// TimestampProofsEcho is a separate bundler-stored record asserting
// which action and DA uuid a timestamp-proofs receipt attests to.
type TimestampProofsEcho struct {
	ActionType        PublicationType `json:"type"`
	DataAvailabilityId string         `json:"dataAvailabilityId"`
}

// PostEvent mirrors the PostCreated on-chain event.
type PostEvent struct {
	ProfileId                 BigInt         `json:"profileId"`
	PubId                     BigInt         `json:"pubId"`
	ContentURI                string         `json:"contentURI"`
	CollectModule             common.Address `json:"collectModule"`
	CollectModuleReturnData   hexutil.Bytes  `json:"collectModuleReturnData"`
	ReferenceModule           common.Address `json:"referenceModule"`
	ReferenceModuleReturnData hexutil.Bytes  `json:"referenceModuleReturnData"`
	Timestamp                 Number         `json:"timestamp"`
}

// CommentEvent mirrors the CommentCreated on-chain event.
type CommentEvent struct {
	ProfileId                 BigInt         `json:"profileId"`
	PubId                     BigInt         `json:"pubId"`
	ContentURI                string         `json:"contentURI"`
	ProfileIdPointed          BigInt         `json:"profileIdPointed"`
	PubIdPointed              BigInt         `json:"pubIdPointed"`
	ReferenceModuleData       hexutil.Bytes  `json:"referenceModuleData"`
	CollectModule             common.Address `json:"collectModule"`
	CollectModuleReturnData   hexutil.Bytes  `json:"collectModuleReturnData"`
	ReferenceModule           common.Address `json:"referenceModule"`
	ReferenceModuleReturnData hexutil.Bytes  `json:"referenceModuleReturnData"`
	Timestamp                 Number         `json:"timestamp"`
}

// MirrorEvent mirrors the MirrorCreated on-chain event.
type MirrorEvent struct {
	ProfileId                 BigInt         `json:"profileId"`
	PubId                     BigInt         `json:"pubId"`
	ProfileIdPointed          BigInt         `json:"profileIdPointed"`
	PubIdPointed              BigInt         `json:"pubIdPointed"`
	ReferenceModuleData       hexutil.Bytes  `json:"referenceModuleData"`
	ReferenceModule           common.Address `json:"referenceModule"`
	ReferenceModuleReturnData hexutil.Bytes  `json:"referenceModuleReturnData"`
	Timestamp                 Number         `json:"timestamp"`
}

// Common holds the fields every Publication variant carries.
type Common struct {
	Signature          hexutil.Bytes           `json:"signature"`
	DataAvailabilityId string                  `json:"dataAvailabilityId"`
	PublicationType    PublicationType         `json:"type"`
	TimestampProofs    TimestampProofsEnvelope `json:"timestampProofs"`
	ChainProofs        ChainProofs             `json:"chainProofs"`
	PublicationId      string                  `json:"publicationId"`
}

// Publication is the tagged union {PostCreated, CommentCreated, MirrorCreated}.
type Publication interface {
	CommonFields() *Common
	Type() PublicationType
}

type PostCreated struct {
	Common
	Event PostEvent `json:"event"`
}

func (p *PostCreated) CommonFields() *Common      { return &p.Common }
func (p *PostCreated) Type() PublicationType      { return PublicationTypePost }

type CommentCreated struct {
	Common
	Event CommentEvent `json:"event"`
}

func (c *CommentCreated) CommonFields() *Common { return &c.Common }
func (c *CommentCreated) Type() PublicationType { return PublicationTypeComment }

type MirrorCreated struct {
	Common
	Event MirrorEvent `json:"event"`
}

func (m *MirrorCreated) CommonFields() *Common { return &m.Common }
func (m *MirrorCreated) Type() PublicationType { return PublicationTypeMirror }

// Summary is the enriched, verifier-ready view of a record: the decoded
// publication plus whatever the pipeline has attached so far.
type Summary struct {
	Id              Id
	Publication     Publication
	Submitter       common.Address
	TimestampProofsEcho *TimestampProofsEcho
	PointerSummary  *Summary
}

// UUIDHead returns the substring of a DA uuid up to (not including) the
// first '-'.
func UUIDHead(uuid string) string {
	if idx := strings.IndexByte(uuid, '-'); idx >= 0 {
		return uuid[:idx]
	}
	return uuid
}

// FormatPublicationId implements the ID law from spec §3/§4.6.2:
// "{profileId}-{pubId}-DA-{uuidHead}".
func FormatPublicationId(profileId, pubId *big.Int, uuid string) string {
	return fmt.Sprintf("%s-%s-DA-%s", profileId.String(), pubId.String(), UUIDHead(uuid))
}

// SplitPublicationId is the inverse of FormatPublicationId's structure:
// it splits on the literal "-DA-" marker, returning the
// "{profileId}-{pubId}" prefix and the uuid head suffix.
func SplitPublicationId(id string) (prefix, uuidHead string, ok bool) {
	const marker = "-DA-"
	idx := strings.Index(id, marker)
	if idx < 0 {
		return "", "", false
	}
	return id[:idx], id[idx+len(marker):], true
}
