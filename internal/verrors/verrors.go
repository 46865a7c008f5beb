// Package verrors defines the verifier's error taxonomy.
//
// Each failure mode in the verification pipeline is a distinct sentinel
// error, in the same spirit as the teacher's pkg/execution/errors.go.
// Per-record failures are always one of the Kind values below; a caller
// can both errors.Is a sentinel and render the exact tag spelling the
// operator-facing log line expects.
package verrors

import "errors"

// Kind is the exact tag spelling surfaced in log lines and reports.
type Kind string

const (
	// Format / decoding.
	KindInvalidTransactionType   Kind = "InvalidTransactionType"
	KindInvalidTransactionFormat Kind = "InvalidTransactionFormat"
	KindInvalidFormattedTypedData Kind = "InvalidFormattedTypedData"

	// Signature / identity.
	KindInvalidSignatureSubmitter    Kind = "InvalidSignatureSubmitter"
	KindTimestampProofInvalidSignature Kind = "TimestampProofInvalidSignature"
	KindTimestampProofInvalidType     Kind = "TimestampProofInvalidType"
	KindTimestampProofInvalidDAID     Kind = "TimestampProofInvalidDAID"
	KindTimestampProofNotSubmitter    Kind = "TimestampProofNotSubmitter"
	KindGeneratedPublicationIdMismatch Kind = "GeneratedPublicationIdMismatch"
	KindPublicationSignerNotAllowed  Kind = "PublicationSignerNotAllowed"
	KindChainSignatureAlreadyUsed    Kind = "ChainSignatureAlreadyUsed"

	// Semantic.
	KindInvalidEventTimestamp             Kind = "InvalidEventTimestamp"
	KindInvalidTypedDataDeadlineTimestamp  Kind = "InvalidTypedDataDeadlineTimestamp"
	KindNotClosestBlock                   Kind = "NotClosestBlock"
	KindPublicationNoPointer              Kind = "PublicationNoPointer"
	KindPublicationNoneDA                 Kind = "PublicationNoneDA"
	KindPublicationNonceInvalid           Kind = "PublicationNonceInvalid"
	KindInvalidPointerSetNotNeeded        Kind = "InvalidPointerSetNotNeeded"
	KindEventMismatch                     Kind = "EventMismatch"
	KindPointerFailedVerification         Kind = "PointerFailedVerification"
	KindSimulationFailed                  Kind = "SimulationFailed"

	// Transient / infra.
	KindCannotConnectToBundler    Kind = "CannotConnectToBundler"
	KindBlockCantBeReadFromNode   Kind = "BlockCantBeReadFromNode"
	KindDataCantBeReadFromNode    Kind = "DataCantBeReadFromNode"
	KindSimulationNodeCouldNotRun Kind = "SimulationNodeCouldNotRun"
	KindNoLastTransactionFound    Kind = "NoLastTransactionFound"
	KindPotentialReorg            Kind = "PotentialReorg"
	KindCacheError                Kind = "CacheError"
)

var (
	ErrInvalidTransactionType    = errors.New(string(KindInvalidTransactionType))
	ErrInvalidTransactionFormat  = errors.New(string(KindInvalidTransactionFormat))
	ErrInvalidFormattedTypedData = errors.New(string(KindInvalidFormattedTypedData))

	ErrInvalidSignatureSubmitter      = errors.New(string(KindInvalidSignatureSubmitter))
	ErrTimestampProofInvalidSignature = errors.New(string(KindTimestampProofInvalidSignature))
	ErrTimestampProofInvalidType      = errors.New(string(KindTimestampProofInvalidType))
	ErrTimestampProofInvalidDAID      = errors.New(string(KindTimestampProofInvalidDAID))
	ErrTimestampProofNotSubmitter     = errors.New(string(KindTimestampProofNotSubmitter))
	ErrGeneratedPublicationIdMismatch = errors.New(string(KindGeneratedPublicationIdMismatch))
	ErrPublicationSignerNotAllowed    = errors.New(string(KindPublicationSignerNotAllowed))
	ErrChainSignatureAlreadyUsed      = errors.New(string(KindChainSignatureAlreadyUsed))

	ErrInvalidEventTimestamp            = errors.New(string(KindInvalidEventTimestamp))
	ErrInvalidTypedDataDeadlineTimestamp = errors.New(string(KindInvalidTypedDataDeadlineTimestamp))
	ErrNotClosestBlock                  = errors.New(string(KindNotClosestBlock))
	ErrPublicationNoPointer             = errors.New(string(KindPublicationNoPointer))
	ErrPublicationNoneDA                = errors.New(string(KindPublicationNoneDA))
	ErrPublicationNonceInvalid          = errors.New(string(KindPublicationNonceInvalid))
	ErrInvalidPointerSetNotNeeded       = errors.New(string(KindInvalidPointerSetNotNeeded))
	ErrEventMismatch                    = errors.New(string(KindEventMismatch))
	ErrPointerFailedVerification        = errors.New(string(KindPointerFailedVerification))
	ErrSimulationFailed                 = errors.New(string(KindSimulationFailed))

	ErrCannotConnectToBundler    = errors.New(string(KindCannotConnectToBundler))
	ErrBlockCantBeReadFromNode   = errors.New(string(KindBlockCantBeReadFromNode))
	ErrDataCantBeReadFromNode    = errors.New(string(KindDataCantBeReadFromNode))
	ErrSimulationNodeCouldNotRun = errors.New(string(KindSimulationNodeCouldNotRun))
	ErrNoLastTransactionFound    = errors.New(string(KindNoLastTransactionFound))
	ErrPotentialReorg            = errors.New(string(KindPotentialReorg))
	ErrCacheError                = errors.New(string(KindCacheError))
)

// VerificationError pairs a Kind with the underlying cause, so both
// errors.Is(sentinel) and the exact tag string survive wrapping.
type VerificationError struct {
	Kind Kind
	Err  error
}

func (e *VerificationError) Error() string {
	if e.Err != nil && e.Err.Error() != string(e.Kind) {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Kind, so
// errors.Is(err, ErrX) holds for any VerificationError of kind X.
func (e *VerificationError) Is(target error) bool {
	return target.Error() == string(e.Kind)
}

// New wraps err (or, if err is nil, a bare error carrying the kind's tag
// text) with kind.
func New(kind Kind, err error) *VerificationError {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &VerificationError{Kind: kind, Err: err}
}

// KindOf extracts the Kind from err, if it (or something it wraps) is a
// *VerificationError. Returns ("", false) otherwise.
func KindOf(err error) (Kind, bool) {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}
