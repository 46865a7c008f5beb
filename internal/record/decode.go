package record

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/opendav/da-verifier/internal/verrors"
)

// envelope peeks the tagged union's discriminant before committing to a
// concrete decode, the same two-pass idiom the teacher uses for tagged
// payloads in pkg/database/types.go.
type envelope struct {
	Type PublicationType `json:"type"`
}

// Decode turns a base64-wrapped JSON payload into the matching
// Publication variant. It never aborts a batch: callers get a
// *verrors.VerificationError describing exactly this record's problem.
func Decode(dataBase64 string) (Publication, error) {
	raw, err := base64.StdEncoding.DecodeString(dataBase64)
	if err != nil {
		return nil, verrors.New(verrors.KindInvalidTransactionFormat, fmt.Errorf("base64 decode: %w", err))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, verrors.New(verrors.KindInvalidTransactionFormat, fmt.Errorf("peek type: %w", err))
	}

	var pub Publication
	switch env.Type {
	case PublicationTypePost:
		pub = &PostCreated{}
	case PublicationTypeComment:
		pub = &CommentCreated{}
	case PublicationTypeMirror:
		pub = &MirrorCreated{}
	default:
		return nil, verrors.New(verrors.KindInvalidTransactionType, fmt.Errorf("unknown publication type %q", env.Type))
	}

	if err := json.Unmarshal(raw, pub); err != nil {
		return nil, verrors.New(verrors.KindInvalidTransactionFormat, fmt.Errorf("decode %s: %w", env.Type, err))
	}

	if _, err := uuid.Parse(pub.CommonFields().DataAvailabilityId); err != nil {
		return nil, verrors.New(verrors.KindInvalidTransactionFormat, fmt.Errorf("invalid data availability id: %w", err))
	}

	return pub, nil
}

// EchoRecordId returns the RecordId of the companion TimestampProofsEcho
// record: the id embedded inside the publication's own timestamp-proofs
// receipt.
func EchoRecordId(pub Publication) Id {
	return pub.CommonFields().TimestampProofs.Response.Id
}

// DecodeEcho decodes a bulk-fetched TimestampProofsEcho payload.
func DecodeEcho(dataBase64 string) (*TimestampProofsEcho, error) {
	raw, err := base64.StdEncoding.DecodeString(dataBase64)
	if err != nil {
		return nil, verrors.New(verrors.KindInvalidTransactionFormat, fmt.Errorf("base64 decode echo: %w", err))
	}
	var echo TimestampProofsEcho
	if err := json.Unmarshal(raw, &echo); err != nil {
		return nil, verrors.New(verrors.KindInvalidTransactionFormat, fmt.Errorf("decode echo: %w", err))
	}
	return &echo, nil
}
