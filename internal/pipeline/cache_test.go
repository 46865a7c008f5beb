package pipeline

import (
	"testing"

	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verrors"
)

func TestResultCachePutGetOk(t *testing.T) {
	c := newResultCache()
	c.put("id-1", nil)

	got, ok := c.get("id-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.ok {
		t.Fatal("expected ok result")
	}
	if err := got.toError(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestResultCachePutGetFailurePreservesKind(t *testing.T) {
	c := newResultCache()
	c.put("id-2", verrors.New(verrors.KindEventMismatch, nil))

	got, ok := c.get("id-2")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.ok {
		t.Fatal("expected failed result")
	}
	err := got.toError()
	kind, ok := verrors.KindOf(err)
	if !ok || kind != verrors.KindEventMismatch {
		t.Fatalf("expected EventMismatch, got %v", err)
	}
}

func TestResultCacheMiss(t *testing.T) {
	c := newResultCache()
	if _, ok := c.get(record.Id("nope")); ok {
		t.Fatal("expected cache miss for unknown id")
	}
}

func TestResultCachePutWrapsPlainError(t *testing.T) {
	c := newResultCache()
	c.put("id-3", errPlain("boom"))

	got, _ := c.get("id-3")
	if got.ok {
		t.Fatal("expected failed result")
	}
	if got.kind != "boom" {
		t.Fatalf("expected kind 'boom', got %s", got.kind)
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
