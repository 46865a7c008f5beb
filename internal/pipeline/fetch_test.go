package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opendav/da-verifier/internal/bundler"
	"github.com/opendav/da-verifier/internal/record"
)

func contextTODO() context.Context { return context.TODO() }

func encodePost(t *testing.T, id record.Id, daId string, echoId record.Id, pointer *record.Pointer) string {
	t.Helper()
	pub := &record.PostCreated{}
	pub.Common.PublicationType = record.PublicationTypePost
	pub.Common.DataAvailabilityId = daId
	pub.Common.TimestampProofs.Response.Id = echoId
	pub.Common.ChainProofs.Pointer = pointer

	raw, err := json.Marshal(pub)
	if err != nil {
		t.Fatalf("marshal post: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func encodeEcho(t *testing.T, actionType record.PublicationType, daId string) string {
	t.Helper()
	raw, err := json.Marshal(record.TimestampProofsEcho{ActionType: actionType, DataAvailabilityId: daId})
	if err != nil {
		t.Fatalf("marshal echo: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

type fakeBulkServer struct {
	t      *testing.T
	byId   map[string]string // id -> base64 data
	failed map[string]string
}

func newFakeBulkServer(t *testing.T) *fakeBulkServer {
	return &fakeBulkServer{t: t, byId: map[string]string{}, failed: map[string]string{}}
}

func (s *fakeBulkServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ids []string
		if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
			s.t.Fatalf("decode bulk request: %v", err)
		}

		resp := struct {
			Success []struct {
				Id      string `json:"id"`
				Address string `json:"address"`
				Data    string `json:"data"`
			} `json:"success"`
			Failed map[string]string `json:"failed"`
		}{Failed: map[string]string{}}

		for _, id := range ids {
			if reason, ok := s.failed[id]; ok {
				resp.Failed[id] = reason
				continue
			}
			data, ok := s.byId[id]
			if !ok {
				resp.Failed[id] = "unknown id"
				continue
			}
			resp.Success = append(resp.Success, struct {
				Id      string `json:"id"`
				Address string `json:"address"`
				Data    string `json:"data"`
			}{Id: id, Address: "0x0a5B2A5F780df32655e28c1EBf6F00248e33D63d", Data: data})
		}
		json.NewEncoder(w).Encode(resp)
	})
}

func TestFetchSummariesDecodesSuccesses(t *testing.T) {
	srv := newFakeBulkServer(t)
	srv.byId["rec-1"] = encodePost(t, "rec-1", "11111111-1111-1111-1111-111111111111", "", nil)
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	p := &Pipeline{da: bundler.NewClient(ts.URL), cache: newResultCache()}
	summaries, failures := p.fetchSummaries(contextTODO(), []record.Id{"rec-1"})
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	s, ok := summaries["rec-1"]
	if !ok {
		t.Fatal("expected rec-1 to be decoded")
	}
	if s.Publication.Type() != record.PublicationTypePost {
		t.Fatalf("unexpected publication type %s", s.Publication.Type())
	}
}

func TestFetchSummariesSurfacesBundlerReportedFailure(t *testing.T) {
	srv := newFakeBulkServer(t)
	srv.failed["rec-bad"] = "not found"
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	p := &Pipeline{da: bundler.NewClient(ts.URL), cache: newResultCache()}
	_, failures := p.fetchSummaries(contextTODO(), []record.Id{"rec-bad"})
	if _, ok := failures["rec-bad"]; !ok {
		t.Fatal("expected rec-bad to surface as a failure")
	}
}

func TestFetchSummariesSurfacesDecodeFailure(t *testing.T) {
	srv := newFakeBulkServer(t)
	srv.byId["rec-malformed"] = base64.StdEncoding.EncodeToString([]byte(`{"type":"POST_CREATED","dataAvailabilityId":"not-a-uuid"}`))
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	p := &Pipeline{da: bundler.NewClient(ts.URL), cache: newResultCache()}
	_, failures := p.fetchSummaries(contextTODO(), []record.Id{"rec-malformed"})
	if _, ok := failures["rec-malformed"]; !ok {
		t.Fatal("expected malformed uuid to surface as a decode failure")
	}
}

func TestAttachEchoesAttachesMatchingEcho(t *testing.T) {
	srv := newFakeBulkServer(t)
	srv.byId["echo-1"] = encodeEcho(t, record.PublicationTypePost, "11111111-1111-1111-1111-111111111111")
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	p := &Pipeline{da: bundler.NewClient(ts.URL), cache: newResultCache()}

	pub := &record.PostCreated{}
	pub.Common.DataAvailabilityId = "11111111-1111-1111-1111-111111111111"
	pub.Common.TimestampProofs.Response.Id = "echo-1"
	s := &record.Summary{Id: "rec-1", Publication: pub}

	p.attachEchoes(contextTODO(), map[record.Id]*record.Summary{"rec-1": s})
	if s.TimestampProofsEcho == nil {
		t.Fatal("expected echo to be attached")
	}
	if s.TimestampProofsEcho.DataAvailabilityId != "11111111-1111-1111-1111-111111111111" {
		t.Fatalf("unexpected echo: %+v", s.TimestampProofsEcho)
	}
}

func TestPrefetchPointersSkipsBelowThreshold(t *testing.T) {
	srv := newFakeBulkServer(t)
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	p := &Pipeline{da: bundler.NewClient(ts.URL), cache: newResultCache()}

	summaries := map[record.Id]*record.Summary{}
	for i := 0; i < 3; i++ {
		pub := &record.CommentCreated{}
		pub.Common.ChainProofs.Pointer = &record.Pointer{Location: "ar://target", PointerType: record.PointerTypeOnDa}
		summaries[record.Id(string(rune('a'+i)))] = &record.Summary{Publication: pub}
	}

	p.prefetchPointers(contextTODO(), summaries)
	for _, s := range summaries {
		if s.PointerSummary != nil {
			t.Fatal("expected no pre-fetch below the pointer-bearing threshold")
		}
	}
}

func TestPrefetchPointersFetchesAboveThreshold(t *testing.T) {
	srv := newFakeBulkServer(t)
	srv.byId["target-1"] = encodePost(t, "target-1", "22222222-2222-2222-2222-222222222222", "", nil)
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	p := &Pipeline{da: bundler.NewClient(ts.URL), cache: newResultCache()}

	summaries := map[record.Id]*record.Summary{}
	for i := 0; i < pointerBulkThreshold+1; i++ {
		pub := &record.CommentCreated{}
		pub.Common.ChainProofs.Pointer = &record.Pointer{Location: "ar://target-1", PointerType: record.PointerTypeOnDa}
		summaries[record.Id(string(rune('a'+i)))] = &record.Summary{Publication: pub}
	}

	p.prefetchPointers(contextTODO(), summaries)
	for _, s := range summaries {
		if s.PointerSummary == nil {
			t.Fatal("expected pointer pre-fetch above threshold")
		}
	}
}
