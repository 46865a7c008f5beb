// Package bundler implements the DA-Service Client (spec §4.2): paginated
// discovery of new DA transaction ids and bulk payload fetch, against the
// bundler's GraphQL/bulk-fetch HTTP surface (spec §6).
package bundler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verrors"
)

const (
	maxBulkChunk  = 1000
	retryCount    = 5
	retryWait     = 100 * time.Millisecond
	requestTimeout = 10 * time.Second
)

// Client talks to the bundler's GraphQL query endpoint and bulk-fetch
// endpoint.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
}

// NewClient builds a Client whose retry policy matches spec §4.2
// exactly: 5 retries, fixed 100ms backoff, 10s read timeout.
func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryCount
	rc.RetryWaitMin = retryWait
	rc.RetryWaitMax = retryWait
	rc.Backoff = func(_, _ time.Duration, _ int, _ *http.Response) time.Duration { return retryWait }
	rc.HTTPClient.Timeout = requestTimeout
	rc.Logger = nil // the teacher's clients are quiet by default; the pipeline logs outcomes, not transport retries

	return &Client{http: rc, baseURL: baseURL}
}

// SetLogger wires a *log.Logger for transport-level retry diagnostics,
// mirroring the teacher's WithLogger component option idiom.
func (c *Client) SetLogger(l *log.Logger) {
	c.http.Logger = retryablehttp.LeveledLogger(nil)
	if l != nil {
		c.http.Logger = &stdLogAdapter{l}
	}
}

type stdLogAdapter struct{ l *log.Logger }

func (a *stdLogAdapter) Error(msg string, keysAndValues ...interface{}) { a.l.Println(append([]interface{}{"ERROR", msg}, keysAndValues...)...) }
func (a *stdLogAdapter) Info(msg string, keysAndValues ...interface{})  {}
func (a *stdLogAdapter) Debug(msg string, keysAndValues ...interface{}) {}
func (a *stdLogAdapter) Warn(msg string, keysAndValues ...interface{})  { a.l.Println(append([]interface{}{"WARN", msg}, keysAndValues...)...) }

// Edge is one result row of a QueryIds page.
type Edge struct {
	Id     record.Id
	Owner  common.Address
	Cursor record.Cursor
}

// PageInfo describes pagination state for a QueryIds page.
type PageInfo struct {
	HasNext   bool
	EndCursor record.Cursor
}

// QueryIdsResult is the decoded response of one DataAvailabilityTransactions query.
type QueryIdsResult struct {
	Edges    []Edge
	PageInfo PageInfo
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

const dataAvailabilityTransactionsQuery = `
query DataAvailabilityTransactions($owners: [String!]!, $limit: Int!, $after: String, $order: DataAvailabilityOrder!) {
  transactions(owners: $owners, limit: $limit, after: $after, order: $order, hasTags: true) {
    edges {
      cursor
      node {
        id
        address
      }
    }
    pageInfo {
      endCursor
      hasNextPage
    }
  }
}`

type graphqlResponse struct {
	Data struct {
		Transactions struct {
			Edges []struct {
				Cursor string `json:"cursor"`
				Node   struct {
					Id      string `json:"id"`
					Address string `json:"address"`
				} `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				EndCursor   string `json:"endCursor"`
				HasNextPage bool   `json:"hasNextPage"`
			} `json:"pageInfo"`
		} `json:"transactions"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// QueryIds runs one paginated DataAvailabilityTransactions query.
func (c *Client) QueryIds(ctx context.Context, owners []common.Address, limit int, after record.Cursor, order record.Order) (*QueryIdsResult, error) {
	checksummed := make([]string, len(owners))
	for i, o := range owners {
		checksummed[i] = o.Hex()
	}

	var afterVar interface{}
	if after != "" {
		afterVar = string(after)
	}

	body := graphqlRequest{
		Query: dataAvailabilityTransactionsQuery,
		Variables: map[string]interface{}{
			"owners": checksummed,
			"limit":  limit,
			"after":  afterVar,
			"order":  string(order),
		},
	}

	var resp graphqlResponse
	if err := c.post(ctx, "/graphql", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, verrors.New(verrors.KindCannotConnectToBundler, fmt.Errorf("bundler graphql error: %s", resp.Errors[0].Message))
	}

	out := &QueryIdsResult{
		PageInfo: PageInfo{
			HasNext:   resp.Data.Transactions.PageInfo.HasNextPage,
			EndCursor: record.Cursor(resp.Data.Transactions.PageInfo.EndCursor),
		},
	}
	for _, e := range resp.Data.Transactions.Edges {
		out.Edges = append(out.Edges, Edge{
			Id:     record.Id(e.Node.Id),
			Owner:  common.HexToAddress(e.Node.Address),
			Cursor: record.Cursor(e.Cursor),
		})
	}
	return out, nil
}

// BulkItem is one successfully fetched payload.
type BulkItem struct {
	Id         record.Id
	Owner      common.Address
	DataBase64 string
}

// BulkFetchResult is the aggregated result of one or more chunked
// bulk-fetch requests.
type BulkFetchResult struct {
	Success []BulkItem
	Failed  map[record.Id]string
}

type bulkFetchResponse struct {
	Success []struct {
		Id      string `json:"id"`
		Address string `json:"address"`
		Data    string `json:"data"`
	} `json:"success"`
	Failed map[string]string `json:"failed"`
}

// BulkFetch downloads payloads for ids, chunked at 1,000 ids/request.
func (c *Client) BulkFetch(ctx context.Context, ids []record.Id) (*BulkFetchResult, error) {
	out := &BulkFetchResult{Failed: map[record.Id]string{}}

	for start := 0; start < len(ids); start += maxBulkChunk {
		end := start + maxBulkChunk
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		payload := make([]string, len(chunk))
		for i, id := range chunk {
			payload[i] = string(id)
		}

		var resp bulkFetchResponse
		if err := c.post(ctx, "/bulk/txs/data", payload, &resp); err != nil {
			return nil, err
		}

		for _, s := range resp.Success {
			out.Success = append(out.Success, BulkItem{
				Id:         record.Id(s.Id),
				Owner:      common.HexToAddress(s.Address),
				DataBase64: s.Data,
			})
		}
		for id, reason := range resp.Failed {
			out.Failed[record.Id(id)] = reason
		}
	}

	return out, nil
}

// LatestCursor issues one Desc+limit=1 query and returns its end cursor.
func (c *Client) LatestCursor(ctx context.Context, owners []common.Address) (record.Cursor, error) {
	res, err := c.QueryIds(ctx, owners, 1, "", record.OrderDesc)
	if err != nil {
		return "", err
	}
	if len(res.Edges) == 0 {
		return "", verrors.New(verrors.KindNoLastTransactionFound, nil)
	}
	return res.Edges[0].Cursor, nil
}

// BulkIdsSince walks Asc+limit=1000 pages from cursor until exhaustion
// or maxPages is reached. It returns nil ids and the input cursor
// unchanged if nothing new was produced.
func (c *Client) BulkIdsSince(ctx context.Context, owners []common.Address, cursor record.Cursor, maxPages int) ([]record.Id, record.Cursor, error) {
	var ids []record.Id
	after := cursor
	for page := 0; page < maxPages; page++ {
		res, err := c.QueryIds(ctx, owners, maxBulkChunk, after, record.OrderAsc)
		if err != nil {
			return nil, cursor, err
		}
		for _, e := range res.Edges {
			ids = append(ids, e.Id)
		}
		after = res.PageInfo.EndCursor
		if !res.PageInfo.HasNext {
			break
		}
	}
	if len(ids) == 0 {
		return nil, cursor, nil
	}
	return ids, after, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("bundler: marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("bundler: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return verrors.New(verrors.KindCannotConnectToBundler, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return verrors.New(verrors.KindCannotConnectToBundler, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= 400 {
		return verrors.New(verrors.KindCannotConnectToBundler, fmt.Errorf("bundler returned status %d: %s", resp.StatusCode, respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return verrors.New(verrors.KindCannotConnectToBundler, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
