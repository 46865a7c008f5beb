// Package chain implements the Chain Client (spec §4.4): reads blocks
// and simulates the hub contract's *WithSig entry points against
// on-chain state, rate-limited and retried the way an RPC provider with
// a strict request budget demands.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/opendav/da-verifier/internal/hubabi"
	"github.com/opendav/da-verifier/internal/verrors"
)

const (
	rateLimitRetries    = 10
	timeoutRetries      = 10
	initialBackoff      = 500 * time.Millisecond
	requestsPerSecond   = 8
	burstSize           = 8
)

// Client wraps an ethclient.Client with a rate limiter and a
// retry-with-backoff policy matching spec §4.4 exactly: 10 rate-limit
// retries, 10 timeout retries, 500ms initial backoff.
type Client struct {
	rpc        *ethclient.Client
	limiter    *rate.Limiter
	chainID    *big.Int
	hub        *hubabi.Hub
	hubAddr    common.Address
	multicall  *hubabi.Multicall3
}

// New dials url and binds the hub and Multicall3 contracts at the
// given addresses.
func New(ctx context.Context, url string, chainID uint32, hubAddr, multicallAddr common.Address) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, verrors.New(verrors.KindDataCantBeReadFromNode, fmt.Errorf("dial %s: %w", url, err))
	}

	hub, err := hubabi.NewHub(hubAddr, rpc)
	if err != nil {
		return nil, fmt.Errorf("chain: bind hub contract: %w", err)
	}
	mc, err := hubabi.NewMulticall3(multicallAddr, rpc)
	if err != nil {
		return nil, fmt.Errorf("chain: bind multicall3: %w", err)
	}

	return &Client{
		rpc:       rpc,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		chainID:   new(big.Int).SetUint64(uint64(chainID)),
		hub:       hub,
		hubAddr:   hubAddr,
		multicall: mc,
	}, nil
}

// withRetry wraps op in the rate-limit wait plus the spec's dual
// retry budget: rate-limit errors and timeouts are retried separately,
// each up to their own ceiling, with exponential backoff from a 500ms
// floor.
func (c *Client) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	rlAttempts, toAttempts := 0, 0

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoff

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return verrors.New(verrors.KindDataCantBeReadFromNode, err)
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		switch {
		case isRateLimited(err) && rlAttempts < rateLimitRetries:
			rlAttempts++
		case isTimeout(err) && toAttempts < timeoutRetries:
			toAttempts++
		default:
			return err
		}

		select {
		case <-time.After(b.NextBackOff()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func isRateLimited(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "rate limit") ||
		strings.Contains(strings.ToLower(err.Error()), "429")
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout") ||
		strings.Contains(strings.ToLower(err.Error()), "deadline exceeded")
}

// GetBlock fetches a block by number.
func (c *Client) GetBlock(ctx context.Context, number *big.Int) (*types.Block, error) {
	var block *types.Block
	err := c.withRetry(ctx, func(ctx context.Context) error {
		b, err := c.rpc.BlockByNumber(ctx, number)
		if err != nil {
			return err
		}
		block = b
		return nil
	})
	if err != nil {
		return nil, verrors.New(verrors.KindBlockCantBeReadFromNode, err)
	}
	return block, nil
}

// GetBlockByHash fetches a block by hash.
func (c *Client) GetBlockByHash(ctx context.Context, hash common.Hash) (*types.Block, error) {
	var block *types.Block
	err := c.withRetry(ctx, func(ctx context.Context) error {
		b, err := c.rpc.BlockByHash(ctx, hash)
		if err != nil {
			return err
		}
		block = b
		return nil
	})
	if err != nil {
		return nil, verrors.New(verrors.KindBlockCantBeReadFromNode, err)
	}
	return block, nil
}

// SigNonce returns the hub contract's current sig nonce for signer.
func (c *Client) SigNonce(ctx context.Context, signer common.Address) (*big.Int, error) {
	var nonce *big.Int
	err := c.withRetry(ctx, func(ctx context.Context) error {
		n, err := c.hub.SigNonces(&bind.CallOpts{Context: ctx}, signer)
		if err != nil {
			return err
		}
		nonce = n
		return nil
	})
	if err != nil {
		return nil, verrors.New(verrors.KindDataCantBeReadFromNode, err)
	}
	return nonce, nil
}

// PubCount returns the hub contract's publication count for profileId.
func (c *Client) PubCount(ctx context.Context, profileId *big.Int) (*big.Int, error) {
	var count *big.Int
	err := c.withRetry(ctx, func(ctx context.Context) error {
		n, err := c.hub.GetPubCount(&bind.CallOpts{Context: ctx}, profileId)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		return nil, verrors.New(verrors.KindDataCantBeReadFromNode, err)
	}
	return count, nil
}

// Dispatcher returns the hub contract's registered dispatcher for profileId.
func (c *Client) Dispatcher(ctx context.Context, profileId *big.Int) (common.Address, error) {
	var addr common.Address
	err := c.withRetry(ctx, func(ctx context.Context) error {
		a, err := c.hub.GetDispatcher(&bind.CallOpts{Context: ctx}, profileId)
		if err != nil {
			return err
		}
		addr = a
		return nil
	})
	if err != nil {
		return common.Address{}, verrors.New(verrors.KindDataCantBeReadFromNode, err)
	}
	return addr, nil
}

// OwnerOf returns the hub contract's NFT owner for tokenId.
func (c *Client) OwnerOf(ctx context.Context, tokenId *big.Int) (common.Address, error) {
	var addr common.Address
	err := c.withRetry(ctx, func(ctx context.Context) error {
		a, err := c.hub.OwnerOf(&bind.CallOpts{Context: ctx}, tokenId)
		if err != nil {
			return err
		}
		addr = a
		return nil
	})
	if err != nil {
		return common.Address{}, verrors.New(verrors.KindDataCantBeReadFromNode, err)
	}
	return addr, nil
}

// CallResult is the outcome of simulating one hub method against a
// specific block. Revert is non-empty when the call reverted; in that
// case Simulated is false and Revert holds, for diagnostics, the RPC
// error's raw revert data when the node supplies it, else the error text.
type CallResult struct {
	Simulated bool
	Revert    string
}

// Simulate replays calldata against the hub contract at blockNumber
// with eth_call, the technique the *WithSig verifiers use to check that
// a publication's calldata executes cleanly against the state at the
// time it was supposedly published.
func (c *Client) Simulate(ctx context.Context, calldata []byte, blockNumber *big.Int) (*CallResult, error) {
	msg := ethereum.CallMsg{To: &c.hubAddr, Data: calldata}

	var out []byte
	callErr := c.withRetry(ctx, func(ctx context.Context) error {
		res, err := c.rpc.CallContract(ctx, msg, blockNumber)
		if err != nil {
			return err
		}
		out = res
		return nil
	})

	if callErr != nil {
		if revertErr, ok := asRevert(callErr); ok {
			return &CallResult{Simulated: false, Revert: revertErr}, nil
		}
		return nil, verrors.New(verrors.KindSimulationNodeCouldNotRun, callErr)
	}
	_ = out
	return &CallResult{Simulated: true}, nil
}

func asRevert(err error) (string, bool) {
	var callErr rpcDataError
	if errors.As(err, &callErr) {
		return callErr.ErrorData(), true
	}
	if strings.Contains(strings.ToLower(err.Error()), "revert") {
		return err.Error(), true
	}
	return "", false
}

type rpcDataError interface {
	error
	ErrorData() string
}

// MulticallItem is one read bound for Multicall3.
type MulticallItem struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// Multicall batches reads through the Multicall3 aggregator in a
// single RPC round trip.
func (c *Client) Multicall(ctx context.Context, items []MulticallItem, blockNumber *big.Int) ([]hubabi.Multicall3Result, error) {
	calls := make([]hubabi.Multicall3Call3, len(items))
	for i, it := range items {
		calls[i] = hubabi.Multicall3Call3{Target: it.Target, AllowFailure: it.AllowFailure, CallData: it.CallData}
	}

	var results []hubabi.Multicall3Result
	err := c.withRetry(ctx, func(ctx context.Context) error {
		r, err := c.multicall.Aggregate3(&bind.CallOpts{Context: ctx, BlockNumber: blockNumber}, calls)
		if err != nil {
			return err
		}
		results = r
		return nil
	})
	if err != nil {
		return nil, verrors.New(verrors.KindSimulationNodeCouldNotRun, err)
	}
	return results, nil
}

// ChainID returns the configured chain id.
func (c *Client) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }
