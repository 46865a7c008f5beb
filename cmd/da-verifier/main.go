// Command da-verifier replays bundler-submitted social-graph actions
// against EVM chain state and reports whether each one would have
// produced an identical effect on chain (spec §4.8).
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/opendav/da-verifier/internal/bundler"
	"github.com/opendav/da-verifier/internal/chain"
	"github.com/opendav/da-verifier/internal/config"
	"github.com/opendav/da-verifier/internal/logging"
	"github.com/opendav/da-verifier/internal/pipeline"
	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verify"
)

func main() {
	log := logging.New()

	cfg, err := config.Load(flag.NewFlagSet("da-verifier", flag.ExitOnError), os.Args[1:])
	if err != nil {
		log.Fatal("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("config: %v", err)
	}

	log.Info("da-verifier starting: environment=%s deployment=%s node=%s\n", cfg.Environment, cfg.Deployment, cfg.NodeURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("shutdown signal received, draining in-flight work\n")
		cancel()
	}()

	chainClient, err := chain.New(ctx, cfg.NodeURL, config.ChainID(cfg.Environment), config.HubAddress(cfg.Environment), config.MulticallAddress(cfg.Environment))
	if err != nil {
		log.Fatal("chain: %v", err)
	}

	verifier := verify.New(chainClient, config.HubAddress(cfg.Environment), cfg.Environment, cfg.Deployment)
	daClient := bundler.NewClient(cfg.BundlerBaseURL)

	owners := submitterList(cfg.Environment, cfg.Deployment)
	p := pipeline.New(daClient, verifier, log, owners)

	if cfg.TxID != "" {
		err := p.VerifyOne(ctx, record.Id(cfg.TxID))
		log.Result(cfg.TxID, err)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	if err := p.Run(ctx, cfg.Resync); err != nil {
		log.Fatal("pipeline: %v", err)
	}
}

// submitterList renders the whitelist registry as the ordered slice the
// DA-service client's owner-scoped queries take.
func submitterList(env config.Environment, dep config.Deployment) []common.Address {
	set := config.Submitters(env, dep)
	out := make([]common.Address, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	return out
}
