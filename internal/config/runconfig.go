package config

import (
	"flag"
	"fmt"
	"os"
)

// RunConfig is the fully resolved configuration for one process
// invocation: CLI flags merged with environment defaults, in the
// teacher's explicit-fields idiom (no reflection-based binding).
type RunConfig struct {
	NodeURL     string
	Environment Environment
	Deployment  Deployment
	TxID        string // non-empty => verify-one mode
	Resync      bool   // -r: start from the first DA record

	BundlerBaseURL string
}

const defaultBundlerBaseURL = "https://gw.irys.xyz/data-availability"

// Load parses args (excluding argv[0]) against fs and resolves a
// RunConfig. fs must be a fresh *flag.FlagSet; callers own calling
// fs.Parse indirectly through Load.
func Load(fs *flag.FlagSet, args []string) (*RunConfig, error) {
	var (
		nodeURL    = fs.String("n", "", "EVM RPC endpoint (default: public endpoint for -e)")
		envFlag    = fs.String("e", "POLYGON", "environment: POLYGON|MUMBAI|SANDBOX")
		depFlag    = fs.String("d", "PRODUCTION", "deployment: PRODUCTION|STAGING|LOCAL")
		txID       = fs.String("t", "", "verify a single record id and exit")
		resync     = fs.Bool("r", false, "resync from the first DA record instead of the live tail")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	env, err := ParseEnvironment(*envFlag)
	if err != nil {
		return nil, err
	}
	dep, err := ParseDeployment(*depFlag)
	if err != nil {
		return nil, err
	}

	node := *nodeURL
	if node == "" {
		node = DefaultRPCEndpoint(env)
	}

	bundlerURL := os.Getenv("BUNDLER_BASE_URL")
	if bundlerURL == "" {
		bundlerURL = defaultBundlerBaseURL
	}

	return &RunConfig{
		NodeURL:        node,
		Environment:    env,
		Deployment:     dep,
		TxID:           *txID,
		Resync:         *resync,
		BundlerBaseURL: bundlerURL,
	}, nil
}

// Validate checks that the (Environment, Deployment) pair has a
// registered submitter table, surfacing the registry's fatal
// programming error as an ordinary error before the driver commits to
// it.
func (c *RunConfig) Validate() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("config: %v", r)
		}
	}()
	Submitters(c.Environment, c.Deployment)
	return nil
}
