// Package config implements the Identity & Config Registry (spec §4.1)
// and the CLI/environment-driven run configuration (spec §6).
package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Environment selects which chain deployment of the hub contract a
// record's claims are replayed against.
type Environment string

const (
	EnvironmentChainA    Environment = "CHAIN_A"
	EnvironmentChainBTest Environment = "CHAIN_B_TEST"
	EnvironmentSandbox   Environment = "SANDBOX"
)

// Deployment selects which submitter whitelist is active.
type Deployment string

const (
	DeploymentProduction Deployment = "PRODUCTION"
	DeploymentStaging    Deployment = "STAGING"
	DeploymentLocal      Deployment = "LOCAL"
)

// ParseEnvironment maps the CLI's case-insensitive -e values onto an
// Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch normalize(s) {
	case "polygon":
		return EnvironmentChainA, nil
	case "mumbai":
		return EnvironmentChainBTest, nil
	case "sandbox":
		return EnvironmentSandbox, nil
	default:
		return "", fmt.Errorf("config: unknown environment %q (want POLYGON, MUMBAI, or SANDBOX)", s)
	}
}

// ParseDeployment maps the CLI's case-insensitive -d values onto a
// Deployment.
func ParseDeployment(s string) (Deployment, error) {
	switch normalize(s) {
	case "production":
		return DeploymentProduction, nil
	case "staging":
		return DeploymentStaging, nil
	case "local":
		return DeploymentLocal, nil
	default:
		return "", fmt.Errorf("config: unknown deployment %q (want PRODUCTION, STAGING, or LOCAL)", s)
	}
}

func normalize(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

var chainIDs = map[Environment]uint32{
	EnvironmentChainA:     137,
	EnvironmentChainBTest: 80001,
	EnvironmentSandbox:    80001,
}

var hubAddresses = map[Environment]common.Address{
	EnvironmentChainA:     common.HexToAddress("0xDb46d1Dc155634Fbc732f92E853b10B288AD5a1a"),
	EnvironmentChainBTest: common.HexToAddress("0x60Ae865ee4C725cd04353b5AAb364553f56ceF82"),
	EnvironmentSandbox:    common.HexToAddress("0x7582177F9E536aB0b6c721e11f383C326F2Ad1D5"),
}

// multicallAddresses holds the well-known Multicall3 aggregator address
// per environment. Multicall3 is deployed at the same address across
// almost every EVM chain; the sandbox entry is kept distinct in case a
// local deployment differs.
var multicallAddresses = map[Environment]common.Address{
	EnvironmentChainA:     common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11"),
	EnvironmentChainBTest: common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11"),
	EnvironmentSandbox:    common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11"),
}

var defaultRPCEndpoints = map[Environment]string{
	EnvironmentChainA:     "https://polygon-rpc.com",
	EnvironmentChainBTest: "https://rpc-mumbai.maticvigil.com",
	EnvironmentSandbox:    "https://rpc-mumbai.maticvigil.com",
}

// submitters is the hard-coded whitelist table, keyed by (environment,
// deployment). Unsupported pairs are a fatal programming error: Submitters
// panics on them.
var submitters = map[Environment]map[Deployment]map[common.Address]struct{}{
	EnvironmentChainA: {
		DeploymentProduction: addressSet(
			"0xBe29464B9784a0d8956f29630d8bc4D7B5737435",
		),
		DeploymentStaging: addressSet(
			"0xBe29464B9784a0d8956f29630d8bc4D7B5737435",
			"0x0a5B2A5F780df32655e28c1EBf6F00248e33D63d",
		),
	},
	EnvironmentChainBTest: {
		DeploymentStaging: addressSet(
			"0x0a5B2A5F780df32655e28c1EBf6F00248e33D63d",
		),
		DeploymentLocal: addressSet(
			"0x0a5B2A5F780df32655e28c1EBf6F00248e33D63d",
		),
	},
	EnvironmentSandbox: {
		DeploymentLocal: addressSet(
			"0x0a5B2A5F780df32655e28c1EBf6F00248e33D63d",
		),
	},
}

func addressSet(hexAddrs ...string) map[common.Address]struct{} {
	out := make(map[common.Address]struct{}, len(hexAddrs))
	for _, a := range hexAddrs {
		out[common.HexToAddress(a)] = struct{}{}
	}
	return out
}

// ChainID returns the EVM chain id for env.
func ChainID(env Environment) uint32 {
	id, ok := chainIDs[env]
	if !ok {
		panic(fmt.Sprintf("config: no chain id registered for environment %q", env))
	}
	return id
}

// HubAddress returns the hub contract address for env.
func HubAddress(env Environment) common.Address {
	addr, ok := hubAddresses[env]
	if !ok {
		panic(fmt.Sprintf("config: no hub address registered for environment %q", env))
	}
	return addr
}

// MulticallAddress returns the Multicall3 aggregator address for env.
func MulticallAddress(env Environment) common.Address {
	addr, ok := multicallAddresses[env]
	if !ok {
		panic(fmt.Sprintf("config: no multicall address registered for environment %q", env))
	}
	return addr
}

// DefaultRPCEndpoint returns the public fallback RPC endpoint for env,
// used when -n is not given.
func DefaultRPCEndpoint(env Environment) string {
	url, ok := defaultRPCEndpoints[env]
	if !ok {
		panic(fmt.Sprintf("config: no default RPC endpoint registered for environment %q", env))
	}
	return url
}

// Submitters returns the whitelist of addresses authorized to sign and
// upload DA records for (env, deployment). Unsupported pairs panic: per
// spec §4.1 this is a fatal programming error, not a recoverable one.
func Submitters(env Environment, deployment Deployment) map[common.Address]struct{} {
	byDeployment, ok := submitters[env]
	if !ok {
		panic(fmt.Sprintf("config: no submitter table for environment %q", env))
	}
	set, ok := byDeployment[deployment]
	if !ok {
		panic(fmt.Sprintf("config: no submitter table for (%q, %q)", env, deployment))
	}
	return set
}

// IsSubmitter reports whether addr is whitelisted for (env, deployment).
func IsSubmitter(env Environment, deployment Deployment, addr common.Address) bool {
	_, ok := Submitters(env, deployment)[addr]
	return ok
}
