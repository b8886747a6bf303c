package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

const steadPath = "../contracts/stead"

// Band configuration used by most tests. Values are picked so that the
// scenarios move in round numbers: with 1_000_000_000 of supply, 5% rates
// mint or burn exactly 50_000_000.
const (
	defaultTarget          = 100_000_000
	defaultTolerance       = 5
	defaultExpansionRate   = 5
	defaultContractionRate = 5
)

func compileSteadContract(t *testing.T, e *neotest.Executor) *neotest.Contract {
	return neotest.CompileFile(t, e.CommitteeHash, steadPath, path.Join(steadPath, "config.yml"))
}

// deploySteadContract deploys the contract with the given treasury account
// and default band configuration, overridable via config in
// [target, tolerance, expansionRate, contractionRate] order.
func deploySteadContract(t *testing.T, e *neotest.Executor, treasury util.Uint160, config ...int64) util.Uint160 {
	args := []any{
		treasury,
		int64(defaultTarget),
		int64(defaultTolerance),
		int64(defaultExpansionRate),
		int64(defaultContractionRate),
	}
	for i := range config {
		args[i+1] = config[i]
	}

	c := compileSteadContract(t, e)
	e.DeployContract(t, c, args)
	return c.Hash
}

// newSteadInvoker deploys the contract on a fresh chain and returns a
// committee invoker together with the treasury account.
func newSteadInvoker(t *testing.T, config ...int64) (*neotest.ContractInvoker, neotest.Signer) {
	e := newExecutor(t)
	treasury := e.NewAccount(t)
	h := deploySteadContract(t, e, treasury.ScriptHash(), config...)
	return e.CommitteeInvoker(h), treasury
}
