// Package deploy provides Stead contract deployment procedure for Neo
// blockchain networks.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/steadlabs/stead-contract/contracts/stead/steadconst"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for Stead contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to
	// the blockchain.
	actor.RPCActor
}

// Prm groups parameters of the Stead contract deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// The contract address is a function of this account, so repeated runs
	// with the same account and artifacts are idempotent.
	LocalAccount *wallet.Account

	// Compiled contract artifacts.
	NEF      nef.File
	Manifest manifest.Manifest

	// Treasury is the account the stabilization engine mints to and burns
	// from.
	Treasury util.Uint160

	// Band configuration. PriceTarget must be positive, the percentages must
	// be in [0, 100].
	PriceTarget     int64
	Tolerance       int64
	ExpansionRate   int64
	ContractionRate int64
}

func (prm Prm) validate() error {
	switch {
	case prm.Logger == nil:
		return errors.New("missing logger")
	case prm.Blockchain == nil:
		return errors.New("missing blockchain client")
	case prm.LocalAccount == nil:
		return errors.New("missing local account")
	case prm.Treasury.Equals(util.Uint160{}):
		return errors.New("missing treasury account")
	case prm.PriceTarget <= 0:
		return errors.New("price target must be positive")
	}
	for _, p := range [...]struct {
		name string
		val  int64
	}{
		{"tolerance", prm.Tolerance},
		{"expansion rate", prm.ExpansionRate},
		{"contraction rate", prm.ContractionRate},
	} {
		if p.val < 0 || p.val > steadconst.MaxPercentage {
			return fmt.Errorf("%s out of [0, %d] range: %d", p.name, steadconst.MaxPercentage, p.val)
		}
	}
	return nil
}

// Contract deploys the Stead contract to the Neo network represented by given
// Prm.Blockchain and returns its on-chain address.
//
// Contract is idempotent: if a contract with the expected address already
// exists on the chain, the found address is returned without sending
// anything. Deployment progress is logged in detail.
func Contract(ctx context.Context, prm Prm) (util.Uint160, error) {
	if err := prm.validate(); err != nil {
		return util.Uint160{}, fmt.Errorf("invalid parameters: %w", err)
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	expected := state.CreateContractHash(act.Sender(), prm.NEF.Checksum, prm.Manifest.Name)

	alreadyOnChain, err := contractPresent(act, expected)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("check contract presence on the chain: %w", err)
	}
	if alreadyOnChain {
		prm.Logger.Info("contract is already on the chain, nothing to do",
			zap.Stringer("address", expected))
		return expected, nil
	}

	if err := ctx.Err(); err != nil {
		return util.Uint160{}, err
	}

	prm.Logger.Info("contract is missing from the chain, deploying...",
		zap.Stringer("address", expected),
		zap.Stringer("treasury", prm.Treasury))

	data := []any{
		prm.Treasury,
		prm.PriceTarget,
		prm.Tolerance,
		prm.ExpansionRate,
		prm.ContractionRate,
	}

	txHash, vub, err := management.New(act).Deploy(&prm.NEF, &prm.Manifest, data)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send contract deployment transaction: %w", err)
	}

	prm.Logger.Info("contract deployment transaction sent, waiting for persistence...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	res, err := act.Wait(txHash, vub, nil)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for deployment transaction %s: %w", txHash, err)
	}
	if res.VMState != vmstate.Halt {
		return util.Uint160{}, fmt.Errorf("deployment transaction %s failed: %s", txHash, res.FaultException)
	}

	prm.Logger.Info("contract successfully deployed", zap.Stringer("address", expected))

	return expected, nil
}

func contractPresent(act *actor.Actor, addr util.Uint160) (bool, error) {
	res, err := management.NewReader(act).GetContract(addr)
	if err != nil {
		if strings.Contains(err.Error(), "Unknown contract") {
			return false, nil
		}
		return false, err
	}
	return res != nil, nil
}
