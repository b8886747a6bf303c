// Dump prints the full observable state of a deployed Stead contract: token
// info, band configuration, epoch history and all token holders. With -raw it
// additionally prints every storage item of the contract.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/steadlabs/stead-contract/rpc/stead"
)

const holdersBatch = 100

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	contractHash := flag.String("contract", "", "Stead contract hash in LE form")
	rawStorage := flag.Bool("raw", false, "Also dump raw contract storage (base58 key-value pairs)")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *contractHash == "":
		log.Fatal("missing contract hash")
	}

	h, err := util.Uint160DecodeStringLE(*contractHash)
	if err != nil {
		log.Fatal(fmt.Errorf("decode contract hash: %w", err))
	}

	err = _dump(*neoRPCEndpoint, h, *rawStorage)
	if err != nil {
		log.Fatal(err)
	}
}

func _dump(neoBlockchainRPCEndpoint string, contract util.Uint160, rawStorage bool) error {
	b, err := newRemoteBlockChain(neoBlockchainRPCEndpoint)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	r := stead.NewReader(b.actor, contract)

	err = dumpTokenInfo(r)
	if err != nil {
		return err
	}

	epoch, err := dumpBandState(r)
	if err != nil {
		return err
	}

	err = dumpHistory(r, epoch)
	if err != nil {
		return err
	}

	err = dumpHolders(b, r)
	if err != nil {
		return err
	}

	if rawStorage {
		err = dumpRawStorage(b, contract)
		if err != nil {
			return err
		}
	}

	return nil
}

func dumpTokenInfo(r *stead.ContractReader) error {
	name, err := r.TokenName()
	if err != nil {
		return fmt.Errorf("get token name: %w", err)
	}

	symbol, err := r.Symbol()
	if err != nil {
		return fmt.Errorf("get token symbol: %w", err)
	}

	decimals, err := r.Decimals()
	if err != nil {
		return fmt.Errorf("get token decimals: %w", err)
	}

	supply, err := r.TotalSupply()
	if err != nil {
		return fmt.Errorf("get total supply: %w", err)
	}

	fmt.Printf("Token:        %s (%s, %d decimals)\n", name, symbol, decimals)
	fmt.Printf("Total supply: %s\n", supply)

	return nil
}

func dumpBandState(r *stead.ContractReader) (int64, error) {
	treasury, err := r.Treasury()
	if err != nil {
		return 0, fmt.Errorf("get treasury: %w", err)
	}

	for _, item := range []struct {
		name string
		get  func() (*big.Int, error)
	}{
		{"Oracle price", r.OraclePrice},
		{"Price target", r.PriceTarget},
		{"Tolerance", r.Tolerance},
		{"Expansion rate", r.ExpansionRate},
		{"Contraction rate", r.ContractionRate},
	} {
		v, err := item.get()
		if err != nil {
			return 0, fmt.Errorf("get %s: %w", item.name, err)
		}
		fmt.Printf("%-16s %s\n", item.name+":", v)
	}

	fmt.Printf("Treasury:        %s\n", address.Uint160ToString(treasury))

	epoch, err := r.Epoch()
	if err != nil {
		return 0, fmt.Errorf("get epoch: %w", err)
	}

	fmt.Printf("Epoch:           %s\n", epoch)

	return epoch.Int64(), nil
}

func dumpHistory(r *stead.ContractReader, epoch int64) error {
	if epoch == 0 {
		fmt.Println("No stabilization actions were executed yet")
		return nil
	}

	fmt.Println("Stabilization history:")

	for e := int64(1); e <= epoch; e++ {
		rec, err := r.EpochHistory(big.NewInt(e))
		if err != nil {
			return fmt.Errorf("get history of epoch #%d: %w", e, err)
		}
		if rec == nil {
			// must not happen for epochs up to the current one
			return fmt.Errorf("missing history record for epoch #%d", e)
		}

		fmt.Printf("  #%d: %s of %s at price %s\n", e, rec.Action, rec.Amount, rec.Price)
	}

	return nil
}

func dumpHolders(b *remoteBlockchain, r *stead.ContractReader) error {
	fmt.Println("Holders:")

	sessionID, iter, err := r.Holders()
	if err != nil {
		// fall back for servers without session support
		items, err := r.HoldersExpanded(holdersBatch)
		if err != nil {
			return fmt.Errorf("expand holders iterator: %w", err)
		}
		return printHolders(items)
	}

	defer func() {
		_ = b.actor.TerminateSession(sessionID)
	}()

	for {
		items, err := b.actor.TraverseIterator(sessionID, &iter, holdersBatch)
		if err != nil {
			return fmt.Errorf("traverse holders iterator: %w", err)
		}
		if len(items) == 0 {
			return nil
		}

		err = printHolders(items)
		if err != nil {
			return err
		}
	}
}

func printHolders(items []stackitem.Item) error {
	for _, item := range items {
		pair, ok := item.Value().([]stackitem.Item)
		if !ok || len(pair) != 2 {
			return fmt.Errorf("unexpected holders iterator item: %s", item.Type())
		}

		rawAcc, err := pair[0].TryBytes()
		if err != nil {
			return fmt.Errorf("holder account: %w", err)
		}

		acc, err := util.Uint160DecodeBytesBE(rawAcc)
		if err != nil {
			return fmt.Errorf("decode holder account: %w", err)
		}

		balance, err := pair[1].TryInteger()
		if err != nil {
			return fmt.Errorf("holder balance: %w", err)
		}

		fmt.Printf("  %s: %s\n", address.Uint160ToString(acc), balance)
	}

	return nil
}

func dumpRawStorage(b *remoteBlockchain, contract util.Uint160) error {
	fmt.Printf("Raw storage at block #%d:\n", b.currentBlock)

	return b.iterateContractStorage(contract, func(key, value []byte) error {
		fmt.Printf("  %s: %s\n", base58.Encode(key), base58.Encode(value))
		return nil
	})
}
