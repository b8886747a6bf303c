// Package stead contains RPC wrappers for Stead contract.
package stead

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/steadlabs/stead-contract/contracts/stead/steadconst"
)

// HistoryRecord is a contract-specific stead.HistoryRecord type used by its
// methods.
type HistoryRecord struct {
	Price  *big.Int
	Action string
	Amount *big.Int
}

// Error is a failure of a Stead contract invocation carrying the stable
// numeric code of the contract's error taxonomy.
type Error struct {
	Code    int64
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("stead contract error %d: %s", e.Code, e.Message)
}

var errMessages = map[string]int64{
	steadconst.ErrNotAuthorized:         steadconst.CodeNotAuthorized,
	steadconst.ErrInsufficientBalance:   steadconst.CodeInsufficientBalance,
	steadconst.ErrInsufficientAllowance: steadconst.CodeInsufficientAllowance,
	steadconst.ErrStabilizationFailed:   steadconst.CodeStabilizationFailed,
	steadconst.ErrInvalidAmount:         steadconst.CodeInvalidAmount,
	steadconst.ErrOracleUpdateFailed:    steadconst.CodeOracleUpdateFailed,
}

// ParseError extracts a typed contract failure from a FAULT exception text.
// It returns false if the exception does not carry one of the contract's
// stable error messages.
func ParseError(exception string) (*Error, bool) {
	for msg, code := range errMessages {
		if strings.Contains(exception, msg) {
			return &Error{Code: code, Message: msg}, true
		}
	}
	return nil, false
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
	TerminateSession(sessionID uuid.UUID) error
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	nep17.Actor

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	nep17.TokenReader
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	nep17.TokenWriter
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract
// hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{*nep17.NewReader(invoker, hash), invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the
// given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	var t = nep17.New(actor, hash)
	return &Contract{ContractReader{t.TokenReader, actor, hash}, t.TokenWriter, actor, hash}
}

// TokenName invokes `tokenName` method of contract.
func (c *ContractReader) TokenName() (string, error) {
	return unwrap.UTF8String(c.invoker.Call(c.hash, "tokenName"))
}

// Allowance invokes `allowance` method of contract.
func (c *ContractReader) Allowance(owner, spender util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "allowance", owner, spender))
}

// OraclePrice invokes `oraclePrice` method of contract.
func (c *ContractReader) OraclePrice() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "oraclePrice"))
}

// PriceTarget invokes `priceTarget` method of contract.
func (c *ContractReader) PriceTarget() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "priceTarget"))
}

// Tolerance invokes `tolerance` method of contract.
func (c *ContractReader) Tolerance() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "tolerance"))
}

// ExpansionRate invokes `expansionRate` method of contract.
func (c *ContractReader) ExpansionRate() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "expansionRate"))
}

// ContractionRate invokes `contractionRate` method of contract.
func (c *ContractReader) ContractionRate() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "contractionRate"))
}

// Treasury invokes `treasury` method of contract.
func (c *ContractReader) Treasury() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "treasury"))
}

// Epoch invokes `epoch` method of contract.
func (c *ContractReader) Epoch() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "epoch"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// EpochHistory invokes `epochHistory` method of contract. It returns nil
// without an error for epochs that never happened.
func (c *ContractReader) EpochHistory(epoch *big.Int) (*HistoryRecord, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "epochHistory", epoch))
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	return itemToHistoryRecord(item)
}

// Holders invokes `holders` method of contract. The returned iterator
// yields key-value pairs of account and balance, its session must be
// terminated by the caller.
func (c *ContractReader) Holders() (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "holders"))
}

// HoldersExpanded is similar to Holders (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that will get the specified
// number of result items from the iterator right in the VM and return them to
// you. It's only limited by VM stack and GAS available for RPC invocations.
func (c *ContractReader) HoldersExpanded(_numOfIteratorItems int) ([]stackitem.Item, error) {
	return unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "holders", _numOfIteratorItems))
}

// Initialize creates a transaction invoking `initialize` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Initialize(initialSupply *big.Int, admin util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "initialize", initialSupply, admin)
}

// InitializeTransaction creates a transaction invoking `initialize` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) InitializeTransaction(initialSupply *big.Int, admin util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "initialize", initialSupply, admin)
}

// InitializeUnsigned creates a transaction invoking `initialize` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) InitializeUnsigned(initialSupply *big.Int, admin util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "initialize", nil, initialSupply, admin)
}

// Approve creates a transaction invoking `approve` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Approve(owner, spender util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "approve", owner, spender, amount)
}

// ApproveTransaction creates a transaction invoking `approve` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) ApproveTransaction(owner, spender util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "approve", owner, spender, amount)
}

// TransferFrom creates a transaction invoking `transferFrom` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) TransferFrom(spender, owner, to util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "transferFrom", spender, owner, to, amount)
}

// TransferFromTransaction creates a transaction invoking `transferFrom` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) TransferFromTransaction(spender, owner, to util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "transferFrom", spender, owner, to, amount)
}

// SetOraclePrice creates a transaction invoking `setOraclePrice` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetOraclePrice(price *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setOraclePrice", price)
}

// SetOraclePriceTransaction creates a transaction invoking `setOraclePrice` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetOraclePriceTransaction(price *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setOraclePrice", price)
}

// RunStabilizationCheck creates a transaction invoking `runStabilizationCheck` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RunStabilizationCheck() (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "runStabilizationCheck")
}

// RunStabilizationCheckTransaction creates a transaction invoking `runStabilizationCheck` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RunStabilizationCheckTransaction() (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "runStabilizationCheck")
}

func itemToHistoryRecord(item stackitem.Item) (*HistoryRecord, error) {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != 3 {
		return nil, errors.New("wrong number of structure elements")
	}

	price, err := arr[0].TryInteger()
	if err != nil {
		return nil, fmt.Errorf("field Price: %w", err)
	}

	actionBytes, err := arr[1].TryBytes()
	if err != nil {
		return nil, fmt.Errorf("field Action: %w", err)
	}
	if !utf8.Valid(actionBytes) {
		return nil, errors.New("field Action: not a UTF-8 string")
	}

	amount, err := arr[2].TryInteger()
	if err != nil {
		return nil, fmt.Errorf("field Amount: %w", err)
	}

	return &HistoryRecord{
		Price:  price,
		Action: string(actionBytes),
		Amount: amount,
	}, nil
}
