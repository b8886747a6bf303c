package stead

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/steadlabs/stead-contract/common"
	"github.com/steadlabs/stead-contract/contracts/stead/steadconst"
)

type (
	// Token holds all token info.
	Token struct {
		// Token name
		Name string
		// Ticker symbol
		Symbol string
		// Amount of decimals
		Decimals int
	}

	// HistoryRecord describes a single executed stabilization action. Records
	// are keyed by the epoch they were executed in and are never rewritten.
	HistoryRecord struct {
		// Oracle price at decision time
		Price int
		// Action tag, one of steadconst.ActionExpansion and
		// steadconst.ActionContraction
		Action string
		// Amount minted to or burned from the treasury
		Amount int
	}
)

const (
	name     = "Stead Token"
	symbol   = "STEAD"
	decimals = 8

	balancePrefix   = 'b'
	allowancePrefix = 'w'
	historyPrefix   = 'h'

	supplyKey      = 's'
	priceKey       = 'p'
	targetKey      = 't'
	toleranceKey   = 'c'
	expansionKey   = 'x'
	contractionKey = 'y'
	treasuryKey    = 'r'
	epochKey       = 'e'
)

var token Token

func init() {
	token = Token{
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
	}
}

// nolint:unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		treasury        interop.Hash160
		target          int
		tolerance       int
		expansionRate   int
		contractionRate int
	})

	if len(args.treasury) != interop.Hash160Len {
		panic("incorrect length of treasury account")
	}
	if args.target <= 0 {
		panic("price target must be positive")
	}
	checkPercentage(args.tolerance)
	checkPercentage(args.expansionRate)
	checkPercentage(args.contractionRate)

	storage.Put(ctx, treasuryKey, args.treasury)
	storage.Put(ctx, targetKey, args.target)
	storage.Put(ctx, toleranceKey, args.tolerance)
	storage.Put(ctx, expansionKey, args.expansionRate)
	storage.Put(ctx, contractionKey, args.contractionRate)
	storage.Put(ctx, epochKey, 0)

	runtime.Log("stead contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("stead contract updated")
}

// TokenName returns the human-readable name of the Stead token.
func TokenName() string {
	return token.Name
}

// Symbol is a NEP-17 standard method that returns the Stead token symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals is a NEP-17 standard method that returns precision of Stead
// balances. The oracle price uses the same fixed-point precision.
func Decimals() int {
	return token.Decimals
}

// TotalSupply is a NEP-17 standard method that returns the total amount of
// Stead tokens in circulation.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns the Stead balance of the
// specified account.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getBalance(ctx, account)
}

// Allowance returns the amount the spender is still allowed to withdraw from
// the owner account via TransferFrom. Never approved pairs read as 0.
func Allowance(owner, spender interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, allowanceKey(owner, spender))
}

// Initialize performs a one-shot bootstrap of the ledger: it mints the
// initial supply to the admin account. It can be invoked only while the total
// supply is exactly 0, otherwise it panics with steadconst.ErrNotAuthorized.
//
// It produces Transfer notification.
func Initialize(initialSupply int, admin interop.Hash160) bool {
	ctx := storage.GetContext()

	if len(admin) != interop.Hash160Len {
		panic("incorrect length of admin account")
	}
	if initialSupply < 0 {
		panic(steadconst.ErrInvalidAmount)
	}
	if getSupply(ctx) != 0 {
		panic(steadconst.ErrNotAuthorized)
	}

	mint(ctx, admin, initialSupply)
	runtime.Log("ledger initialized")

	return true
}

// Transfer is a NEP-17 standard method that moves Stead tokens between
// accounts. It can be invoked only by the account owner.
//
// It produces Transfer notification.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetContext()

	checkAccount(from)
	checkAccount(to)
	if amount < 0 {
		panic(steadconst.ErrInvalidAmount)
	}
	common.CheckAccountWitness(from, steadconst.ErrNotAuthorized)

	fromBalance := getBalance(ctx, from)
	if fromBalance < amount {
		panic(steadconst.ErrInsufficientBalance)
	}

	storage.Put(ctx, balanceKey(from), fromBalance-amount)
	storage.Put(ctx, balanceKey(to), getBalance(ctx, to)+amount)

	runtime.Notify("Transfer", from, to, amount)

	return true
}

// Approve sets the allowance of the spender over the owner account to the
// given amount, replacing any previously approved value. It can be invoked
// only by the owner.
//
// It produces Approval notification.
func Approve(owner, spender interop.Hash160, amount int) bool {
	ctx := storage.GetContext()

	checkAccount(owner)
	checkAccount(spender)
	if amount < 0 {
		panic(steadconst.ErrInvalidAmount)
	}
	common.CheckAccountWitness(owner, steadconst.ErrNotAuthorized)

	storage.Put(ctx, allowanceKey(owner, spender), amount)

	runtime.Notify("Approval", owner, spender, amount)

	return true
}

// TransferFrom spends the allowance approved by the owner: it moves tokens
// from the owner account to the recipient and decreases the allowance of the
// spender accordingly. It can be invoked only by the spender. The allowance
// is checked before the owner balance, so an invocation short on both fails
// with steadconst.ErrInsufficientAllowance.
//
// It produces Transfer notification.
func TransferFrom(spender, owner, to interop.Hash160, amount int) bool {
	ctx := storage.GetContext()

	checkAccount(spender)
	checkAccount(owner)
	checkAccount(to)
	if amount < 0 {
		panic(steadconst.ErrInvalidAmount)
	}
	common.CheckAccountWitness(spender, steadconst.ErrNotAuthorized)

	key := allowanceKey(owner, spender)
	allowance := common.GetInt(ctx, key)
	if allowance < amount {
		panic(steadconst.ErrInsufficientAllowance)
	}

	ownerBalance := getBalance(ctx, owner)
	if ownerBalance < amount {
		panic(steadconst.ErrInsufficientBalance)
	}

	storage.Put(ctx, key, allowance-amount)
	storage.Put(ctx, balanceKey(owner), ownerBalance-amount)
	storage.Put(ctx, balanceKey(to), getBalance(ctx, to)+amount)

	runtime.Notify("Transfer", owner, to, amount)

	return true
}

// SetOraclePrice stores the externally reported price and synchronously runs
// the stabilization check against it, all within the same invocation. There
// is no authorization on this method, access control is expected at the
// oracle boundary.
//
// It produces OraclePriceUpdate notification, and Transfer with Expansion or
// Contraction notifications if a stabilization action is executed.
func SetOraclePrice(price int) bool {
	ctx := storage.GetContext()

	if price < 0 {
		panic(steadconst.ErrOracleUpdateFailed)
	}

	storage.Put(ctx, priceKey, price)
	runtime.Notify("OraclePriceUpdate", price)

	stabilize(ctx)

	return true
}

// RunStabilizationCheck re-evaluates the stabilization decision against the
// last reported oracle price. It is useful to retry a contraction that
// previously failed after the treasury has been topped up.
//
// It produces Transfer with Expansion or Contraction notifications if a
// stabilization action is executed.
func RunStabilizationCheck() bool {
	ctx := storage.GetContext()
	stabilize(ctx)

	return true
}

// OraclePrice returns the last price reported via SetOraclePrice.
func OraclePrice() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, priceKey)
}

// PriceTarget returns the configured price target.
func PriceTarget() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, targetKey)
}

// Tolerance returns the configured tolerance percentage of the target band.
func Tolerance() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, toleranceKey)
}

// ExpansionRate returns the configured expansion rate percentage.
func ExpansionRate() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, expansionKey)
}

// ContractionRate returns the configured contraction rate percentage.
func ContractionRate() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, contractionKey)
}

// Treasury returns the account that serves as the mint/burn reservoir for
// stabilization actions. It is an ordinary ledger account: nothing prevents
// regular transfers into or out of it.
func Treasury() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, treasuryKey).(interop.Hash160)
}

// Epoch returns the number of executed stabilization actions. 0 means no
// action has been executed yet.
func Epoch() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, epochKey)
}

// EpochHistory returns the stabilization action executed in the given epoch,
// or null if the epoch never happened. Epochs are numbered from 1.
func EpochHistory(epoch int) any {
	ctx := storage.GetReadOnlyContext()

	data := storage.Get(ctx, historyKey(epoch))
	if data == nil {
		return nil
	}

	return std.Deserialize(data.([]byte)).(HistoryRecord)
}

// Holders returns an iterator over all accounts that ever held Stead tokens,
// including accounts with a zero balance. Iterator values are key-value
// pairs of account and balance.
func Holders() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{balancePrefix}, storage.RemovePrefix)
}

// Version returns version of the contract.
func Version() int {
	return common.Version
}

// stabilize compares the last oracle price against the target band and mints
// to or burns from the treasury when the price is outside it. Executed
// actions advance the epoch and append a history record. A contraction the
// treasury cannot cover panics, so the whole invocation (including a price
// write that triggered it) is rolled back by the VM.
func stabilize(ctx storage.Context) {
	price := common.GetInt(ctx, priceKey)
	target := common.GetInt(ctx, targetKey)

	band := target * common.GetInt(ctx, toleranceKey) / 100
	upper := target + band
	lower := target - band

	if price > upper {
		amount := getSupply(ctx) * common.GetInt(ctx, expansionKey) / 100
		mint(ctx, treasury(ctx), amount)
		epoch := recordAction(ctx, price, steadconst.ActionExpansion, amount)

		runtime.Notify("Expansion", epoch, price, amount)
		runtime.Log("supply expanded")
	} else if price < lower {
		acc := treasury(ctx)
		amount := getSupply(ctx) * common.GetInt(ctx, contractionKey) / 100
		if amount > getBalance(ctx, acc) {
			panic(steadconst.ErrStabilizationFailed)
		}

		burn(ctx, acc, amount)
		epoch := recordAction(ctx, price, steadconst.ActionContraction, amount)

		runtime.Notify("Contraction", epoch, price, amount)
		runtime.Log("supply contracted")
	}
}

// recordAction appends a history record for the next epoch and advances the
// epoch counter. It returns the epoch the action was recorded in.
func recordAction(ctx storage.Context, price int, action string, amount int) int {
	epoch := common.GetInt(ctx, epochKey) + 1

	common.SetSerialized(ctx, historyKey(epoch), HistoryRecord{
		Price:  price,
		Action: action,
		Amount: amount,
	})
	storage.Put(ctx, epochKey, epoch)

	return epoch
}

// mint increases the total supply and credits the amount to the account.
// Internal-only primitive reached from Initialize and expansion.
func mint(ctx storage.Context, to interop.Hash160, amount int) {
	storage.Put(ctx, balanceKey(to), getBalance(ctx, to)+amount)
	storage.Put(ctx, supplyKey, getSupply(ctx)+amount)

	runtime.Notify("Transfer", interop.Hash160(nil), to, amount)
}

// burn decreases the total supply and debits the amount from the account.
// Internal-only primitive reached from contraction, the caller checks the
// account balance first.
func burn(ctx storage.Context, from interop.Hash160, amount int) {
	supply := getSupply(ctx)
	if supply < amount {
		panic("negative supply after burn")
	}

	storage.Put(ctx, balanceKey(from), getBalance(ctx, from)-amount)
	storage.Put(ctx, supplyKey, supply-amount)

	runtime.Notify("Transfer", from, interop.Hash160(nil), amount)
}

func getSupply(ctx storage.Context) int {
	return common.GetInt(ctx, supplyKey)
}

// getBalance reads the balance of the account. Zero-balance entries are
// retained in storage, so both a never-credited and a fully spent account
// read as 0.
func getBalance(ctx storage.Context, acc interop.Hash160) int {
	return common.GetInt(ctx, balanceKey(acc))
}

func treasury(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, treasuryKey).(interop.Hash160)
}

func balanceKey(acc interop.Hash160) []byte {
	return append([]byte{balancePrefix}, acc...)
}

func allowanceKey(owner, spender interop.Hash160) []byte {
	key := append([]byte{allowancePrefix}, owner...)
	return append(key, spender...)
}

func historyKey(epoch int) []byte {
	return append([]byte{historyPrefix}, std.Itoa(epoch, 10)...)
}

func checkAccount(acc interop.Hash160) {
	if len(acc) != interop.Hash160Len {
		panic("incorrect length of account script hash")
	}
}

func checkPercentage(value int) {
	if value < 0 || value > steadconst.MaxPercentage {
		panic("percentage out of range")
	}
}
