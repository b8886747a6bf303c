// Package steadconst exports constants of the Stead contract that are shared
// with off-chain consumers (RPC wrappers, monitoring, CLI tooling).
package steadconst

// Numeric failure codes of the Stead contract. Codes are stable identifiers:
// they are embedded into panic messages of FAULTed invocations and must never
// be renumbered.
const (
	CodeNotAuthorized         = 1
	CodeInsufficientBalance   = 2
	CodeInsufficientAllowance = 3
	CodeStabilizationFailed   = 4
	CodeInvalidAmount         = 5
	CodeOracleUpdateFailed    = 6
)

// Panic messages of the Stead contract. Every message carries its numeric
// code in a fixed "(code N)" suffix, see Code* constants.
const (
	// ErrNotAuthorized appears when a method requires a witness of a
	// particular account but the invocation carries none, or when
	// initialize is called on a ledger with non-zero supply.
	ErrNotAuthorized = "not authorized (code 1)"
	// ErrInsufficientBalance appears when an account tries to spend more
	// than it holds.
	ErrInsufficientBalance = "insufficient balance (code 2)"
	// ErrInsufficientAllowance appears when transferFrom exceeds the
	// allowance approved by the owner.
	ErrInsufficientAllowance = "insufficient allowance (code 3)"
	// ErrStabilizationFailed appears when a contraction is required but the
	// treasury holds less than the contraction amount.
	ErrStabilizationFailed = "stabilization failed (code 4)"
	// ErrInvalidAmount appears when a negative amount is passed where the
	// contract expects an unsigned value.
	ErrInvalidAmount = "invalid amount (code 5)"
	// ErrOracleUpdateFailed appears when a negative price is passed to
	// setOraclePrice. Zero and any non-negative price are accepted.
	ErrOracleUpdateFailed = "oracle update failed (code 6)"
)

// Action tags used in epoch history records.
const (
	ActionExpansion   = "expansion"
	ActionContraction = "contraction"
)

// Limits of the band configuration. Tolerance and both rates are percentages.
const (
	MaxPercentage = 100
)
