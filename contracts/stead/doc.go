/*
Package stead implements Stead contract, an elastic-supply token for Neo N3
chains.

Stead contract is a NEP-17 compatible token ledger coupled with an automatic
supply stabilization engine. The contract tracks balances and allowances,
observes a price reported by an external oracle authority, and mints Stead
tokens to (or burns them from) a configured treasury account to push the
reported price back into a tolerance band around the target.

The treasury is an ordinary ledger account: it can be funded and drained with
regular transfers, only the stabilization engine treats it specially. Every
executed stabilization action advances the epoch counter and appends an
immutable record to the epoch history; decisions that take no action (price
inside the band) and contractions the treasury cannot cover leave the epoch
and the history untouched.

Failed invocations FAULT and are fully rolled back by the VM, so no method
ever leaves a partially applied mutation. Panic messages carry stable numeric
failure codes, see the steadconst package.

# Contract notifications

Transfer notification. This is a NEP-17 standard notification emitted on
transfers as well as on mints (null from) and burns (null to).

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

Approval notification. It is produced when an owner sets the allowance of a
spender.

	Approval:
	  - name: owner
	    type: Hash160
	  - name: spender
	    type: Hash160
	  - name: amount
	    type: Integer

OraclePriceUpdate notification. It is produced when the oracle authority
reports a new price, before the triggered stabilization check runs.

	OraclePriceUpdate:
	  - name: price
	    type: Integer

Expansion notification. It is produced when the stabilization engine mints
tokens to the treasury.

	Expansion:
	  - name: epoch
	    type: Integer
	  - name: price
	    type: Integer
	  - name: amount
	    type: Integer

Contraction notification. It is produced when the stabilization engine burns
tokens from the treasury.

	Contraction:
	  - name: epoch
	    type: Integer
	  - name: price
	    type: Integer
	  - name: amount
	    type: Integer
*/
package stead
