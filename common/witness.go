package common

import "github.com/nspcc-dev/neo-go/pkg/interop/runtime"

// CheckAccountWitness checks witness of the passed account. It panics with
// the given message on fail, so that each method surfaces its own failure
// code to the caller.
func CheckAccountWitness(acc []byte, panicMsg string) {
	if !runtime.CheckWitness(acc) {
		panic(panicMsg)
	}
}
