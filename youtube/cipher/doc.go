/*
Package cipher compiles and applies YouTube signature ciphers.

Protected stream URLs carry a signature that the player script transforms
before use. The transform is a short sequence built from three primitives
(reverse, slice, swap) delegated to helper routines whose names change
between script deployments. This package recovers the sequence structurally
and applies it without executing the script.

# Architecture

1. Compiler

Compile locates the decipher function and its helper object in the raw
script text and classifies each helper by the shape of its body, never by
its name:

  - full array reversal            -> reverse
  - front truncation by N          -> slice(N), N from the call-site literal
  - index-0 exchange via temp var  -> swap(N), N from the call-site literal

A script in which the decipher function cannot be located, or whose
statements match none of the three shapes, fails compilation with a
structured error; compilation is never retried.

2. Decipherer

CompiledCipher.Decipher applies the operation list in order. It is a pure
function over the signature string.

3. Source cache

SourceCache memoizes compiled ciphers by script URL for the lifetime of the
owning client, and briefly caches raw script bodies for the n-parameter
transform. Concurrent first requests may compile twice; compilation is pure,
so the final stored value is consistent.

4. Fallbacks

ExecDecipher (opt-in via SourceCache.WithScriptFallback) evaluates the
extracted decipher snippet in an interpreter when the statement shapes no
longer classify. TransformN runs the script's n-parameter throttling
transform, returning the input unchanged when the script has none.

# Usage

	sc := cipher.NewSourceCache(httpClient)
	sig, err := sc.Decipher(ctx, scriptURL, rawSignature)
	if err != nil {
		if cipher.IsNotFound(err) {
			// script format changed
		}
		return err
	}

# Error codes

  - DECIPHER_FUNC_NOT_FOUND: decipher function not located in script
  - HELPER_OBJECT_NOT_FOUND: transform helper object not located
  - UNKNOWN_TRANSFORM: statement matches none of the known shapes
  - MISSING_CALL_LITERAL: slice/swap call without a numeric literal
  - SCRIPT_DOWNLOAD_FAILED: player script fetch failed
  - JS_EXECUTION_FAILED: interpreter fallback failed
  - N_FUNC_NOT_FOUND: n-function body not found

# Thread safety

The cache serializes its store internally; compiled ciphers are immutable
and safe to share across goroutines.
*/
package cipher
