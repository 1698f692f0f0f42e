package cipher

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ytget/ytstream/internal/logger"
)

var log = logger.WithComponent(logger.ComponentCipher)

const jsVar = `[a-zA-Z_\$][a-zA-Z_0-9\$]*`

// Helper body shapes. Helper and parameter names are renamed between script
// deployments, so operation identity is decided by the shape of the helper
// body, never by its name.
const (
	reverseBody = `:function\(a\)\{` +
		`(?:return )?a\.reverse\(\)` +
		`\}`
	spliceBody = `:function\(a,b\)\{` +
		`a\.splice\(0,b\)` +
		`\}`
	swapBody = `:function\(a,b\)\{` +
		`var c=a\[0\];a\[0\]=a\[b(?:%a\.length)?\];a\[b(?:%a\.length)?\]=c(?:;return a)?` +
		`\}`
)

var (
	helperObjRe = regexp.MustCompile(fmt.Sprintf(
		`(?:var|let|const)\s+(%s)=\{\s*((?:(?:%s%s|%s%s|%s%s),?\s*)+)\}\s*;?`,
		jsVar, jsVar, swapBody, jsVar, spliceBody, jsVar, reverseBody))
	decipherFuncRe = regexp.MustCompile(fmt.Sprintf(
		`function(?: %s)?\(a\)\{`+
			`a=a\.split\([^\)]*\);\s*`+
			`((?:(?:a=)?%s\.%s\(a,\d+\);)+)`+
			`return a\.join\([^\)]*\)`+
			`\}`, jsVar, jsVar, jsVar))
	reverseKeyRe = regexp.MustCompile(fmt.Sprintf(`(?m)(?:^|[,{]|\s)(%s)%s`, jsVar, reverseBody))
	spliceKeyRe  = regexp.MustCompile(fmt.Sprintf(`(?m)(?:^|[,{]|\s)(%s)%s`, jsVar, spliceBody))
	swapKeyRe    = regexp.MustCompile(fmt.Sprintf(`(?m)(?:^|[,{]|\s)(%s)%s`, jsVar, swapBody))
)

// Compile parses the player script text and produces the ordered operation
// list applied to stream signatures. It fails with a structured error when
// the decipher function cannot be located or a statement matches none of the
// known transform shapes; compilation is never retried.
func Compile(sourceURL, script string) (*CompiledCipher, error) {
	funcMatch := decipherFuncRe.FindStringSubmatch(script)
	if funcMatch == nil {
		return nil, NewError(ErrCodeDecipherFuncNotFound, "decipher function not found in player script", sourceURL)
	}
	funcBody := funcMatch[1]

	objMatch := helperObjRe.FindStringSubmatch(script)
	if objMatch == nil {
		return nil, NewError(ErrCodeHelperObjectNotFound, "transform helper object not found in player script", sourceURL)
	}
	objName := objMatch[1]
	objBody := objMatch[2]

	kindByKey := make(map[string]OpKind)
	for _, m := range reverseKeyRe.FindAllStringSubmatch(objBody, -1) {
		kindByKey[m[1]] = OpReverse
	}
	for _, m := range spliceKeyRe.FindAllStringSubmatch(objBody, -1) {
		kindByKey[m[1]] = OpSlice
	}
	for _, m := range swapKeyRe.FindAllStringSubmatch(objBody, -1) {
		kindByKey[m[1]] = OpSwap
	}
	if len(kindByKey) == 0 {
		return nil, NewError(ErrCodeHelperObjectNotFound, "no transform helpers classified", sourceURL)
	}

	callRe, err := regexp.Compile(fmt.Sprintf(
		`(?:a=)?%s\.(%s)\(a,(\d+)\)`, regexp.QuoteMeta(objName), jsVar))
	if err != nil {
		return nil, NewError(ErrCodeDecipherFuncNotFound, "call pattern compilation failed", err.Error())
	}

	calls := callRe.FindAllStringSubmatch(funcBody, -1)
	if len(calls) == 0 {
		return nil, NewError(ErrCodeDecipherFuncNotFound, "decipher function body has no transform calls", sourceURL)
	}

	ops := make([]Operation, 0, len(calls))
	for _, call := range calls {
		key := call[1]
		kind, ok := kindByKey[key]
		if !ok {
			return nil, NewError(ErrCodeUnknownTransform, "statement matches no known transform shape", key)
		}
		op := Operation{Kind: kind}
		if kind == OpSlice || kind == OpSwap {
			n, err := strconv.Atoi(call[2])
			if err != nil {
				return nil, NewError(ErrCodeMissingLiteral, "transform call has no numeric literal", key)
			}
			op.N = n
		}
		ops = append(ops, op)
	}

	log.Debug("compiled cipher", map[string]any{"source": sourceURL, "ops": len(ops)})
	return &CompiledCipher{SourceURL: sourceURL, Operations: ops}, nil
}
