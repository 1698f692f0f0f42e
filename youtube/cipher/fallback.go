package cipher

import (
	"regexp"
	"strings"

	"github.com/robertkrimen/otto"
)

// Loose shapes for the script-execution fallback: only the split/join frame
// of the decipher function is required, not the per-statement transform
// shapes the compiler insists on.
var (
	looseFuncRe = regexp.MustCompile(
		`function(?: ` + jsVar + `)?\(a\)\{a=a\.split\([^\)]*\);[^}]*return a\.join\([^\)]*\)\}`)
	looseCallRe = regexp.MustCompile(`(` + jsVar + `)\.` + jsVar + `\(a[,\)]`)
)

// ExecDecipher evaluates the decipher function extracted from the player
// script in a JavaScript interpreter and applies it to the signature. It is
// the opt-in fallback for script versions whose statements no longer match
// the known transform shapes but whose overall structure is still intact.
func ExecDecipher(script, signature string) (string, error) {
	funcSrc := looseFuncRe.FindString(script)
	if funcSrc == "" {
		return "", NewError(ErrCodeDecipherFuncNotFound, "decipher function not found for script execution")
	}

	call := looseCallRe.FindStringSubmatch(funcSrc)
	if call == nil {
		return "", NewError(ErrCodeDecipherFuncNotFound, "decipher function body has no helper calls")
	}
	objSrc, err := extractHelperSource(script, call[1])
	if err != nil {
		return "", err
	}

	vm := otto.New()
	if _, err := vm.Run(objSrc); err != nil {
		return "", NewError(ErrCodeJSExecutionFailed, "helper object evaluation failed", err.Error())
	}
	if _, err := vm.Run("var __decipher=" + funcSrc + ";"); err != nil {
		return "", NewError(ErrCodeJSExecutionFailed, "decipher function evaluation failed", err.Error())
	}

	value, err := vm.Call("__decipher", nil, signature)
	if err != nil {
		return "", NewError(ErrCodeJSExecutionFailed, "decipher call failed", err.Error())
	}
	result, err := value.ToString()
	if err != nil {
		return "", NewError(ErrCodeJSExecutionFailed, "decipher did not return a string", err.Error())
	}
	return result, nil
}

// extractHelperSource rebuilds the helper object declaration plus any later
// property assignments onto it.
func extractHelperSource(script, objName string) (string, error) {
	q := regexp.QuoteMeta(objName)

	declRe := regexp.MustCompile(`(?:var|let|const)\s+` + q + `\s*=\s*\{`)
	loc := declRe.FindStringIndex(script)
	if loc == nil {
		return "", NewError(ErrCodeHelperObjectNotFound, "helper object declaration not found", objName)
	}
	block, ok := balancedBlock(script[loc[1]-1:])
	if !ok {
		return "", NewError(ErrCodeHelperObjectNotFound, "helper object is unterminated", objName)
	}

	var b strings.Builder
	b.WriteString("var " + objName + "=" + block + ";")

	// Helpers may be attached after the declaration: OBJ.name=function(...){...}
	assignRe := regexp.MustCompile(q + `\.` + jsVar + `\s*=\s*function\s*\(`)
	for _, aloc := range assignRe.FindAllStringIndex(script, -1) {
		fnStart := strings.Index(script[aloc[0]:aloc[1]], "function") + aloc[0]
		fnSrc, ok := balancedBlock(script[fnStart:])
		if !ok {
			continue
		}
		b.WriteString(script[aloc[0]:fnStart] + fnSrc + ";")
	}
	return b.String(), nil
}
