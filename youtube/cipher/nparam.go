package cipher

import (
	"regexp"
	"strings"

	"github.com/dop251/goja"
)

// n-function call sites as they appear near the "n" query parameter lookup.
// Newer scripts reference the function through a one-element alias array.
var nFuncNameRes = []*regexp.Regexp{
	regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$_]+)(?:\[(\d+)\])?\([a-zA-Z0-9$_]+\)`),
	regexp.MustCompile(`\bb=([a-zA-Z0-9$_]+)(?:\[(\d+)\])?\(b\),a\.set\("n",b\)`),
}

// TransformN applies the player script's n-parameter (throttling) transform
// to nval using a JavaScript interpreter. Scripts without an n-function leave
// the value unchanged.
func TransformN(script, nval string) (string, error) {
	name := findNFunctionName(script)
	if name == "" {
		return nval, nil
	}

	src, err := extractFunction(script, name)
	if err != nil {
		return "", err
	}

	vm := goja.New()
	if _, err := vm.RunString("var __ncode=" + src + ";"); err != nil {
		return "", NewError(ErrCodeJSExecutionFailed, "n-function evaluation failed", err.Error())
	}
	fn, ok := goja.AssertFunction(vm.Get("__ncode"))
	if !ok {
		return "", NewError(ErrCodeJSExecutionFailed, "n-function is not callable")
	}
	res, err := fn(goja.Undefined(), vm.ToValue(nval))
	if err != nil {
		return "", NewError(ErrCodeJSExecutionFailed, "n-function call failed", err.Error())
	}
	return res.String(), nil
}

func findNFunctionName(script string) string {
	for _, re := range nFuncNameRes {
		m := re.FindStringSubmatch(script)
		if m == nil {
			continue
		}
		name := m[1]
		if m[2] != "" {
			// Alias array indirection: var NAME=[actual]
			aliasRe := regexp.MustCompile(`var\s+` + regexp.QuoteMeta(name) + `\s*=\s*\[([a-zA-Z0-9$_]+)\]`)
			if am := aliasRe.FindStringSubmatch(script); am != nil {
				return am[1]
			}
			continue
		}
		return name
	}
	return ""
}

// extractFunction locates name's function definition and returns it as a
// standalone function expression. Brace matching ignores string and regex
// literals, which the known n-function bodies do not nest braces inside.
func extractFunction(script, name string) (string, error) {
	q := regexp.QuoteMeta(name)
	for _, re := range []*regexp.Regexp{
		regexp.MustCompile(q + `\s*=\s*function\s*\(`),
		regexp.MustCompile(`function\s+` + q + `\s*\(`),
	} {
		loc := re.FindStringIndex(script)
		if loc == nil {
			continue
		}
		start := strings.Index(script[loc[0]:loc[1]], "function") + loc[0]
		src, ok := balancedBlock(script[start:])
		if !ok {
			continue
		}
		return src, nil
	}
	return "", NewError(ErrCodeNFuncNotFound, "n-function body not found", name)
}

// balancedBlock returns s up to and including the brace that closes the
// first opening brace.
func balancedBlock(s string) (string, bool) {
	depth := 0
	started := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
			started = true
		case '}':
			depth--
			if started && depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
