package cipher

import (
	"testing"
)

// fixtureScript mimics the structure of a real player bundle: a helper
// object with renamed transform routines and a decipher function delegating
// to them in order.
const fixtureScript = `var f0={
pN:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c},
vK:function(a,b){a.splice(0,b)},
zQ:function(a){a.reverse()}};
var hr=function(a){a=a.split("");f0.zQ(a,44);f0.vK(a,3);f0.pN(a,2);return a.join("")};`

// Same structure, different helper names and order, returning from reverse.
const fixtureScriptAlt = `var Xu={
aa:function(a){return a.reverse()},
bb:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b]=c;return a},
cc:function(a,b){a.splice(0,b)}};
function dec(a){a=a.split("");Xu.bb(a,1);Xu.aa(a,67);Xu.cc(a,5);Xu.bb(a,3);return a.join("")}`

func TestCompileFixture(t *testing.T) {
	compiled, err := Compile("https://example.com/player.js", fixtureScript)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	expected := []Operation{
		{Kind: OpReverse},
		{Kind: OpSlice, N: 3},
		{Kind: OpSwap, N: 2},
	}
	if len(compiled.Operations) != len(expected) {
		t.Fatalf("Expected %d operations, got %d: %v", len(expected), len(compiled.Operations), compiled.Operations)
	}
	for i, op := range compiled.Operations {
		if op != expected[i] {
			t.Errorf("Operation %d = %v, want %v", i, op, expected[i])
		}
	}
	if compiled.SourceURL != "https://example.com/player.js" {
		t.Errorf("Unexpected SourceURL: %s", compiled.SourceURL)
	}
}

func TestCompileFixtureAlt(t *testing.T) {
	compiled, err := Compile("alt", fixtureScriptAlt)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	expected := []Operation{
		{Kind: OpSwap, N: 1},
		{Kind: OpReverse},
		{Kind: OpSlice, N: 5},
		{Kind: OpSwap, N: 3},
	}
	if len(compiled.Operations) != len(expected) {
		t.Fatalf("Expected %d operations, got %d: %v", len(expected), len(compiled.Operations), compiled.Operations)
	}
	for i, op := range compiled.Operations {
		if op != expected[i] {
			t.Errorf("Operation %d = %v, want %v", i, op, expected[i])
		}
	}
}

func TestCompileDeterministic(t *testing.T) {
	first, err := Compile("u", fixtureScript)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Compile("u", fixtureScript)
		if err != nil {
			t.Fatalf("Compile failed on repeat: %v", err)
		}
		if len(again.Operations) != len(first.Operations) {
			t.Fatal("Compile not deterministic in operation count")
		}
		for j := range first.Operations {
			if again.Operations[j] != first.Operations[j] {
				t.Fatalf("Compile not deterministic at op %d", j)
			}
		}
	}
}

func TestCompileEndToEnd(t *testing.T) {
	compiled, err := Compile("u", fixtureScript)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// reverse("ABCDEFGH") = "HGFEDCBA"; slice 3 = "EDCBA"; swap 2 = "CDEBA".
	if got := compiled.Decipher("ABCDEFGH"); got != "CDEBA" {
		t.Errorf("Decipher = %q, want %q", got, "CDEBA")
	}
}

func TestCompileNoDecipherFunc(t *testing.T) {
	_, err := Compile("u", `var x = 42; function unrelated(b){return b+1}`)
	if err == nil {
		t.Fatal("Expected error for script without decipher function")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestCompileNoHelperObject(t *testing.T) {
	// Decipher-shaped function present, helper object absent.
	script := `var hr=function(a){a=a.split("");f0.zQ(a,44);return a.join("")};`
	_, err := Compile("u", script)
	if err == nil {
		t.Fatal("Expected error for script without helper object")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestCompileUnknownTransform(t *testing.T) {
	// The decipher function calls a helper the object does not define, so the
	// statement cannot be classified.
	script := `var f0={
vK:function(a,b){a.splice(0,b)},
zQ:function(a){a.reverse()}};
var hr=function(a){a=a.split("");f0.zQ(a,1);f0.qq(a,7);return a.join("")};`

	_, err := Compile("u", script)
	if err == nil {
		t.Fatal("Expected error for unclassifiable statement")
	}
	if !IsUnknownTransform(err) {
		t.Errorf("Expected unknown-transform error, got %v", err)
	}
}
