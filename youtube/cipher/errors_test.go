package cipher

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without details",
			err:      NewError(ErrCodeDecipherFuncNotFound, "decipher function not found"),
			expected: "DECIPHER_FUNC_NOT_FOUND: decipher function not found",
		},
		{
			name:     "with details",
			err:      NewError(ErrCodeUnknownTransform, "statement matches no known transform shape", "xY"),
			expected: "UNKNOWN_TRANSFORM: statement matches no known transform shape (xY)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorJSON(t *testing.T) {
	e := NewError(ErrCodeScriptDownload, "player script download failed", "status 500")

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["code"] != ErrCodeScriptDownload {
		t.Errorf("Expected code %s, got %v", ErrCodeScriptDownload, decoded["code"])
	}
	if s, _ := decoded["error"].(string); !strings.Contains(s, "SCRIPT_DOWNLOAD_FAILED") {
		t.Errorf("Expected error field to carry the code, got %v", decoded["error"])
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		notFound         bool
		unknownTransform bool
		jsError          bool
	}{
		{"decipher func not found", NewError(ErrCodeDecipherFuncNotFound, "m"), true, false, false},
		{"helper object not found", NewError(ErrCodeHelperObjectNotFound, "m"), true, false, false},
		{"n-func not found", NewError(ErrCodeNFuncNotFound, "m"), true, false, false},
		{"unknown transform", NewError(ErrCodeUnknownTransform, "m"), false, true, false},
		{"missing literal", NewError(ErrCodeMissingLiteral, "m"), false, true, false},
		{"js execution", NewError(ErrCodeJSExecutionFailed, "m"), false, false, true},
		{"script download", NewError(ErrCodeScriptDownload, "m"), false, false, false},
		{"plain error", errors.New("m"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.notFound)
			}
			if got := IsUnknownTransform(tt.err); got != tt.unknownTransform {
				t.Errorf("IsUnknownTransform = %v, want %v", got, tt.unknownTransform)
			}
			if got := IsJSError(tt.err); got != tt.jsError {
				t.Errorf("IsJSError = %v, want %v", got, tt.jsError)
			}
		})
	}
}
