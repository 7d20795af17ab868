package errors

import (
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "chain", false},
		{"valid with dash", "fan-out", false},
		{"valid with underscore", "fan_out", false},
		{"valid with dot", "tree.v2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAlgorithmName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"btree", false},
		{"ltree", false},
		{"exhaustive", false},
		{"", true},
		{"BTree", true},
		{"1tree", true},
		{"b tree", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateAlgorithmName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAlgorithmName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeUnknownAlgorithm) {
				t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeUnknownAlgorithm)
			}
		})
	}
}

func TestValidateMongoURI(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"mongodb://localhost:27017", false},
		{"mongodb+srv://cluster.example.com", false},
		{"", true},
		{"http://localhost:27017", true},
		{"localhost:27017", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateMongoURI(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMongoURI(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRedisAddr(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"localhost:6379", false},
		{"10.0.0.1:6380", false},
		{"", true},
		{"localhost", true},
		{"localhost:", true},
		{"localhost:abc", true},
		{"redis://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateRedisAddr(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRedisAddr(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
