package errors

import (
	"testing"
)

func TestValidateActorName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "src", false},
		{"valid with spaces", "fir filter", false},
		{"valid unicode", "Δ-decoder", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateActorName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateActorName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRate(t *testing.T) {
	tests := []struct {
		rate    int64
		wantErr bool
	}{
		{1, false},
		{7, false},
		{0, true},
		{-3, true},
	}

	for _, tt := range tests {
		err := ValidateRate(tt.rate)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRate(%d) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidRate) {
			t.Errorf("ValidateRate(%d) code = %v, want %v", tt.rate, GetCode(err), ErrCodeInvalidRate)
		}
	}
}

func TestValidateInitialTokens(t *testing.T) {
	if err := ValidateInitialTokens(0); err != nil {
		t.Errorf("ValidateInitialTokens(0) error = %v", err)
	}
	if err := ValidateInitialTokens(12); err != nil {
		t.Errorf("ValidateInitialTokens(12) error = %v", err)
	}
	if err := ValidateInitialTokens(-1); err == nil {
		t.Error("ValidateInitialTokens(-1) should fail")
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "graphs/fir.json", false},
		{"absolute", "/tmp/out.svg", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"null byte", "a\x00b", true},
		{"control char", "a\x07b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
