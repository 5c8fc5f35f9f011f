package errors

import "testing"

func TestValidateBoardName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "letters-1843", false},
		{"dotted", "v1.2", false},
		{"underscore", "field_notes", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"traversal", "a..b", true},
		{"slash", "a/b", true},
		{"leading dot", ".hidden", true},
		{"space", "my board", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBoardName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBoardName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateBoardName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateResourceID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"manifest url", "https://iiif.example.org/manifest/1", false},
		{"note urn", "urn:pinboard:note:abc", false},

		{"empty", "", true},
		{"ftp", "ftp://example.org/x", true},
		{"space", "https://example.org/a b", true},
		{"short urn", "urn:x", true},
		{"no host", "https:///path", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResourceID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateResourceID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
