package urls

import (
	"testing"

	"github.com/muurk/sharewatch/internal/shares"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantHost  string
		wantShare string
	}{
		{
			name:      "smb url",
			input:     "smb://nas1.local/Media",
			wantHost:  "nas1.local",
			wantShare: "Media",
		},
		{
			name:      "smb url with trailing slash",
			input:     "smb://10.0.0.5/Backup/",
			wantHost:  "10.0.0.5",
			wantShare: "Backup",
		},
		{
			name:      "bare host and share",
			input:     "nas1.local/Media",
			wantHost:  "nas1.local",
			wantShare: "Media",
		},
		{
			name:      "unc path",
			input:     `\\nas1.local\Media`,
			wantHost:  "nas1.local",
			wantShare: "Media",
		},
		{
			name:      "surrounding whitespace",
			input:     "  smb://nas1.local/Media  ",
			wantHost:  "nas1.local",
			wantShare: "Media",
		},
		{
			name:      "uppercase scheme",
			input:     "SMB://nas1.local/Media",
			wantHost:  "nas1.local",
			wantShare: "Media",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if loc.Host != tt.wantHost {
				t.Errorf("Parse(%q).Host = %v, want %v", tt.input, loc.Host, tt.wantHost)
			}
			if loc.ShareName != tt.wantShare {
				t.Errorf("Parse(%q).ShareName = %v, want %v", tt.input, loc.ShareName, tt.wantShare)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType shares.ErrorType
	}{
		{name: "ftp scheme", input: "ftp://nas1/share", wantType: shares.ErrTypeUnsupportedProtocol},
		{name: "nfs scheme", input: "nfs://nas1/share", wantType: shares.ErrTypeUnsupportedProtocol},
		{name: "empty input", input: "", wantType: shares.ErrTypeInvalidHostname},
		{name: "only slashes", input: "///", wantType: shares.ErrTypeInvalidHostname},
		{name: "missing share", input: "smb://nas1.local", wantType: shares.ErrTypeInvalidSharePath},
		{name: "nested path", input: "smb://nas1.local/Media/sub", wantType: shares.ErrTypeInvalidSharePath},
		{name: "blank share name", input: "nas1.local/ /", wantType: shares.ErrTypeInvalidSharePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", tt.input)
			}
			shareErr, ok := err.(*shares.ShareError)
			if !ok {
				t.Fatalf("Parse(%q) error type = %T, want *shares.ShareError", tt.input, err)
			}
			if shareErr.Type != tt.wantType {
				t.Errorf("Parse(%q) error type = %v, want %v", tt.input, shareErr.Type, tt.wantType)
			}
		})
	}
}

func TestLocation_String(t *testing.T) {
	loc := Location{Host: "nas1.local", ShareName: "Media"}
	if got := loc.String(); got != "smb://nas1.local/Media" {
		t.Errorf("Location.String() = %v, want smb://nas1.local/Media", got)
	}
}
