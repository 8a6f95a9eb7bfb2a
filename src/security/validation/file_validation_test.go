package validation

import (
	"bytes"
	"os"
	"testing"

	"github.com/username/cafeledger/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestValidateClientContentType(t *testing.T) {
	tests := []struct {
		contentType string
		ok          bool
	}{
		{"text/csv", true},
		{"text/csv; charset=utf-8", true},
		{"TEXT/PLAIN", true},
		{"text/tab-separated-values", true},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", false},
		{"image/png", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidateClientContentType(tt.contentType)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateClientContentType(%q): err=%v, want ok=%t", tt.contentType, err, tt.ok)
		}
	}
}

func TestValidateUploadIsText(t *testing.T) {
	csvReader := bytes.NewReader([]byte("date,item,price,quantity\n2026-01-01,Latte,4.50,2\n"))
	if _, err := ValidateUploadIsText(csvReader); err != nil {
		t.Errorf("CSV content rejected: %v", err)
	}
	// The read pointer must be reset for the parser.
	if pos, _ := csvReader.Seek(0, 1); pos != 0 {
		t.Errorf("read pointer not reset, at %d", pos)
	}

	pngHeader := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	if _, err := ValidateUploadIsText(bytes.NewReader(pngHeader)); err == nil {
		t.Error("binary content should be rejected")
	}
}
