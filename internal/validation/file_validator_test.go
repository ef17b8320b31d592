package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "marketcli/internal/errors"
)

func TestValidateUpload(t *testing.T) {
	v := NewFileValidator(1024, []string{".csv"}, nil)

	tests := []struct {
		name     string
		filename string
		size     int64
		head     []byte
		wantErr  string
	}{
		{
			name:     "valid csv",
			filename: "products.csv",
			size:     100,
			head:     []byte("brand,price\nAcme,10\n"),
		},
		{
			name:     "uppercase extension allowed",
			filename: "PRODUCTS.CSV",
			size:     100,
			head:     []byte("brand\n"),
		},
		{
			name:     "empty file",
			filename: "products.csv",
			size:     0,
			wantErr:  "empty",
		},
		{
			name:     "too large",
			filename: "products.csv",
			size:     4096,
			wantErr:  "maximum size",
		},
		{
			name:     "wrong extension",
			filename: "products.xlsx",
			size:     100,
			wantErr:  "extension",
		},
		{
			name:     "no extension",
			filename: "products",
			size:     100,
			wantErr:  "extension",
		},
		{
			name:     "binary content",
			filename: "products.csv",
			size:     100,
			head:     []byte{'P', 'K', 0x03, 0x04, 0x00},
			wantErr:  "text CSV",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.filename, tt.size, tt.head)

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			assert.Contains(t, strings.ToLower(err.Error()), strings.ToLower(tt.wantErr))
		})
	}
}

func TestValidateUploadDefaults(t *testing.T) {
	// Zero max size disables the size check; no suffixes falls back to .csv.
	v := NewFileValidator(0, nil, nil)

	assert.NoError(t, v.ValidateUpload("big.csv", 1<<40, []byte("brand\n")))
	assert.Error(t, v.ValidateUpload("big.tsv", 100, []byte("brand\n")))
}
