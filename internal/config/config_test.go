package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vatdesk/internal/vat"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VAT_RATE", "")
	t.Setenv("LEDGER_SOURCE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, vat.Standard, cfg.VATRate)
	assert.Equal(t, LedgerSourceNone, cfg.LedgerSource)
	assert.Equal(t, "info", cfg.GetLoggerConfig().Level)
}

func TestLoadCustomRate(t *testing.T) {
	t.Setenv("VAT_RATE", "5%")
	t.Setenv("LEDGER_SOURCE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.05, float64(cfg.VATRate), 1e-12)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		ok   bool
	}{
		{"bad rate", map[string]string{"VAT_RATE": "lots"}, false},
		{"unknown source", map[string]string{"LEDGER_SOURCE": "ftp"}, false},
		{"sheets without url", map[string]string{"LEDGER_SOURCE": "sheets", "GOOGLE_SHEET_URL": ""}, false},
		{"sheets with url", map[string]string{"LEDGER_SOURCE": "sheets", "GOOGLE_SHEET_URL": "https://docs.google.com/spreadsheets/d/abc/edit"}, true},
		{"database without dsn", map[string]string{"LEDGER_SOURCE": "database", "DATABASE_DSN": ""}, false},
		{"database bad driver", map[string]string{"LEDGER_SOURCE": "database", "DATABASE_DSN": "x", "DATABASE_DRIVER": "oracle"}, false},
		{"database sqlite", map[string]string{"LEDGER_SOURCE": "Database", "DATABASE_DSN": "ledger.db", "DATABASE_DRIVER": "sqlite"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"VAT_RATE", "LEDGER_SOURCE", "GOOGLE_SHEET_URL", "DATABASE_DSN", "DATABASE_DRIVER"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
