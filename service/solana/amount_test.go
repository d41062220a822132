package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokenAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     uint64
		wantErr  bool
	}{
		{name: "fractional", amount: "1.5", decimals: 4, want: 15000},
		{name: "whole", amount: "2", decimals: 2, want: 200},
		{name: "whole with point", amount: "2.0", decimals: 2, want: 200},
		{name: "all decimals used", amount: "0.000001", decimals: 6, want: 1},
		{name: "leading dot", amount: ".5", decimals: 2, want: 50},
		{name: "trailing zeros beyond decimals", amount: "1.500", decimals: 2, want: 150},
		{name: "zero decimals", amount: "42", decimals: 0, want: 42},
		{name: "zero", amount: "0", decimals: 6, wantErr: true},
		{name: "zero point zero", amount: "0.00", decimals: 6, wantErr: true},
		{name: "negative", amount: "-1.5", decimals: 6, wantErr: true},
		{name: "precision loss", amount: "0.1234567", decimals: 6, wantErr: true},
		{name: "not a number", amount: "one", decimals: 6, wantErr: true},
		{name: "empty", amount: "", decimals: 6, wantErr: true},
		{name: "bare dot", amount: ".", decimals: 6, wantErr: true},
		{name: "overflow", amount: "18446744073709551616", decimals: 0, wantErr: true},
		{name: "overflow via decimals", amount: "18446744073709.551616", decimals: 9, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTokenAmount(tt.amount, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
