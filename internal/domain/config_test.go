package domain

import (
	"errors"
	"math"
	"testing"
)

func TestParseECLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    ECLevel
		wantErr bool
	}{
		{in: "L", want: ECLevelL},
		{in: "m", want: ECLevelM},
		{in: " Q ", want: ECLevelQ},
		{in: "h", want: ECLevelH},
		{in: "", wantErr: true},
		{in: "X", wantErr: true},
		{in: "medium", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseECLevel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("ParseECLevel(%q) error = %v, want ErrInvalidConfig", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseECLevel(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseECLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestECLevel_String(t *testing.T) {
	for _, l := range []ECLevel{ECLevelL, ECLevelM, ECLevelQ, ECLevelH} {
		back, err := ParseECLevel(l.String())
		if err != nil || back != l {
			t.Errorf("ParseECLevel(%v.String()) = %v, %v", l, back, err)
		}
	}
	if got := ECLevel(9).String(); got != "ECLevel(9)" {
		t.Errorf("String() of unknown level = %q", got)
	}
}

func TestDefaultQrConfig(t *testing.T) {
	cfg := DefaultQrConfig()
	if cfg.BytesPerCode != 630 || cfg.Version != 21 || cfg.Level != ECLevelM {
		t.Fatalf("DefaultQrConfig() = %+v, want {630 21 M}", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestQrConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  QrConfig
	}{
		{"zero bytes per code", QrConfig{BytesPerCode: 0, Version: 21, Level: ECLevelM}},
		{"negative bytes per code", QrConfig{BytesPerCode: -1, Version: 21, Level: ECLevelM}},
		{"bytes per code beyond version 40", QrConfig{BytesPerCode: MaxBytesPerCode + 1, Version: 40, Level: ECLevelL}},
		{"bytes per code max int", QrConfig{BytesPerCode: math.MaxInt, Version: 21, Level: ECLevelM}},
		{"version too low", QrConfig{BytesPerCode: 630, Version: 0, Level: ECLevelM}},
		{"version too high", QrConfig{BytesPerCode: 630, Version: 41, Level: ECLevelM}},
		{"unknown level", QrConfig{BytesPerCode: 630, Version: 21, Level: ECLevel(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestQrConfig_ValidateLargestChunk(t *testing.T) {
	cfg := QrConfig{BytesPerCode: MaxBytesPerCode, Version: 40, Level: ECLevelL}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
