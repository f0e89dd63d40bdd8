package pipeline

import (
	"testing"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
	"github.com/matzehuels/wheeltool/pkg/wheel"
)

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	opts := Options{WheelPath: "demo-1.0-py3-none-any.whl"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", opts.CacheTTL, DefaultCacheTTL)
	}
	if opts.Environment["python_version"] == "" {
		t.Error("default environment not applied")
	}
	if opts.Logger == nil {
		t.Error("logger not defaulted")
	}
}

func TestOptions_ValidateAndSetDefaults_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing path", Options{}},
		{"bad policy", Options{WheelPath: "demo-1.0-py3-none-any.whl", Legacy: wheel.LegacyPolicy(7)}},
		{"negative ttl", Options{WheelPath: "demo-1.0-py3-none-any.whl", CacheTTL: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}
