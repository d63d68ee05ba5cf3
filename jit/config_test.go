package jit

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string // field expected to fail, "" if cfg should validate
	}{
		{"default", DefaultConfig(), ""},
		{"zero MaxGroups", Config{MaxGroups: 0, MaxDepth: 1, MaxInstrs: 1}, "MaxGroups"},
		{"negative MaxGroups", Config{MaxGroups: -1, MaxDepth: 1, MaxInstrs: 1}, "MaxGroups"},
		{"oversized MaxGroups", Config{MaxGroups: 1 << 21, MaxDepth: 1, MaxInstrs: 1}, "MaxGroups"},
		{"zero MaxDepth", Config{MaxGroups: 1, MaxDepth: 0, MaxInstrs: 1}, "MaxDepth"},
		{"oversized MaxDepth", Config{MaxGroups: 1, MaxDepth: 1 << 17, MaxInstrs: 1}, "MaxDepth"},
		{"zero MaxInstrs", Config{MaxGroups: 1, MaxDepth: 1, MaxInstrs: 0}, "MaxInstrs"},
		{"oversized MaxInstrs", Config{MaxGroups: 1, MaxDepth: 1, MaxInstrs: 1 << 25}, "MaxInstrs"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() = %v (%T), want *ConfigError", err, err)
			}
			if cfgErr.Field != tc.want {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tc.want)
			}
		})
	}
}
