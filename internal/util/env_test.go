package util

import "testing"

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{name: "unset uses default", set: false, want: 42},
		{name: "valid integer", value: "7", set: true, want: 7},
		{name: "not a number", value: "seven", set: true, want: 42},
		{name: "float rejected", value: "7.5", set: true, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_ENV_INT", tt.value)
			}
			if got := GetEnvInt("TEST_ENV_INT", 42); got != tt.want {
				t.Errorf("GetEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_ENV_BOOL", "yes")
	if GetEnvBool("TEST_ENV_BOOL", false) {
		t.Error("non-literal value must fall back to default")
	}
	t.Setenv("TEST_ENV_BOOL", "true")
	if !GetEnvBool("TEST_ENV_BOOL", false) {
		t.Error("true literal not recognized")
	}
}
