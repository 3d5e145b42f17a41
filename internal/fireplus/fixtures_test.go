package fireplus

import (
	"math"
	"strings"
	"testing"
)

// frame wraps fields the way the controller does: two prefix bytes, literal
// `\n` separators and one trailing byte.
func frame(fields ...string) string {
	return "\"#" + strings.Join(fields, `\n`) + "\""
}

func v1Panel() []string {
	return []string{"_", "1", "2", "4", "50", "20", "5.5", "12.3", "Gruen", "0", "1", "1", "80"}
}

func v1Configuration() []string {
	return []string{"1.0", "300", "_", "SER123", "1", "_", "100"}
}

func v2Panel() []string {
	return []string{"_", "0", "3", "8", "70", "412", "42.5", "11.8", "Gruen blinkt", "7", "1", "45", "60", "_", "_", "_", "99"}
}

func v2Configuration() []string {
	return []string{"2.07", "450", "_", "SN-42", "0", "_", "90", "3600"}
}

func with(fields []string, i int, v string) []string {
	out := append([]string(nil), fields...)
	out[i] = v
	return out
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}
