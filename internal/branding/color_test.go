package branding

import "testing"

func TestHexToHSL_KnownColors(t *testing.T) {
	cases := []struct {
		in   string
		want HSL
	}{
		{"#FFFFFF", HSL{0, 0, 100}},
		{"#000000", HSL{0, 0, 0}},
		{"#FF0000", HSL{0, 100, 50}},
		{"00ff00", HSL{120, 100, 50}},
		{"#0000FF", HSL{240, 100, 50}},
		{"#6366f1", HSL{239, 84, 67}},
		{"#808080", HSL{0, 0, 50}},
	}

	for _, tc := range cases {
		got, ok := HexToHSL(tc.in)
		if !ok {
			t.Errorf("HexToHSL(%q) rejected a valid color", tc.in)
			continue
		}
		if got != tc.want {
			t.Errorf("HexToHSL(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestHexToHSL_Invalid(t *testing.T) {
	for _, in := range []string{"", "#", "notacolor", "#12", "#fff", "#12345678", "#gggggg", "red", "##123456"} {
		if _, ok := HexToHSL(in); ok {
			t.Errorf("Expected %q to be rejected", in)
		}
	}
}

func TestHexToHSL_Ranges(t *testing.T) {
	for v := 0; v <= 0xffffff; v += 0x010307 {
		hex := "#" + hex6(v)
		c, ok := HexToHSL(hex)
		if !ok {
			t.Fatalf("Expected %s to parse", hex)
		}
		if c.H < 0 || c.H >= 360 || c.S < 0 || c.S > 100 || c.L < 0 || c.L > 100 {
			t.Fatalf("%s out of range: %+v", hex, c)
		}
	}
}

func TestHSL_String(t *testing.T) {
	if got := (HSL{239, 84, 67}).String(); got != "239 84% 67%" {
		t.Errorf("Unexpected HSL string %q", got)
	}
}

func hex6(v int) string {
	const digits = "0123456789abcdef"
	b := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		b[i] = digits[v&0xf]
		v >>= 4
	}
	return string(b)
}
