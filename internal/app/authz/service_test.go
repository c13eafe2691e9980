package authz

import "testing"

func TestTokenPrefix(t *testing.T) {
	cases := map[string]string{
		"Bearer abcdefghijklmnop": "abcdefgh...",
		"Bearer short":            "***",
		"Basic abcdefghijklmnop":  "",
		"":                        "",
	}

	for header, want := range cases {
		if got := tokenPrefix(header); got != want {
			t.Errorf("tokenPrefix(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestTokenPrefix_NeverFullToken(t *testing.T) {
	credential := "abcdefghijklmnopqrstuvwxyz"
	if got := tokenPrefix("Bearer " + credential); got == credential {
		t.Error("prefix must never expose the full credential")
	}
}
