package utils

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Club Stardust":      "club-stardust",
		"  Ginza  Lounge  ":  "ginza-lounge",
		"VIP Room #2":        "vip-room-2",
		"---":                "",
		"already-slugged-ok": "already-slugged-ok",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateCustomerCode(t *testing.T) {
	code := GenerateCustomerCode()
	if !strings.HasPrefix(code, "CUST-") {
		t.Errorf("code %q missing prefix", code)
	}
	if len(code) != len("CUST-")+8 {
		t.Errorf("code %q has unexpected length", code)
	}
	if code == GenerateCustomerCode() {
		t.Error("consecutive codes should differ")
	}
}
