package properties

import "testing"

func TestNew_SetsName(t *testing.T) {
	p := New("c1", "usb_id", "1234")
	if p.Name() != "c1" {
		t.Errorf("Name() = %q, want %q", p.Name(), "c1")
	}
	if p["usb_id"] != "1234" {
		t.Errorf("usb_id = %q, want %q", p["usb_id"], "1234")
	}
}

func TestMatches(t *testing.T) {
	p := New("c1", "usb_id", "1234", "vendor", "acme")

	tests := []struct {
		name     string
		required map[string]string
		want     bool
	}{
		{"empty required matches", map[string]string{}, true},
		{"exact subset matches", map[string]string{"usb_id": "1234"}, true},
		{"full match", map[string]string{"usb_id": "1234", "vendor": "acme"}, true},
		{"missing key fails", map[string]string{"missing": "x"}, false},
		{"mismatched value fails", map[string]string{"usb_id": "9999"}, false},
		{"case-sensitive value fails", map[string]string{"vendor": "ACME"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Matches(tt.required); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.required, got, tt.want)
			}
		})
	}
}

func TestClone_Independent(t *testing.T) {
	p := New("c1")
	cp := p.Clone()
	cp["extra"] = "value"

	if _, ok := p["extra"]; ok {
		t.Error("mutating clone affected original")
	}
}
