package instrument

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltins(t *testing.T) {
	s := Default()

	cfg, ok := s.Get("mastersizer")
	if !ok {
		t.Fatal("mastersizer builtin missing")
	}
	if n, ok := cfg.BinCountOverride(); !ok || n != 64 {
		t.Errorf("bin override = %d/%v, want 64", n, ok)
	}
	if col, ok := cfg.DesignatedSizeColumn(); !ok || col != "Size (um)" {
		t.Errorf("designated column = %q/%v", col, ok)
	}

	generic, ok := s.Get("generic")
	if !ok {
		t.Fatal("generic builtin missing")
	}
	if _, ok := generic.BinCountOverride(); ok {
		t.Error("generic must not carry a bin override")
	}
	if _, ok := generic.DesignatedSizeColumn(); ok {
		t.Error("generic must not designate a size column")
	}

	if _, ok := s.Get("unknown-instrument"); ok {
		t.Error("unknown label must miss")
	}
}

func TestStoreIsolation(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get("mastersizer"); ok {
		t.Error("fresh store must not see builtins")
	}
	if err := s.Register(&Config{Label: "custom", BinCount: 12}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(s.Labels()) != 1 {
		t.Errorf("labels = %v", s.Labels())
	}
}

func TestValidate(t *testing.T) {
	if err := (&Config{}).Validate(); err == nil {
		t.Error("empty label must fail")
	}
	if err := (&Config{Label: "x", BinCount: -1}).Validate(); err == nil {
		t.Error("negative bin count must fail")
	}
	if err := NewStore().Register(&Config{}); err == nil {
		t.Error("store must reject invalid configs")
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instruments.json")

	src := NewStore()
	if err := src.Register(&Config{
		Label:    "photon-sizer",
		BinCount: 48,
		Variants: []Variant{{Name: "v1", SizeColumn: "hydro_diameter"}},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := src.SaveFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	dst := NewStore()
	if err := dst.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, ok := dst.Get("photon-sizer")
	if !ok {
		t.Fatal("loaded config missing")
	}
	if col, _ := cfg.DesignatedSizeColumn(); col != "hydro_diameter" {
		t.Errorf("designated column = %q", col)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dst := NewStore()
	if err := dst.LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file must fail")
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := dst.LoadFile(bad); err == nil {
		t.Error("malformed file must fail")
	}
	nulled := filepath.Join(t.TempDir(), "nulled.json")
	if err := os.WriteFile(nulled, []byte(`[null, {"label": "x"}]`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := dst.LoadFile(nulled); err == nil {
		t.Error("null config record must fail")
	}
	if _, ok := dst.Get("x"); ok {
		t.Error("records after a null entry must not be registered")
	}
}
