package theme

import "testing"

func TestSetActive(t *testing.T) {
	defer SetActive(Default)

	if !SetActive("Tokyo-Night") {
		t.Fatal("SetActive(Tokyo-Night) = false, want true")
	}
	if Active.Name != "tokyo-night" {
		t.Fatalf("Active = %q, want tokyo-night", Active.Name)
	}

	if SetActive("no-such-theme") {
		t.Fatal("SetActive(unknown) = true")
	}
	if Active.Name != Default {
		t.Fatalf("Active = %q after unknown name, want %q", Active.Name, Default)
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) != 4 {
		t.Fatalf("Names = %v, want 4 themes", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names not sorted: %v", names)
		}
	}
}
