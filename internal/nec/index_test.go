package nec

import "testing"

func TestNewIndexParsesEmbeddedSections(t *testing.T) {
	index, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if index.Len() != 5 {
		t.Fatalf("section count = %d, want 5", index.Len())
	}

	wantOrder := []string{"210.8", "250.66", "314.16", "240.21", "110.26"}
	sections := index.Sections()
	for i, id := range wantOrder {
		if sections[i].ID != id {
			t.Fatalf("section %d = %s, want %s", i, sections[i].ID, id)
		}
	}
}

func TestLookup(t *testing.T) {
	index, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	section, ok := index.Lookup("210.8")
	if !ok {
		t.Fatal("expected 210.8 to exist")
	}
	if section.Title != "Ground-Fault Circuit-Interrupter Protection for Personnel" {
		t.Fatalf("title = %q", section.Title)
	}
	if len(section.Subsections) != 2 {
		t.Fatalf("subsections = %d, want 2", len(section.Subsections))
	}
	if section.Subsections[0].ID != "210.8(A)" || section.Subsections[1].ID != "210.8(B)" {
		t.Fatalf("subsection order = %s, %s", section.Subsections[0].ID, section.Subsections[1].ID)
	}
	if len(section.Keywords) == 0 {
		t.Fatal("expected keywords")
	}

	if _, ok := index.Lookup("999.9"); ok {
		t.Fatal("unexpected match for unknown section")
	}
}

func TestParseIndexRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty document", ""},
		{"missing id", "[[section]]\ntitle = \"x\"\ncontent = \"y\"\n"},
		{"duplicate id", "[[section]]\nid = \"1.1\"\n[[section]]\nid = \"1.1\"\n"},
		{"invalid toml", "[[section"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseIndex([]byte(tc.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
