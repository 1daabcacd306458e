package models

import "testing"

func TestContactValidation_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		wantErr bool
	}{
		{name: "empty name should fail", contact: Contact{Name: "", Phone: "555"}, wantErr: true},
		{name: "whitespace name should fail", contact: Contact{Name: "  \t", Phone: "555"}, wantErr: true},
		{name: "name only is valid", contact: Contact{Name: "Ann"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.contact.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if err.Error() != "name is required" {
					t.Errorf("expected error %q, got %q", "name is required", err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestContact_Normalize(t *testing.T) {
	got := Contact{ID: 4, Name: " Ann ", Phone: " 555 ", Email: "a@x.io ", Address: " Main St"}.Normalize()
	want := Contact{ID: 4, Name: "Ann", Phone: "555", Email: "a@x.io", Address: "Main St"}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestContact_Matches(t *testing.T) {
	c := Contact{Name: "Bobby Tables", Phone: "555-0100", Email: "bob@example.com"}

	tests := []struct {
		query string
		want  bool
	}{
		{"bob", true},
		{"BOB", true},
		{"0100", true},
		{"example", false}, // email is not searched
		{"alice", false},
	}

	for _, tt := range tests {
		if got := c.Matches(tt.query); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
