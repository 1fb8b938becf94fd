package enums

import "testing"

func TestParseTransactionType(t *testing.T) {
	for _, value := range []string{"income", "expense"} {
		parsed, err := ParseTransactionType(value)
		if err != nil {
			t.Fatalf("ParseTransactionType(%q): %v", value, err)
		}
		if string(parsed) != value {
			t.Fatalf("expected %q, got %q", value, parsed)
		}
	}
	if _, err := ParseTransactionType("transfer"); err == nil {
		t.Fatal("expected error for unknown transaction type")
	}
	if _, err := ParseTransactionType("Income"); err == nil {
		t.Fatal("parsing is case sensitive")
	}
}

func TestParseExpenseCategory(t *testing.T) {
	for _, value := range []string{"ingredients", "supplies", "utilities", "other"} {
		parsed, err := ParseExpenseCategory(value)
		if err != nil {
			t.Fatalf("ParseExpenseCategory(%q): %v", value, err)
		}
		if string(parsed) != value {
			t.Fatalf("expected %q, got %q", value, parsed)
		}
	}
	if _, err := ParseExpenseCategory("misc"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestParseMemberRole(t *testing.T) {
	for _, value := range []string{"owner", "admin", "member"} {
		parsed, err := ParseMemberRole(value)
		if err != nil {
			t.Fatalf("ParseMemberRole(%q): %v", value, err)
		}
		if string(parsed) != value {
			t.Fatalf("expected %q, got %q", value, parsed)
		}
	}
	if _, err := ParseMemberRole("manager"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseUserRole(t *testing.T) {
	for _, value := range []string{"admin", "user"} {
		parsed, err := ParseUserRole(value)
		if err != nil {
			t.Fatalf("ParseUserRole(%q): %v", value, err)
		}
		if string(parsed) != value {
			t.Fatalf("expected %q, got %q", value, parsed)
		}
	}
	if _, err := ParseUserRole("root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
