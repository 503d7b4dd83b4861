package utils

import "testing"

func TestIsEmployeeID(t *testing.T) {
	for _, id := range []string{"1", "42", "123456789"} {
		if !IsEmployeeID(id) {
			t.Errorf("expected %q to be a valid employee id", id)
		}
	}
	for _, id := range []string{"", "abc", "1/2", "../etc", "1234567890"} {
		if IsEmployeeID(id) {
			t.Errorf("expected %q to be rejected", id)
		}
	}
}

func TestEmployeeKey(t *testing.T) {
	if got := EmployeeKey("1", "Anwar hussain"); got != "emp_1_Anwar_hussain" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := EmployeeKey("9", "a/b c"); got != "emp_9_a_b_c" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestSafeName_NormalisesComposedForms(t *testing.T) {
	// "é" as e + combining acute vs precomposed
	if SafeName("Jose\u0301") != SafeName("Jos\u00e9") {
		t.Fatal("expected decomposed and precomposed names to match")
	}
}
