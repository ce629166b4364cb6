package mailer

import "testing"

func TestRender_Substitution(t *testing.T) {
	out := Render("Hello {{name}}, balance {{bal}}", map[string]interface{}{
		"name": "Ann",
		"bal":  100,
	})
	if out != "Hello Ann, balance 100" {
		t.Errorf("Unexpected render output: %q", out)
	}
}

func TestRender_WhitespaceInsideBraces(t *testing.T) {
	out := Render("Hi {{ name }} and {{  name}}", map[string]interface{}{"name": "Bo"})
	if out != "Hi Bo and Bo" {
		t.Errorf("Unexpected render output: %q", out)
	}
}

func TestRender_MissingOrNilVariable(t *testing.T) {
	out := Render("Hi {{missing}}", map[string]interface{}{})
	if out != "Hi " {
		t.Errorf("Expected missing variable to render empty, got %q", out)
	}

	out = Render("Hi {{name}}", map[string]interface{}{"name": nil})
	if out != "Hi " {
		t.Errorf("Expected nil variable to render empty, got %q", out)
	}
}

func TestRender_DottedAndHyphenatedNames(t *testing.T) {
	out := Render("{{account.number}} / {{kyc-status}}", map[string]interface{}{
		"account.number": "PA-1042",
		"kyc-status":     "approved",
	})
	if out != "PA-1042 / approved" {
		t.Errorf("Unexpected render output: %q", out)
	}
}

func TestRender_JSONNumbers(t *testing.T) {
	out := Render("{{bal}} {{fee}}", map[string]interface{}{
		"bal": float64(50000),
		"fee": float64(12.5),
	})
	if out != "50000 12.5" {
		t.Errorf("Unexpected render output: %q", out)
	}
}

func TestRender_IdempotentOnPlainText(t *testing.T) {
	plain := "Your account is ready."
	vars := map[string]interface{}{"name": "Ann"}

	if out := Render(plain, vars); out != plain {
		t.Errorf("Plain text changed: %q", out)
	}

	first := Render("Welcome {{name}}", vars)
	second := Render(first, vars)
	if first != second {
		t.Errorf("Re-render is not a fixed point: %q vs %q", first, second)
	}
}
