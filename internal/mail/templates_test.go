package mail

import (
	"strings"
	"testing"
)

func TestRenderBalanceChanged(t *testing.T) {
	subject, body, err := RenderBalanceChanged("Asha", "credit", 50000, 100000, 150000)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(subject, "credited") {
		t.Errorf("subject %q missing verb", subject)
	}
	for _, want := range []string{"Asha", "₹500.00", "₹1000.00", "₹1500.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	subject, _, err = RenderBalanceChanged("Asha", "debit", 50000, 150000, 100000)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(subject, "debited") {
		t.Errorf("subject %q missing verb", subject)
	}
}

func TestRenderExpenseRecorded(t *testing.T) {
	subject, body, err := RenderExpenseRecorded("Asha", "Food", 30000, 100000, 70000)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(subject, "Food") {
		t.Errorf("subject %q missing category", subject)
	}
	for _, want := range []string{"Food", "₹300.00", "₹700.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderOTP(t *testing.T) {
	_, body, err := RenderOTP("4821", "2m0s")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "4821") || !strings.Contains(body, "2m0s") {
		t.Errorf("body missing code or ttl: %s", body)
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	_, body, err := RenderExpenseRecorded("<script>x</script>", "Food", 100, 200, 100)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Errorf("body contains unescaped markup: %s", body)
	}
}
