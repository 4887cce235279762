package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"khata/internal/core"
)

var balanceChangedTmpl = template.Must(template.New("balance_changed").Parse(`<html>
<body style="font-family: sans-serif;">
  <h3>Hello {{.Name}},</h3>
  <p>Your credit account was {{.Verb}} by <b>{{.Amount}}</b>.</p>
  <table>
    <tr><td>Previous balance:</td><td><b>{{.Previous}}</b></td></tr>
    <tr><td>Current balance:</td><td><b>{{.Current}}</b></td></tr>
  </table>
  <p>If you did not make this change, please review your account.</p>
</body>
</html>`))

var expenseRecordedTmpl = template.Must(template.New("expense_recorded").Parse(`<html>
<body style="font-family: sans-serif;">
  <h3>Hello {{.Name}},</h3>
  <p>An expense of <b>{{.Amount}}</b> was recorded under <b>{{.Category}}</b>.</p>
  <table>
    <tr><td>Previous balance:</td><td><b>{{.Previous}}</b></td></tr>
    <tr><td>Remaining balance:</td><td><b>{{.Current}}</b></td></tr>
  </table>
</body>
</html>`))

var otpTmpl = template.Must(template.New("otp").Parse(`<html>
<body style="font-family: sans-serif;">
  <h3>Verify your email</h3>
  <p>Your verification code is:</p>
  <h2>{{.Code}}</h2>
  <p>The code expires in {{.TTL}}. If you did not request it, ignore this mail.</p>
</body>
</html>`))

// RenderBalanceChanged builds the subject and HTML body for a raw
// credit/debit notice.
func RenderBalanceChanged(name, kind string, amount, previous, current int64) (string, string, error) {
	verb := "credited"
	if kind == string(core.Debit) {
		verb = "debited"
	}
	var buf bytes.Buffer
	err := balanceChangedTmpl.Execute(&buf, map[string]string{
		"Name":     name,
		"Verb":     verb,
		"Amount":   core.FormatRupees(amount),
		"Previous": core.FormatRupees(previous),
		"Current":  core.FormatRupees(current),
	})
	if err != nil {
		return "", "", fmt.Errorf("render balance notice: %w", err)
	}
	subject := fmt.Sprintf("Your account was %s %s", verb, core.FormatRupees(amount))
	return subject, buf.String(), nil
}

// RenderExpenseRecorded builds the subject and HTML body for a category
// expense notice.
func RenderExpenseRecorded(name, category string, amount, previous, current int64) (string, string, error) {
	var buf bytes.Buffer
	err := expenseRecordedTmpl.Execute(&buf, map[string]string{
		"Name":     name,
		"Category": category,
		"Amount":   core.FormatRupees(amount),
		"Previous": core.FormatRupees(previous),
		"Current":  core.FormatRupees(current),
	})
	if err != nil {
		return "", "", fmt.Errorf("render expense notice: %w", err)
	}
	subject := fmt.Sprintf("Expense of %s recorded in %s", core.FormatRupees(amount), category)
	return subject, buf.String(), nil
}

// RenderOTP builds the subject and HTML body for a signup verification code.
func RenderOTP(code, ttl string) (string, string, error) {
	var buf bytes.Buffer
	err := otpTmpl.Execute(&buf, map[string]string{"Code": code, "TTL": ttl})
	if err != nil {
		return "", "", fmt.Errorf("render otp mail: %w", err)
	}
	return "Your verification code", buf.String(), nil
}
