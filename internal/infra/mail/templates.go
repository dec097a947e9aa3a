package mail

import (
	"bytes"
	_ "embed"
	"fmt"
	html "html/template"
	text "text/template"

	"key_expiry_notifier/internal/domain/key"
)

// SingleKeyParams feeds the per-key alert templates.
type SingleKeyParams struct {
	KeyName       string
	ExpiryDate    string // manifest format, day-month-year
	DaysRemaining int
}

// TableRow is one line of the consolidated alert table.
type TableRow struct {
	Index         int // 1-based, bundle order
	FeedName      string
	KeyName       string
	ExpiryDate    string
	DaysRemaining int
}

// ConsolidatedParams feeds the consolidated alert templates.
type ConsolidatedParams struct {
	Rows []TableRow
}

var (
	singleHTMLTemplate       = html.New("singleHTML")
	singleTextTemplate       = text.New("singleText")
	consolidatedHTMLTemplate = html.New("consolidatedHTML")
	consolidatedTextTemplate = text.New("consolidatedText")

	//go:embed templates/single.html
	singleHTMLRaw string
	//go:embed templates/single.txt
	singleTextRaw string
	//go:embed templates/consolidated.html
	consolidatedHTMLRaw string
	//go:embed templates/consolidated.txt
	consolidatedTextRaw string
)

func init() {
	if _, err := singleHTMLTemplate.Parse(singleHTMLRaw); err != nil {
		panic(err)
	}
	if _, err := singleTextTemplate.Parse(singleTextRaw); err != nil {
		panic(err)
	}
	if _, err := consolidatedHTMLTemplate.Parse(consolidatedHTMLRaw); err != nil {
		panic(err)
	}
	if _, err := consolidatedTextTemplate.Parse(consolidatedTextRaw); err != nil {
		panic(err)
	}
}

// RenderSingle produces subject, HTML body and plain-text body for a
// per-key alert. Rendering is pure; it performs no I/O.
func RenderSingle(evaluated key.Evaluated) (subject, htmlBody, textBody string, err error) {
	p := SingleKeyParams{
		KeyName:       evaluated.KeyName,
		ExpiryDate:    evaluated.ExpiryDateString(),
		DaysRemaining: evaluated.DaysUntilExpiry,
	}
	subject = fmt.Sprintf("Key Expiration Alert: %s - Action Required", p.KeyName)

	b := bytes.Buffer{}
	if err = singleHTMLTemplate.Execute(&b, p); err != nil {
		return "", "", "", err
	}
	htmlBody = b.String()

	b.Reset()
	if err = singleTextTemplate.Execute(&b, p); err != nil {
		return "", "", "", err
	}
	textBody = b.String()
	return subject, htmlBody, textBody, nil
}

// RenderConsolidated produces subject, HTML body and plain-text body for a
// recipient's bundle: one table row per key, numbered from 1 in bundle order.
func RenderConsolidated(bundle *key.Bundle) (subject, htmlBody, textBody string, err error) {
	p := ConsolidatedParams{Rows: make([]TableRow, 0, len(bundle.Keys))}
	for i, evaluated := range bundle.Keys {
		p.Rows = append(p.Rows, TableRow{
			Index:         i + 1,
			FeedName:      evaluated.FeedName,
			KeyName:       evaluated.KeyName,
			ExpiryDate:    evaluated.ExpiryDateString(),
			DaysRemaining: evaluated.DaysUntilExpiry,
		})
	}
	subject = "GPG Key Expiration ALERT - Action Required"

	b := bytes.Buffer{}
	if err = consolidatedHTMLTemplate.Execute(&b, p); err != nil {
		return "", "", "", err
	}
	htmlBody = b.String()

	b.Reset()
	if err = consolidatedTextTemplate.Execute(&b, p); err != nil {
		return "", "", "", err
	}
	textBody = b.String()
	return subject, htmlBody, textBody, nil
}
