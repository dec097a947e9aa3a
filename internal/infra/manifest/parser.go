package manifest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"key_expiry_notifier/internal/domain/key"

	"github.com/sirupsen/logrus"
)

// Column alias chains, tried in order. Historical manifests disagree on
// header casing, so each logical field accepts every spelling that has
// been observed in the wild.
var (
	keyNameAliases    = []string{"GPG_Private_Key", "GPG_private_key"}
	expiryDateAliases = []string{"GPG_Key_Expiry", "GPG_key_expiry", "expiry_date"}
	recipientAliases  = []string{"PIC_Email", "PIC_email"}
	feedNameAliases   = []string{"Feed_Name", "feed_name"}
)

// Parser turns raw manifest CSV text into normalized key records.
// Individual bad rows never abort a parse; they are logged and counted.
type Parser struct {
	logger *logrus.Logger
}

func NewParser(logger *logrus.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads the full manifest. The input may carry a UTF-8 byte-order
// mark. The first row is the header; every later row yields at most one
// record. Rows whose expiry field is absent or "N/A" are skipped without
// an error; rows with a malformed expiry date count as errors.
func (p *Parser) Parse(data []byte) (*key.Manifest, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // manifests are hand-edited; tolerate ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	p.logger.Infof("CSV columns found: %v", header)

	m := &key.Manifest{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A structurally broken row. Count it and carry on with the rest.
			m.Rows++
			m.Errors++
			p.logger.Errorf("Error reading manifest row: %v", err)
			continue
		}
		m.Rows++

		record, status := p.parseRow(columns, row)
		switch status {
		case rowOK:
			m.Records = append(m.Records, record)
		case rowSkipped:
			m.Skipped++
		case rowError:
			m.Errors++
		}
	}
	return m, nil
}

type rowStatus int

const (
	rowOK rowStatus = iota
	rowSkipped
	rowError
)

func (p *Parser) parseRow(columns map[string]int, row []string) (key.Record, rowStatus) {
	keyName := lookup(columns, row, keyNameAliases)
	if keyName == "" {
		keyName = key.UnknownName
	}
	feedName := lookup(columns, row, feedNameAliases)
	if feedName == "" {
		feedName = key.UnknownName
	}

	expiryStr := lookup(columns, row, expiryDateAliases)
	if expiryStr == "" || strings.EqualFold(strings.TrimSpace(expiryStr), "N/A") {
		p.logger.Infof("No valid expiry date found for key %s. Skipping row.", keyName)
		return key.Record{}, rowSkipped
	}

	expiry, err := time.Parse(key.ExpiryDateLayout, strings.TrimSpace(expiryStr))
	if err != nil {
		p.logger.Errorf("Error processing key %s: invalid expiry date %q: %v", keyName, expiryStr, err)
		return key.Record{}, rowError
	}

	return key.Record{
		FeedName:   feedName,
		KeyName:    keyName,
		ExpiryDate: expiry,
		Recipients: key.SplitRecipients(lookup(columns, row, recipientAliases)),
	}, rowOK
}

// lookup resolves a logical field through its alias chain: the first alias
// present in the header with a non-empty cell wins. A missing field is not
// an error; the caller decides what absence means.
func lookup(columns map[string]int, row []string, aliases []string) string {
	for _, alias := range aliases {
		idx, ok := columns[alias]
		if !ok || idx >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[idx]); value != "" {
			return value
		}
	}
	return ""
}
