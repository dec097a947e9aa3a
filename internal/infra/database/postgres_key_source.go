package database

import (
	"context"
	"database/sql"
	"fmt"

	"key_expiry_notifier/internal/domain/key"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
)

// PostgresKeySource lists key records from the gpg_keys table. It is the
// database-backed alternative to the CSV manifest in object storage and
// implements key.Source.
//
// Expected schema:
//
//	CREATE TABLE gpg_keys (
//	    id          BIGSERIAL PRIMARY KEY,
//	    feed_name   TEXT,
//	    key_name    TEXT NOT NULL,
//	    expiry_date DATE,            -- NULL means "not evaluated"
//	    pic_emails  TEXT NOT NULL    -- comma-separated recipient list
//	);
type PostgresKeySource struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewPostgresKeySource(db *sql.DB, logger *logrus.Logger) *PostgresKeySource {
	return &PostgresKeySource{db: db, logger: logger}
}

// Load implements key.Source. Rows without an expiry date are counted as
// skipped, matching the CSV parser's treatment of "N/A" cells.
func (s *PostgresKeySource) Load(ctx context.Context) (*key.Manifest, error) {
	query := `SELECT COALESCE(feed_name, ''), key_name, expiry_date, pic_emails
               FROM gpg_keys ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing gpg keys: %w", err)
	}
	defer rows.Close()

	m := &key.Manifest{}
	for rows.Next() {
		var (
			feedName  string
			keyName   string
			expiry    sql.NullTime
			picEmails string
		)
		if err := rows.Scan(&feedName, &keyName, &expiry, &picEmails); err != nil {
			m.Rows++
			m.Errors++
			s.logger.Errorf("Error scanning gpg key row: %v", err)
			continue
		}
		m.Rows++

		if feedName == "" {
			feedName = key.UnknownName
		}
		if keyName == "" {
			keyName = key.UnknownName
		}
		if !expiry.Valid {
			s.logger.Infof("No valid expiry date found for key %s. Skipping row.", keyName)
			m.Skipped++
			continue
		}

		m.Records = append(m.Records, key.Record{
			FeedName:   feedName,
			KeyName:    keyName,
			ExpiryDate: expiry.Time,
			Recipients: key.SplitRecipients(picEmails),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gpg keys: %w", err)
	}
	return m, nil
}
