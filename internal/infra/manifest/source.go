package manifest

import (
	"context"
	"fmt"

	"key_expiry_notifier/internal/domain/key"
)

// ObjectReader fetches the raw manifest bytes from wherever they live.
// The GCS implementation sits in internal/infra/storage; tests substitute
// an in-memory reader.
type ObjectReader interface {
	Read(ctx context.Context) ([]byte, error)
}

// CSVSource loads key records by fetching a CSV object and parsing it.
// A fetch failure is fatal to the run; parse problems inside individual
// rows are contained by the Parser.
type CSVSource struct {
	reader ObjectReader
	parser *Parser
}

func NewCSVSource(reader ObjectReader, parser *Parser) *CSVSource {
	return &CSVSource{reader: reader, parser: parser}
}

// Load implements key.Source.
func (s *CSVSource) Load(ctx context.Context) (*key.Manifest, error) {
	data, err := s.reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	return s.parser.Parse(data)
}
