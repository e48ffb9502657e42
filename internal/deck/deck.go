// Package deck parses, validates and exports question decks in the CSV
// format hosts author them in.
package deck

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fysics/internal/domain"
)

// RequiredColumns are the headers every deck CSV must carry, in the
// canonical export order. Image_Link is optional.
var RequiredColumns = []string{"Question_ID", "Question_Text", "Correct_Answer", "Predefined_Fake"}

// ImageColumn is the optional column holding a question's image link
const ImageColumn = "Image_Link"

// MissingColumnsError reports which required headers a CSV lacked
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %v", e.Columns)
}

// Parse reads a deck CSV and returns its questions in row order.
// Empty cells stay empty strings, and image links are normalized to
// backend asset paths.
func Parse(r io.Reader) ([]domain.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &MissingColumnsError{Columns: RequiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	cell := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var questions []domain.Question
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(questions)+2, err)
		}

		questions = append(questions, domain.Question{
			ID:     cell(record, "Question_ID"),
			Text:   cell(record, "Question_Text"),
			Answer: cell(record, "Correct_Answer"),
			Fake:   cell(record, "Predefined_Fake"),
			Image:  domain.NormalizeImageLink(cell(record, ImageColumn)),
		})
	}

	return questions, nil
}

// Export writes a deck back out in the canonical CSV format, the inverse
// of Parse modulo image link normalization.
func Export(w io.Writer, d *domain.Deck) error {
	if err := d.Validate(); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(append(append([]string{}, RequiredColumns...), ImageColumn)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, q := range d.Questions {
		if err := writer.Write([]string{q.ID, q.Text, q.Answer, q.Fake, q.Image}); err != nil {
			return fmt.Errorf("write question %q: %w", q.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// NameFromFile infers a deck name from an uploaded CSV filename
func NameFromFile(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "New Deck"
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return "New Deck"
	}
	return name
}
