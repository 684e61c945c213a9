package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"offering_id", "subject", "passed"},
		Rows:    []map[string]string{{"offering_id": "off-1", "subject": "Mathematics", "passed": "12"}},
	}

	out, err := NewPDFExporter().Render(data, Document{Title: "1st A", Subtitle: "term1", Footer: "generated"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	_, err = NewPDFExporter().Render(Dataset{}, Document{})
	require.Error(t, err)
}

func TestColumnWidthsFillUsableWidth(t *testing.T) {
	data := Dataset{
		Headers: []string{"a", "subject"},
		Rows:    []map[string]string{{"a": "1", "subject": "Physical Education"}},
	}

	widths := columnWidths(data, 100)
	require.Len(t, widths, 2)
	assert.InDelta(t, 100, widths[0]+widths[1], 0.0001)
	assert.Greater(t, widths[1], widths[0])
}
