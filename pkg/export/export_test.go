package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Title:       "University System Report",
		GeneratedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Sections: []Section{
			{Heading: "Personnel Stats", Lines: []string{"Total Users: 3", "Admins: 1"}},
			{Heading: "Assigned Tasks", Table: &Dataset{
				Headers: []string{"Title", "Status"},
				Rows:    []map[string]string{{"Title": "Audit", "Status": "Pending"}},
			}},
			{Heading: "Empty", Table: &Dataset{Headers: []string{"Reason"}}},
		},
	}
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFExporterRequiresTitle(t *testing.T) {
	_, err := NewPDFExporter().Render(Document{})
	require.Error(t, err)
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDocument().Flatten())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "section,metric,value", lines[0])
	assert.Equal(t, "Personnel Stats,Total Users,3", lines[1])
}

func TestCSVExporterNeutralizesFormulas(t *testing.T) {
	data := Dataset{
		Headers: []string{"name", "reason"},
		Rows: []map[string]string{
			{"name": "=HYPERLINK(\"http://x.test\")", "reason": "@SUM(A1)"},
			{"name": "Ada", "reason": "-"},
			{"name": "Grace"},
		},
	}
	out, err := NewCSVExporter(WithCRLF()).Render(data)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"'=HYPERLINK(\"http://x.test\")", "'@SUM(A1)"}, records[1])
	assert.Equal(t, []string{"Ada", "'-"}, records[2])
	assert.Equal(t, []string{"Grace", ""}, records[3])
	assert.True(t, bytes.HasPrefix(out, []byte("name,reason\r\n")))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
