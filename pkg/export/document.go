package export

import "time"

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a headed block of a report: free text lines, an optional table, or both.
type Section struct {
	Heading string
	Lines   []string
	Table   *Dataset
	Boxed   bool
}

// Document is a printable report.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Sections    []Section
}

// Flatten turns a document's text lines into a two-column dataset, one row per "label: value" line.
func (d Document) Flatten() Dataset {
	data := Dataset{Headers: []string{"section", "metric", "value"}}
	for _, section := range d.Sections {
		for _, line := range section.Lines {
			metric, value := splitLine(line)
			data.Rows = append(data.Rows, map[string]string{
				"section": section.Heading,
				"metric":  metric,
				"value":   value,
			})
		}
	}
	return data
}

func splitLine(line string) (string, string) {
	for i := 0; i+1 < len(line); i++ {
		if line[i] == ':' && line[i+1] == ' ' {
			return line[:i], line[i+2:]
		}
	}
	return line, ""
}
