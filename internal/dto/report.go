package dto

// ReportFormat selects the system report encoding.
type ReportFormat string

const (
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatCSV ReportFormat = "csv"
)

// SystemReportRequest captures POST /admin/reports payload. An empty format means PDF.
type SystemReportRequest struct {
	Format ReportFormat `json:"format" validate:"omitempty,oneof=pdf csv"`
}

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
