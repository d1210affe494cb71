package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
	"github.com/noah-isme/faculty-portal-api/pkg/export"
)

const (
	contentTypePDF = "application/pdf"
	contentTypeCSV = "text/csv"
)

type reportAccountRepository interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	CountByRole(ctx context.Context) (map[models.Role]int, error)
}

type reportTaskRepository interface {
	CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error)
	ListViewsByAssignee(ctx context.Context, accountID string) ([]models.TaskView, error)
}

type reportLeaveRepository interface {
	CountByStatus(ctx context.Context) (map[models.LeaveStatus]int, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.LeaveRequest, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ReportService renders the system and per-faculty reports.
type ReportService struct {
	accounts reportAccountRepository
	tasks    reportTaskRepository
	leaves   reportLeaveRepository
	pdf      pdfRenderer
	csv      csvRenderer
	audit    auditTrail
	metrics  *MetricsService
	now      func() time.Time
}

// ReportServiceDeps groups the collaborators of ReportService.
type ReportServiceDeps struct {
	Accounts reportAccountRepository
	Tasks    reportTaskRepository
	Leaves   reportLeaveRepository
	PDF      pdfRenderer
	CSV      csvRenderer
	Audit    AuditRepository
	Metrics  *MetricsService
	Logger   *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(deps ReportServiceDeps) *ReportService {
	if deps.PDF == nil {
		deps.PDF = export.NewPDFExporter()
	}
	if deps.CSV == nil {
		deps.CSV = export.NewCSVExporter()
	}
	return &ReportService{
		accounts: deps.Accounts,
		tasks:    deps.Tasks,
		leaves:   deps.Leaves,
		pdf:      deps.PDF,
		csv:      deps.CSV,
		audit:    newAuditTrail(deps.Audit, deps.Logger),
		metrics:  deps.Metrics,
		now:      time.Now,
	}
}

// SystemReport renders institution-wide counts as PDF (default) or CSV.
func (s *ReportService) SystemReport(ctx context.Context, actor *models.Principal, format dto.ReportFormat) (*dto.ReportFile, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.CanGenerateSystemReport() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized as an admin")
	}
	format = dto.ReportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = dto.ReportFormatPDF
	}
	if format != dto.ReportFormatPDF && format != dto.ReportFormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}

	roles, err := s.accounts.CountByRole(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count accounts")
	}
	tasks, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count tasks")
	}
	leaves, err := s.leaves.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count leave requests")
	}

	doc := s.systemDocument(roles, tasks, leaves)
	file := &dto.ReportFile{}
	switch format {
	case dto.ReportFormatCSV:
		file.Body, err = s.csv.Render(doc.Flatten())
		file.ContentType = contentTypeCSV
		file.Filename = "system_report.csv"
	default:
		file.Body, err = s.pdf.Render(doc)
		file.ContentType = contentTypePDF
		file.Filename = "system_report.pdf"
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}

	s.metrics.RecordReport("system", string(format))
	s.audit.record(ctx, actor.AccountID, models.AuditActionReportGenerate, "report", "", nil, map[string]string{"kind": "system", "format": string(format)})
	return file, nil
}

func (s *ReportService) systemDocument(roles map[models.Role]int, tasks map[models.TaskStatus]int, leaves map[models.LeaveStatus]int) export.Document {
	totalUsers := 0
	for _, n := range roles {
		totalUsers += n
	}
	totalTasks := 0
	for _, n := range tasks {
		totalTasks += n
	}

	return export.Document{
		Title:       "University System Report",
		GeneratedAt: s.now().UTC(),
		Sections: []export.Section{
			{Heading: "Personnel Stats", Lines: []string{
				fmt.Sprintf("Total Users: %d", totalUsers),
				fmt.Sprintf("Admins: %d", roles[models.RoleAdmin]),
				fmt.Sprintf("HODs: %d", roles[models.RoleHOD]),
				fmt.Sprintf("Lecturers: %d", roles[models.RoleLecturer]),
			}},
			{Heading: "Workflow Stats", Lines: []string{
				fmt.Sprintf("Total Tasks: %d", totalTasks),
				fmt.Sprintf("Pending Tasks: %d", tasks[models.TaskStatusPending]),
				fmt.Sprintf("In Progress Tasks: %d", tasks[models.TaskStatusInProgress]),
				fmt.Sprintf("Completed Tasks: %d", tasks[models.TaskStatusCompleted]),
			}},
			{Heading: "Leave Stats", Lines: []string{
				fmt.Sprintf("Pending Requests: %d", leaves[models.LeaveStatusPending]),
				fmt.Sprintf("Approved: %d", leaves[models.LeaveStatusApproved]),
				fmt.Sprintf("Rejected: %d", leaves[models.LeaveStatusRejected]),
			}},
		},
	}
}

// FacultyReport renders one account's profile, task analytics and leave history. Callers other than the
// account itself need CanViewFacultyReports.
func (s *ReportService) FacultyReport(ctx context.Context, actor *models.Principal, accountID string) (*dto.ReportFile, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.AccountID != accountID && !actor.Role.CanViewFacultyReports() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to view this report")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load account")
	}
	tasks, err := s.tasks.ListViewsByAssignee(ctx, accountID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load tasks")
	}
	leaves, err := s.leaves.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load leave requests")
	}

	body, err := s.pdf.Render(s.facultyDocument(account, tasks, leaves))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}

	s.metrics.RecordReport("faculty", string(dto.ReportFormatPDF))
	s.audit.record(ctx, actor.AccountID, models.AuditActionReportGenerate, "report", accountID, nil, map[string]string{"kind": "faculty"})
	return &dto.ReportFile{
		Filename:    FacultyReportFilename(account.Name),
		ContentType: contentTypePDF,
		Body:        body,
	}, nil
}

func (s *ReportService) facultyDocument(account *models.Account, tasks []models.TaskView, leaves []models.LeaveRequest) export.Document {
	department := "N/A"
	if account.Department != nil && *account.Department != "" {
		department = *account.Department
	}

	completed := 0
	taskTable := &export.Dataset{Headers: []string{"#", "Title", "Status", "Progress", "Due"}}
	for i, task := range tasks {
		if task.Status == models.TaskStatusCompleted {
			completed++
		}
		due := "-"
		if task.Deadline != nil {
			due = task.Deadline.String()
		}
		taskTable.Rows = append(taskTable.Rows, map[string]string{
			"#":        strconv.Itoa(i + 1),
			"Title":    task.Title,
			"Status":   string(task.Status),
			"Progress": fmt.Sprintf("%d%%", task.Progress),
			"Due":      due,
		})
	}

	approved := 0
	leaveTable := &export.Dataset{Headers: []string{"#", "Reason", "Status", "From", "To"}}
	for i, leave := range leaves {
		if leave.Status == models.LeaveStatusApproved {
			approved++
		}
		leaveTable.Rows = append(leaveTable.Rows, map[string]string{
			"#":      strconv.Itoa(i + 1),
			"Reason": leave.Reason,
			"Status": string(leave.Status),
			"From":   leave.StartDate.String(),
			"To":     leave.EndDate.String(),
		})
	}

	return export.Document{
		Title:       "Faculty Performance Report",
		GeneratedAt: s.now().UTC(),
		Sections: []export.Section{
			{Boxed: true, Lines: []string{
				"Name: " + account.Name,
				"Role: " + strings.ToUpper(string(account.Role)),
				"Department: " + department,
				"Email: " + account.Email,
			}},
			{Heading: "Task Analytics", Lines: []string{
				fmt.Sprintf("Tasks Assigned To User: %d", len(tasks)),
				fmt.Sprintf("Tasks Completed: %d", completed),
				fmt.Sprintf("Completion Rate: %s%%", CompletionRate(completed, len(tasks))),
			}},
			{Heading: "Assigned Tasks Details", Table: taskTable},
			{Heading: "Leave History", Lines: []string{
				fmt.Sprintf("Total Leave Requests: %d", len(leaves)),
				fmt.Sprintf("Approved: %d", approved),
			}, Table: leaveTable},
		},
	}
}

// CompletionRate formats completed/total as a percentage with one decimal.
func CompletionRate(completed, total int) string {
	if total == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(completed)/float64(total)*100, 'f', 1, 64)
}

// FacultyReportFilename builds report_<Name_With_Underscores>.pdf.
func FacultyReportFilename(name string) string {
	return "report_" + strings.Join(strings.Fields(name), "_") + ".pdf"
}
