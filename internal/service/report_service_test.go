package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
	"github.com/noah-isme/faculty-portal-api/pkg/export"
)

type capturePDF struct {
	doc export.Document
}

func (c *capturePDF) Render(doc export.Document) ([]byte, error) {
	c.doc = doc
	return []byte("%PDF-fake"), nil
}

func newReportFixture() (*ReportService, *capturePDF) {
	accounts := newFakeAccountRepo(
		&models.Account{ID: "admin-1", Name: "Root", Role: models.RoleAdmin},
		&models.Account{ID: "hod-1", Name: "Head", Role: models.RoleHOD},
		&models.Account{ID: "lec-1", Name: "Ada  King Lovelace", Email: "ada@uni.edu", Role: models.RoleLecturer},
		&models.Account{ID: "lec-2", Name: "Grace", Role: models.RoleLecturer},
	)
	tasks := newFakeTaskRepo(accounts,
		&models.Task{ID: "t1", Title: "Syllabus", Status: models.TaskStatusCompleted, Progress: 100, AssignedToID: "lec-1"},
		&models.Task{ID: "t2", Title: "Grading", Status: models.TaskStatusInProgress, Progress: 40, AssignedToID: "lec-1"},
		&models.Task{ID: "t3", Title: "Lab", Status: models.TaskStatusPending, AssignedToID: "lec-1"},
		&models.Task{ID: "t4", Title: "Other", Status: models.TaskStatusPending, AssignedToID: "lec-2"},
	)
	leaves := newFakeLeaveRepo(accounts,
		&models.LeaveRequest{ID: "l1", AccountID: "lec-1", Reason: "Conference", Status: models.LeaveStatusApproved},
		&models.LeaveRequest{ID: "l2", AccountID: "lec-2", Reason: "Sick", Status: models.LeaveStatusPending},
	)
	pdf := &capturePDF{}
	svc := NewReportService(ReportServiceDeps{Accounts: accounts, Tasks: tasks, Leaves: leaves, PDF: pdf, Audit: &fakeAuditRepo{}})
	return svc, pdf
}

func TestReportServiceSystemReportPDF(t *testing.T) {
	svc, pdf := newReportFixture()

	file, err := svc.SystemReport(context.Background(), admin(), "")
	require.NoError(t, err)
	assert.Equal(t, "system_report.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)

	require.Len(t, pdf.doc.Sections, 3)
	assert.Equal(t, "University System Report", pdf.doc.Title)
	assert.Equal(t, []string{"Total Users: 4", "Admins: 1", "HODs: 1", "Lecturers: 2"}, pdf.doc.Sections[0].Lines)
	assert.Contains(t, pdf.doc.Sections[1].Lines, "Total Tasks: 4")
	assert.Contains(t, pdf.doc.Sections[1].Lines, "Pending Tasks: 2")
	assert.Contains(t, pdf.doc.Sections[2].Lines, "Approved: 1")
}

func TestReportServiceSystemReportCSV(t *testing.T) {
	svc, _ := newReportFixture()

	file, err := svc.SystemReport(context.Background(), admin(), dto.ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "system_report.csv", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("section,metric,value")))
	assert.Contains(t, string(file.Body), "Personnel Stats,Lecturers,2")
}

func TestReportServiceSystemReportChecks(t *testing.T) {
	svc, _ := newReportFixture()

	_, err := svc.SystemReport(context.Background(), hod(), "")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.SystemReport(context.Background(), admin(), "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportServiceFacultyReport(t *testing.T) {
	svc, pdf := newReportFixture()

	file, err := svc.FacultyReport(context.Background(), hod(), "lec-1")
	require.NoError(t, err)
	assert.Equal(t, "report_Ada_King_Lovelace.pdf", file.Filename)

	doc := pdf.doc
	assert.Equal(t, "Faculty Performance Report", doc.Title)
	assert.Contains(t, doc.Sections[0].Lines, "Role: LECTURER")
	assert.Contains(t, doc.Sections[0].Lines, "Department: N/A")
	assert.Equal(t, []string{"Tasks Assigned To User: 3", "Tasks Completed: 1", "Completion Rate: 33.3%"}, doc.Sections[1].Lines)
	assert.Len(t, doc.Sections[2].Table.Rows, 3)
	assert.Len(t, doc.Sections[3].Table.Rows, 1)
}

func TestReportServiceFacultyReportAccess(t *testing.T) {
	svc, _ := newReportFixture()

	_, err := svc.FacultyReport(context.Background(), lecturer("lec-1"), "lec-1")
	require.NoError(t, err)

	_, err = svc.FacultyReport(context.Background(), lecturer("lec-2"), "lec-1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.FacultyReport(context.Background(), admin(), "ghost")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReportServiceRealPDF(t *testing.T) {
	svc, _ := newReportFixture()
	svc.pdf = export.NewPDFExporter()

	file, err := svc.FacultyReport(context.Background(), admin(), "lec-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(file.Body), "%PDF-"))
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, "0.0", CompletionRate(0, 0))
	assert.Equal(t, "100.0", CompletionRate(2, 2))
	assert.Equal(t, "66.7", CompletionRate(2, 3))
}

func TestReportServiceLogsAuditFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	accounts := newFakeAccountRepo(&models.Account{ID: "admin-1", Name: "Root", Role: models.RoleAdmin})
	svc := NewReportService(ReportServiceDeps{
		Accounts: accounts,
		Tasks:    newFakeTaskRepo(accounts),
		Leaves:   newFakeLeaveRepo(accounts),
		PDF:      &capturePDF{},
		Audit:    &fakeAuditRepo{err: errDB},
		Logger:   zap.New(core),
	})

	_, err := svc.SystemReport(context.Background(), admin(), "")
	require.NoError(t, err)

	entries := logs.FilterMessage("failed to record audit log").All()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionReportGenerate, entries[0].ContextMap()["action"])
}
