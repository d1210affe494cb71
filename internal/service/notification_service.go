package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/noah-isme/faculty-portal-api/internal/models"
	"github.com/noah-isme/faculty-portal-api/pkg/mailer"
)

// MailDispatcher queues outgoing mail.
type MailDispatcher interface {
	Dispatch(msg mailer.Message)
}

// NotificationService composes account and leave notifications.
type NotificationService struct {
	dispatcher MailDispatcher
	appName    string
}

// NewNotificationService constructs a notification service. A nil dispatcher disables mail.
func NewNotificationService(dispatcher MailDispatcher, appName string) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, appName: appName}
}

// AccountApproved tells the owner they can now sign in.
func (s *NotificationService) AccountApproved(account *models.Account) {
	if s == nil || s.dispatcher == nil || account == nil {
		return
	}
	body := fmt.Sprintf("Hello %s,\n\nYour %s account (%s) has been approved. You can now sign in.\n", account.Name, s.appName, account.Email)
	s.dispatcher.Dispatch(mailer.Message{
		To:      mail.Address{Name: account.Name, Address: account.Email},
		Subject: "Account approved",
		Text:    body,
	})
}

// LeaveReviewed tells the owner about a decision on their request.
func (s *NotificationService) LeaveReviewed(owner *models.Account, leave *models.LeaveRequest) {
	if s == nil || s.dispatcher == nil || owner == nil || leave == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYour leave request from %s to %s has been %s.\n",
		owner.Name, leave.StartDate, leave.EndDate, strings.ToLower(string(leave.Status)))
	if leave.AdminComment != nil && *leave.AdminComment != "" {
		fmt.Fprintf(&b, "\nComment: %s\n", *leave.AdminComment)
	}
	s.dispatcher.Dispatch(mailer.Message{
		To:      mail.Address{Name: owner.Name, Address: owner.Email},
		Subject: "Leave request " + strings.ToLower(string(leave.Status)),
		Text:    b.String(),
	})
}
