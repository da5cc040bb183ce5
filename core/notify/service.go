// Package notify composes parent notification messages from a student's
// performance and attendance summary.
package notify

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
)

type (
	// Request carries the free-text summary handed to the text-generation
	// collaborator.
	Request struct {
		StudentName        string `json:"student_name" validate:"required"`
		StudentPerformance string `json:"student_performance"`
		StudentAttendance  string `json:"student_attendance"`
		StudentActivities  string `json:"student_activities"`
	}

	Message struct {
		Message string `json:"message"`
	}

	// Generator is the text-generation collaborator. It is an opaque
	// asynchronous call with no retry policy: a failure surfaces to the
	// caller and leaves any previously generated message untouched.
	Generator interface {
		GenerateMessage(ctx context.Context, req Request) (Message, error)
	}

	Service struct {
		gen  Generator
		mail core.EmailService
		conf *core.Config
	}
)

func NewService(gen Generator, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{gen: gen, mail: mailSvc, conf: conf}
}

// ComposeParentMessage generates a parent-facing message from the summary.
func (s *Service) ComposeParentMessage(ctx context.Context, req Request) (Message, error) {
	msg, err := s.gen.GenerateMessage(ctx, req)
	if err != nil {
		return Message{}, errors.Wrap(err, "generating parent message")
	}
	return msg, nil
}

// EmailParent delivers a composed message to the parent contact. Sending is
// fire-and-forget: delivery failures are handled by the email service.
func (s *Service) EmailParent(parentName, parentEmail, studentName string, msg Message) {
	if parentEmail == "" {
		return
	}
	s.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: parentName, Address: parentEmail}},
		Subject: "Progress update for " + studentName,
		BodyStr: msg.Message,
	})
}
