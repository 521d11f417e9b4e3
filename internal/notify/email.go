// Package notify sends confirmation emails for participant changes.
package notify

import (
	"context"
	"fmt"
	"strings"

	sesclient "mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var defaultTemplates = map[models.ParticipantEventType]models.NotificationTemplate{
	models.EventParticipantEnrolled: {
		Type:    models.EventParticipantEnrolled,
		Subject: "You are signed up for {{activity}}",
		Body: "Hi {{email}},\n\nYou are now signed up for {{activity}}. " +
			"{{count}} of {{max}} spots are taken.\n\nMergington High School",
	},
	models.EventParticipantUnregistered: {
		Type:    models.EventParticipantUnregistered,
		Subject: "You have left {{activity}}",
		Body: "Hi {{email}},\n\nYou are no longer registered for {{activity}}.\n\n" +
			"Mergington High School",
	},
}

// EmailNotifier is an event sink that emails the affected student.
type EmailNotifier struct {
	sender    sesclient.EmailSender
	fromEmail string
	templates map[models.ParticipantEventType]models.NotificationTemplate
}

func NewEmailNotifier(sender sesclient.EmailSender, fromEmail string) *EmailNotifier {
	return &EmailNotifier{
		sender:    sender,
		fromEmail: fromEmail,
		templates: defaultTemplates,
	}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Publish(ctx context.Context, event models.ParticipantEvent) error {
	// Enrollment accepts an empty email; there is nobody to write to.
	if strings.TrimSpace(event.Email) == "" {
		return nil
	}

	template, ok := n.templates[event.Type]
	if !ok {
		return errors.NewNotificationSendFailedError(string(event.Type),
			fmt.Errorf("no template for event type"))
	}

	data := map[string]string{
		"activity": event.Activity,
		"email":    event.Email,
		"count":    fmt.Sprintf("%d", event.ParticipantCount),
		"max":      fmt.Sprintf("%d", event.MaxParticipants),
	}

	_, err := n.sender.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{event.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(render(template.Subject, data))},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(render(template.Body, data))},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	if err != nil {
		return errors.NewNotificationSendFailedError(string(event.Type), err)
	}
	return nil
}

// render substitutes {{key}} placeholders; unknown placeholders are left as is.
func render(tmpl string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
