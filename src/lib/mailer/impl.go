package mailer

import (
	"bytes"
	"cinco/src/config"
	"cinco/src/templates"
	"html/template"
	"sync"
	"time"
)

const ConfirmationSubject = "Cinco Registration Confirmed"

var (
	tmpl     *template.Template
	tmplErr  error
	tmplOnce sync.Once
)

func getTemplates() (*template.Template, error) {
	tmplOnce.Do(func() {
		tmpl, tmplErr = templates.Load()
	})
	return tmpl, tmplErr
}

type confirmationData struct {
	TeamName string
	Date     string
}

// RenderConfirmationEmail returns the subject and HTML body sent to every
// member email once a team is paid.
func RenderConfirmationEmail(teamName string, date time.Time) (string, string, error) {
	t, err := getTemplates()
	if err != nil {
		return "", "", err
	}
	var buf bytes.Buffer
	err = t.ExecuteTemplate(&buf, "confirmation_email.html", &confirmationData{
		TeamName: teamName,
		Date:     date.Format(config.EMAIL_DATE_FORMAT),
	})
	if err != nil {
		return "", "", err
	}
	return ConfirmationSubject, buf.String(), nil
}
