// Package mail sends the notes email export over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

const notesTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2>Your notes from {{.UserName}}'s workspace</h2>
  <p>{{.Count}} note(s) exported on {{.ExportedAt}}.</p>
  {{range .Notes}}
  <div style="border: 1px solid #d2d6dc; border-radius: 6px; padding: 12px; margin-bottom: 12px;">
    <h3 style="margin: 0 0 4px 0;">{{.Title}}</h3>
    {{if .LessonTitle}}<p style="color: #6b7280; margin: 0 0 8px 0;">Lesson: {{.LessonTitle}}</p>{{end}}
    <p style="white-space: pre-wrap;">{{.Content}}</p>
    {{if .Tags}}<p style="color: #6b7280;">Tags: {{range $i, $t := .Tags}}{{if $i}}, {{end}}{{$t}}{{end}}</p>{{end}}
  </div>
  {{end}}
</body>
</html>`

var notesTmpl = template.Must(template.New("notes").Parse(notesTemplate))

type noteView struct {
	Title       string
	LessonTitle string
	Content     string
	Tags        []string
}

type notesView struct {
	UserName   string
	Count      int
	ExportedAt string
	Notes      []noteView
}

// RenderNotes produces the HTML body of a notes export email.
func RenderNotes(userName string, exportedAt time.Time, notes []model.Note) (string, error) {
	view := notesView{
		UserName:   userName,
		Count:      len(notes),
		ExportedAt: exportedAt.Format("2006-01-02 15:04"),
	}
	for _, note := range notes {
		entry := noteView{Title: note.Title, Content: note.Content, Tags: note.Tags}
		if note.LessonTitle != nil {
			entry.LessonTitle = *note.LessonTitle
		}
		view.Notes = append(view.Notes, entry)
	}
	var buf bytes.Buffer
	if err := notesTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendNotes emails the given notes to the recipient as a single HTML message.
func (m *Mailer) SendNotes(to, userName string, notes []model.Note) error {
	body, err := RenderNotes(userName, time.Now(), notes)
	if err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Notes export (%d notes)", len(notes)))
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}
