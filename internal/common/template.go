package common

import (
	"bytes"
	"html/template"
)

// ExecuteTemplate renders an html template. Values are escaped, names typed
// in by participants end up in mails.
func ExecuteTemplate(source string, data any) (string, error) {
	tmpl, err := template.New("template").Parse(source)
	if err != nil {
		return "", err
	}

	buffer := bytes.NewBuffer(nil)
	err = tmpl.Execute(buffer, data)
	if err != nil {
		return "", err
	}

	return buffer.String(), nil
}

const MatchMailTemplate = `<h2>Hi {{.GiverName}}!</h2>
<p>Your Secret Santa assignment for <strong>{{.PartyName}}</strong> is:</p>
<h3>🎁 {{.ReceiverName}}</h3>
<p><strong>Party Details:</strong></p>
{{if .EventDate}}<p>Date: {{.EventDate}}</p>{{end}}
{{if .EventTime}}<p>Time: {{.EventTime}}</p>{{end}}
{{if .Budget}}<p>Budget: {{.Budget}} {{.Currency}}</p>{{end}}
{{if .Description}}<p>Description: {{.Description}}</p>{{end}}
`

const PasscodeMailTemplate = `<h2>Hi {{.OrganizerName}}!</h2>
<p>Your Secret Santa party <strong>{{.PartyName}}</strong> is ready.</p>
<p>Party code: <strong>{{.PartyID}}</strong></p>
<p>Master passcode: <strong>{{.Passcode}}</strong></p>
<p>Keep the passcode private, it is required to manage the party and to start the matching.</p>
`

type MatchMailData struct {
	GiverName    string
	ReceiverName string
	PartyName    string
	EventDate    string
	EventTime    string
	Budget       string
	Currency     string
	Description  string
}

type PasscodeMailData struct {
	OrganizerName string
	PartyName     string
	PartyID       string
	Passcode      string
}
