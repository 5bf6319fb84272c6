package mail

import (
	"bytes"
	texttemplate "text/template"
)

type template struct {
	name    string
	subject string
	tpl     *texttemplate.Template
}

func newTemplate(name, subject, text string) template {
	return template{
		name:    name,
		subject: subject,
		tpl:     texttemplate.Must(texttemplate.New(name).Parse(text)),
	}
}

func (t template) render(username, link string) (string, error) {
	data := struct {
		Username string
		Link     string
	}{
		Username: username,
		Link:     link,
	}
	var b bytes.Buffer
	if err := t.tpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

var (
	verifyEmail   = newTemplate("verify_email", "Verify your email", verifyEmailText)
	resetPassword = newTemplate("password_reset", "Reset Password", resetPasswordText)
)

const verifyEmailText = `
Hi {{.Username}}, welcome to Speaksfer!

Use the link below to verify your email address.

{{.Link}}

You are receiving this email because this address was used to register a
Speaksfer account. If you did not perform this action, please ignore it.
`

const resetPasswordText = `
Hi {{.Username}},

Use the link below to reset your password.

{{.Link}}

The link stops working once the password has been changed. If you did not
request a reset, please ignore this email.
`
