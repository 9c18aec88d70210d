package email

import (
	"bytes"
	"html/template"
)

const layout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f4f4f4;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td align="center" style="padding: 40px 0;">
                <table role="presentation" style="width: 600px; border-collapse: collapse; background-color: #ffffff; border-radius: 8px;">
                    <tr>
                        <td style="padding: 32px 30px; text-align: center; background-color: #0F766E; border-radius: 8px 8px 0 0;">
                            <h1 style="margin: 0; color: #ffffff; font-size: 24px;">{{.Title}}</h1>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 32px 30px; font-size: 16px; line-height: 24px; color: #333333;">
                            {{template "body" .}}
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 24px; text-align: center; background-color: #f8f8f8; border-radius: 0 0 8px 8px; font-size: 12px; color: #999999;">
                            PropertyHub account notice. If this was not you, contact your administrator.
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>`

var (
	signInTemplate = template.Must(template.Must(template.New("layout").Parse(layout)).New("body").Parse(`
<p>Hi {{.Name}},</p>
<p>Your account was just signed in to.</p>
<ul>
    <li>When: {{.At.UTC.Format "2006-01-02 15:04 MST"}}</li>
    <li>IP address: {{.IPAddress}}</li>
    <li>Device: {{if .UserAgent}}{{.UserAgent}}{{else}}unknown{{end}}</li>
</ul>`))

	passwordChangedTemplate = template.Must(template.Must(template.New("layout").Parse(layout)).New("body").Parse(`
<p>Hi {{.Name}},</p>
<p>The password on your account was changed and every active session was signed out.</p>`))
)

// SignInNoticeTemplate renders the new sign-in email.
func SignInNoticeTemplate(notice SignInNotice) (string, error) {
	return render(signInTemplate, struct {
		SignInNotice
		Title string
	}{notice, "New sign-in"})
}

// PasswordChangedEmailTemplate renders the password change confirmation.
func PasswordChangedEmailTemplate(name string) (string, error) {
	return render(passwordChangedTemplate, struct {
		Name  string
		Title string
	}{name, "Password changed"})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
