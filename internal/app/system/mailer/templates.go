// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ConfirmationEmailData holds data for the sign-up confirmation email.
type ConfirmationEmailData struct {
	SiteName    string
	FirstName   string
	ConfirmLink string
	ExpiresIn   string // e.g., "48 heures"
}

// BuildConfirmationEmail creates the confirmation email with both HTML and
// text bodies. The caller sets To.
func BuildConfirmationEmail(data ConfirmationEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Confirmez votre adresse email - %s", data.SiteName),
		TextBody: buildConfirmationText(data),
		HTMLBody: buildConfirmationHTML(data),
	}
}

func greeting(name string) string {
	if name == "" {
		return "Bonjour,"
	}
	return "Bonjour " + name + ","
}

func buildConfirmationText(data ConfirmationEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(greeting(data.FirstName) + "\n\n")
	buf.WriteString(fmt.Sprintf("Merci de vous être inscrit sur %s.\n", data.SiteName))
	buf.WriteString("Confirmez votre adresse email en ouvrant ce lien :\n")
	buf.WriteString(data.ConfirmLink + "\n\n")
	buf.WriteString(fmt.Sprintf("Ce lien expire dans %s.\n\n", data.ExpiresIn))
	buf.WriteString("Si vous n'êtes pas à l'origine de cette inscription, ignorez ce message.\n")
	return buf.String()
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(confirmationHTMLTemplate))

func buildConfirmationHTML(data ConfirmationEmailData) string {
	var buf bytes.Buffer
	_ = confirmationTmpl.Execute(&buf, struct {
		ConfirmationEmailData
		Greeting string
	}{data, greeting(data.FirstName)})
	return buf.String()
}

const confirmationHTMLTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Confirmation</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #2563eb;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">{{.Greeting}}</p>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Merci de vous être inscrit. Confirmez votre adresse email pour accéder à vos cours.
              </p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.ConfirmLink}}" style="display: inline-block; padding: 14px 32px; background-color: #2563eb; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      Confirmer mon email
                    </a>
                  </td>
                </tr>
              </table>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">
                Ce lien expire dans {{.ExpiresIn}}.
              </p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                Si vous n'êtes pas à l'origine de cette inscription, ignorez ce message.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
