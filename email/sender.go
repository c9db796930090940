// Package email sends transactional notifications through SendGrid.
package email

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"safe2gether/config"
	"safe2gether/metrics"
	"safe2gether/models"
)

// Sender handles email sending functionality
type Sender struct {
	config *config.Config
	client *sendgrid.Client
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		config: cfg,
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
	}
}

func (s *Sender) send(template, recipient, subject, plain, html string) error {
	from := mail.NewEmail(s.config.SendGridFromName, s.config.SendGridFromEmail)
	to := mail.NewEmail(recipient, recipient)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	response, err := s.client.Send(message)
	if err != nil {
		metrics.EmailSendTotal.WithLabelValues(template, "error").Inc()
		return err
	}
	if response.StatusCode >= 300 {
		metrics.EmailSendTotal.WithLabelValues(template, "error").Inc()
		return fmt.Errorf("sendgrid status %d: %s", response.StatusCode, response.Body)
	}

	metrics.EmailSendTotal.WithLabelValues(template, "ok").Inc()
	log.Infof("Email %q sent to %s! Status: %d", template, recipient, response.StatusCode)
	return nil
}

// SendReportConfirmation confirms to the author that their report was
// registered.
func (s *Sender) SendReportConfirmation(recipient, username string, reportID int64, title, category, address string) error {
	subject := fmt.Sprintf("Reporte #%d registrado - Safe2Gether", reportID)

	extra := ""
	if category != "" {
		extra += fmt.Sprintf("<p><strong>Categoría:</strong> %s</p>", category)
	}
	if address != "" {
		extra += fmt.Sprintf("<p><strong>Dirección:</strong> %s</p>", address)
	}

	plain := fmt.Sprintf(`Hola %s,

Tu reporte #%d (%s) ha sido registrado exitosamente.

Gracias por ayudar a mantener informada a la comunidad.

El equipo de Safe2Gether`, username, reportID, title)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    %s
    <div style="background: white; padding: 30px; border: 1px solid #ddd;">
        <p>Hola <strong>%s</strong>,</p>
        <p>Tu reporte ha sido registrado exitosamente.</p>
        <div style="background-color: #f8f9fa; border-left: 4px solid #0D47A1; padding: 15px; margin: 20px 0;">
            <p><strong>N° de Reporte:</strong> #%d</p>
            <p><strong>Título:</strong> %s</p>
            %s
        </div>
        <p style="color: #666; font-size: 14px;">Gracias por ayudar a mantener informada a la comunidad.</p>
    </div>
    %s
</body>
</html>`, s.header("📣", "Confirmación de Registro de Reporte"), username, reportID, title, extra, s.footer())

	return s.send("report_confirmation", recipient, subject, plain, html)
}

// SendNewReportNotification tells a follower that someone they follow
// published a new report.
func (s *Sender) SendNewReportNotification(recipient, followerName, authorName, title string, reportID int64, district string) error {
	subject := fmt.Sprintf("🚨 Nuevo reporte de %s en %s", authorName, district)
	reportLink := fmt.Sprintf("%s/#/reportes/%d", s.config.FrontendBaseURL, reportID)

	plain := fmt.Sprintf(`Hola %s,

%s ha publicado un nuevo reporte que podría interesarte: %s (distrito: %s).

Ver el reporte: %s`, followerName, authorName, title, district, reportLink)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    %s
    <div style="background: white; padding: 30px; border: 1px solid #ddd;">
        <p>Hola <strong>%s</strong>,</p>
        <p><strong>%s</strong> ha publicado un nuevo reporte que podría interesarte:</p>
        <div style="background-color: #f8f9fa; border-left: 4px solid #9B080C; padding: 20px; margin: 20px 0;">
            <h2 style="margin-top: 0; color: #08192D;">%s</h2>
            <p><strong>📍 Distrito:</strong> %s</p>
        </div>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #9B080C; color: white; text-decoration: none; padding: 15px 30px; border-radius: 5px; display: inline-block; font-weight: bold;">Ver Reporte Completo</a>
        </div>
    </div>
    %s
</body>
</html>`, s.header("🚨", "Nuevo Reporte de Seguridad"), followerName, authorName, title, district, reportLink, s.footer())

	return s.send("new_report", recipient, subject, plain, html)
}

// SendPasswordReset mails a reset link built from the given token.
func (s *Sender) SendPasswordReset(recipient, username, token string) error {
	resetLink := fmt.Sprintf("%s/#/reset-password?token=%s", s.config.FrontendBaseURL, token)
	subject := "Recupera tu contraseña - Safe2Gether"

	plain := fmt.Sprintf(`Hola %s,

Recibimos una solicitud para restablecer la contraseña de tu cuenta.
El enlace expira en 1 hora: %s

Si no solicitaste este cambio, ignora este correo.`, username, resetLink)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    %s
    <div style="background: white; padding: 30px; border: 1px solid #ddd;">
        <p>Hola <strong>%s</strong>,</p>
        <p>Recibimos una solicitud para restablecer la contraseña de tu cuenta.</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #9B080C; color: white; text-decoration: none; padding: 15px 30px; border-radius: 5px; display: inline-block; font-weight: bold;">Restablecer Contraseña</a>
        </div>
        <div style="background-color: #f8f9fa; border-left: 4px solid #9B080C; padding: 15px; margin: 20px 0;">
            <strong>⏰ Este link expira en 1 hora</strong>
        </div>
        <p>Si tienes problemas, copia este enlace:</p>
        <p style="word-break: break-all; color: #0D47A1;">%s</p>
        <p style="color: #666; font-size: 14px;">Si no solicitaste este cambio, ignora este correo.</p>
    </div>
    %s
</body>
</html>`, s.header("🔐", "Recuperación de Contraseña"), username, resetLink, resetLink, s.footer())

	return s.send("password_reset", recipient, subject, plain, html)
}

// SendRiskAlert mails a preventive summary of the danger level in an
// area of interest.
func (s *Sender) SendRiskAlert(recipient, username string, risk *models.RiskAssessment) error {
	color, emoji := riskStyle(risk.DangerLevel)
	subject := fmt.Sprintf("%s Alerta de Seguridad: %s - Nivel %s", emoji, risk.AreaName, risk.DangerLevel)

	plain := fmt.Sprintf(`Hola %s,

Resumen de seguridad para tu área de interés %q (últimos %d días):
Nivel de peligro: %s
Total de reportes: %d`, username, risk.AreaName, risk.WindowDays, risk.DangerLevel, risk.TotalReports)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    %s
    <div style="background: white; padding: 30px; border: 1px solid #ddd;">
        <p>Hola <strong>%s</strong>,</p>
        <p>Te enviamos un resumen del nivel de seguridad en tu área de interés:</p>
        <div style="background-color: #f8f9fa; border-left: 4px solid %s; padding: 20px; margin: 20px 0;">
            <h2 style="margin-top: 0; color: %s;">%s %s</h2>
            <p><strong>Nivel de Peligro:</strong> <span style="color: %s; font-size: 18px; font-weight: bold;">%s</span></p>
            <p><strong>Período analizado:</strong> Últimos %d días</p>
            <p><strong>Total de reportes:</strong> %d</p>
        </div>
        <h3 style="color: #08192D;">📊 Tipos de Incidentes Reportados:</h3>
        %s
    </div>
    %s
</body>
</html>`, s.header(emoji, "Alerta Preventiva de Seguridad"), username, color, color, emoji, risk.AreaName,
		color, risk.DangerLevel, risk.WindowDays, risk.TotalReports, crimeTypesHTML(risk.CrimeTypes), s.footer())

	return s.send("risk_alert", recipient, subject, plain, html)
}

func (s *Sender) header(emoji, tagline string) string {
	return fmt.Sprintf(`<div style="background: linear-gradient(135deg, #08192D 0%%, #0D47A1 100%%); color: white; padding: 30px; text-align: center; border-radius: 8px 8px 0 0;">
        <h1>%s Safe2Gether</h1>
        <p>%s</p>
    </div>`, emoji, tagline)
}

func (s *Sender) footer() string {
	return `<div style="text-align: center; padding: 20px; color: #999; font-size: 12px;">
        © Safe2Gether | Este es un email automático
    </div>`
}

// crimeTypesHTML renders the category tally most-frequent first.
func crimeTypesHTML(types map[string]int) string {
	if len(types) == 0 {
		return "<p>No se registraron incidentes en este período.</p>"
	}

	type kv struct {
		category string
		count    int
	}
	sorted := make([]kv, 0, len(types))
	for category, count := range types {
		sorted = append(sorted, kv{category, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].category < sorted[j].category
	})

	var b strings.Builder
	b.WriteString("<ul style='margin: 10px 0; padding-left: 20px;'>")
	for _, entry := range sorted {
		fmt.Fprintf(&b, "<li><strong>%s:</strong> %d reporte(s)</li>", entry.category, entry.count)
	}
	b.WriteString("</ul>")
	return b.String()
}

func riskStyle(level string) (color, emoji string) {
	switch level {
	case models.DangerLow:
		return "#28a745", "✅"
	case models.DangerMedium:
		return "#ffc107", "⚠️"
	case models.DangerHigh:
		return "#dc3545", "🚨"
	default:
		return "#6c757d", "ℹ️"
	}
}
