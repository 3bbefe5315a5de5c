package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sangkips/mn-payments-api/internal/config"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
)

// EmailService sends receipt confirmation mail over SMTP. When the feature is
// disabled in configuration every call is a no-op.
type EmailService struct {
	config *config.EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{config: cfg}
}

// NotifyReceipt sends a copy of a registered receipt to the given address.
func (s *EmailService) NotifyReceipt(receipt *entity.Receipt, mailTo string) error {
	if !s.config.Enabled {
		return nil
	}
	if mailTo == "" {
		mailTo = s.config.NotifyTo
	}
	if mailTo == "" {
		return nil
	}

	htmlContent, err := s.renderReceiptEmail(receipt)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Tax receipt %s", receipt.BillID)
	message := s.buildHTMLEmail(mailTo, subject, htmlContent)

	return s.sendEmail(mailTo, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := s.config.SMTPHost + ":" + s.config.SMTPPort

	auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPassword, s.config.SMTPHost)

	err := smtp.SendMail(addr, auth, s.config.From, []string{to}, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.From,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

// renderReceiptEmail renders the receipt confirmation template
func (s *EmailService) renderReceiptEmail(receipt *entity.Receipt) (string, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, receipt); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// receiptTemplate is the HTML template for receipt confirmation emails
const receiptTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Tax Receipt</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td style="padding: 40px 0;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);">
                    <tr>
                        <td style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 40px 30px; text-align: center;">
                            <h1 style="color: #ffffff; margin: 0; font-size: 28px; font-weight: 600;">Tax Receipt</h1>
                        </td>
                    </tr>

                    <tr>
                        <td style="padding: 40px 30px;">
                            <p style="color: #4a5568; font-size: 16px; line-height: 1.6; margin: 0 0 20px 0;">
                                Your purchase has been registered with the tax authority.
                            </p>

                            <table role="presentation" style="width: 100%; border-collapse: collapse; margin: 0 0 20px 0;">
                                <tr>
                                    <td style="color: #718096; font-size: 14px; padding: 6px 0;">Receipt number</td>
                                    <td style="color: #1a1a2e; font-size: 14px; padding: 6px 0; text-align: right;">{{.BillID}}</td>
                                </tr>
                                <tr>
                                    <td style="color: #718096; font-size: 14px; padding: 6px 0;">Date</td>
                                    <td style="color: #1a1a2e; font-size: 14px; padding: 6px 0; text-align: right;">{{.ReceiptDate.Format "2006-01-02 15:04"}}</td>
                                </tr>
                                <tr>
                                    <td style="color: #718096; font-size: 14px; padding: 6px 0;">Total amount</td>
                                    <td style="color: #1a1a2e; font-size: 14px; padding: 6px 0; text-align: right;">{{.TotalAmount}}</td>
                                </tr>
                                <tr>
                                    <td style="color: #718096; font-size: 14px; padding: 6px 0;">VAT</td>
                                    <td style="color: #1a1a2e; font-size: 14px; padding: 6px 0; text-align: right;">{{.TotalVAT}}</td>
                                </tr>
                                <tr>
                                    <td style="color: #718096; font-size: 14px; padding: 6px 0;">City tax</td>
                                    <td style="color: #1a1a2e; font-size: 14px; padding: 6px 0; text-align: right;">{{.TotalCityTax}}</td>
                                </tr>
                                {{if .LotteryNumber}}
                                <tr>
                                    <td style="color: #718096; font-size: 14px; padding: 6px 0;">Lottery number</td>
                                    <td style="color: #1a1a2e; font-size: 14px; padding: 6px 0; text-align: right;">{{.LotteryNumber}}</td>
                                </tr>
                                {{end}}
                            </table>

                            <p style="color: #718096; font-size: 14px; line-height: 1.6; margin: 0;">
                                Keep this receipt for the tax lottery. You can verify it with the
                                authority using the receipt number above.
                            </p>
                        </td>
                    </tr>

                    <tr>
                        <td style="background-color: #f8fafc; padding: 30px; text-align: center; border-top: 1px solid #e2e8f0;">
                            <p style="color: #a0aec0; font-size: 14px; margin: 0;">
                                This is an automated message, no reply is needed.
                            </p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`
