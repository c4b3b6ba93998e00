package mail

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"gopkg.in/gomail.v2"
)

const syncReportTemplate = `<html>
<body>
	<h2>Sincronização inicial concluída ✅</h2>
	<p>O backfill de contatos para o Omnisend terminou.</p>
	<ul>
		<li><strong>Contatos enviados:</strong> {{.Contacts}}</li>
		<li><strong>Batches:</strong> {{.Batches}}</li>
		<li><strong>Duração:</strong> {{.Took}}</li>
	</ul>
	<p>Administradores ficaram de fora, como sempre.</p>
</body>
</html>`

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

// SendSyncReport avisa o operador que o backfill terminou, com os números
func (s *EmailSender) SendSyncReport(to string, contacts, batches int, took time.Duration) error {
	data := SyncReportData{
		Contacts: contacts,
		Batches:  batches,
		Took:     took.Round(time.Second).String(),
	}

	t, err := template.New("sync_report").Parse(syncReportTemplate)
	if err != nil {
		return fmt.Errorf("erro ao ler template de email: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Backfill Omnisend concluído: %d contatos", contacts))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
