package basinexport

import (
	"fmt"
	"net/smtp"
	"strings"

	"hydroclip/services/basinexport/db"

	"github.com/jordan-wright/email"
)

type EmailConfig struct {
	Server   string   `json:"server"`
	Port     int      `json:"port"`
	Address  string   `json:"address"`
	Password string   `json:"password"`
	To       []string `json:"to"`
}

func (c EmailConfig) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

// Notifier mails the analyst when an export job reaches a terminal
// state, so nobody has to watch the job table all afternoon.
type Notifier struct {
	config EmailConfig
}

func NewNotifier(config EmailConfig) Notifier {
	return Notifier{config: config}
}

func (n Notifier) JobFinished(job db.ExportJob) error {
	if !n.config.Enabled() {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Export job %s (%s/%s) finished with state %s.\n", job.TaskId, job.Region, job.Kind, job.State)
	if job.DestinationUri != "" {
		fmt.Fprintf(&body, "Output: %s\n", job.DestinationUri)
	}
	if job.Error != "" {
		fmt.Fprintf(&body, "Error: %s\n", job.Error)
	}

	e := email.NewEmail()
	e.From = n.config.Address
	e.To = n.config.To
	e.Subject = fmt.Sprintf("[hydroclip] %s export for %s: %s", job.Kind, job.Region, job.State)
	e.Text = []byte(body.String())

	auth := smtp.PlainAuth("", n.config.Address, n.config.Password, n.config.Server)
	return e.Send(fmt.Sprintf("%s:%d", n.config.Server, n.config.Port), auth)
}
