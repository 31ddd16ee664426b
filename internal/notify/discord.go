// Package notify posts a summary of a publishing run to a Discord webhook.
package notify

import (
	"fmt"

	"github.com/gtuk/discordwebhook"

	"github.com/lucko/mod-publish/internal/branding"
	"github.com/lucko/mod-publish/internal/publish"
)

// Discord sends run summaries to a webhook URL.
type Discord struct {
	url  string
	send func(url string, msg discordwebhook.Message) error
}

// NewDiscord creates a notifier for the webhook at url.
func NewDiscord(url string) *Discord {
	return &Discord{url: url, send: discordwebhook.SendMessage}
}

// BuildMessage renders report as a webhook message with one field per
// outcome.
func BuildMessage(report *publish.Report) discordwebhook.Message {
	username := branding.DisplayName()
	title := fmt.Sprintf("%s published", report.Project)
	if len(report.Failed()) > 0 {
		title = fmt.Sprintf("%s published with %d failure(s)", report.Project, len(report.Failed()))
	}

	fields := make([]discordwebhook.Field, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		name := o.Loader.DisplayName()
		if o.Publisher != "" {
			name = fmt.Sprintf("%s → %s", o.Loader.DisplayName(), o.Publisher)
		}
		value := o.RemoteID
		if o.Version != "" {
			value = fmt.Sprintf("%s: %s", o.Version, o.RemoteID)
		}
		if o.Err != nil {
			value = "failed: " + o.Err.Error()
		}
		inline := o.Err == nil
		fields = append(fields, discordwebhook.Field{Name: &name, Value: &value, Inline: &inline})
	}

	embed := discordwebhook.Embed{
		Title:  &title,
		Fields: &fields,
	}
	return discordwebhook.Message{
		Username: &username,
		Embeds:   &[]discordwebhook.Embed{embed},
	}
}

// Notify posts the summary of report.
func (d *Discord) Notify(report *publish.Report) error {
	if err := d.send(d.url, BuildMessage(report)); err != nil {
		return fmt.Errorf("sending discord notification: %w", err)
	}
	return nil
}
