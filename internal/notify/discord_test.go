package notify

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gtuk/discordwebhook"

	"github.com/lucko/mod-publish/internal/loader"
	"github.com/lucko/mod-publish/internal/publish"
)

func testReport() *publish.Report {
	return &publish.Report{
		Project: "spark",
		Outcomes: []publish.Outcome{
			{Loader: loader.Forge, Publisher: "curseforge", Version: "1.10.53", RemoteID: "4567890"},
			{Loader: loader.Forge, Publisher: "modrinth", Version: "1.10.53", Err: errors.New("status 500")},
		},
	}
}

func TestBuildMessage(t *testing.T) {
	msg := BuildMessage(testReport())

	embeds := *msg.Embeds
	if len(embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(embeds))
	}
	if got := *embeds[0].Title; got != "spark published with 1 failure(s)" {
		t.Errorf("Title = %q", got)
	}

	fields := *embeds[0].Fields
	if len(fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(fields))
	}
	if *fields[0].Name != "Forge → curseforge" || *fields[0].Value != "1.10.53: 4567890" {
		t.Errorf("field[0] = %q: %q", *fields[0].Name, *fields[0].Value)
	}
	if !strings.HasPrefix(*fields[1].Value, "failed: ") || *fields[1].Inline {
		t.Errorf("field[1] = %q inline=%v", *fields[1].Value, *fields[1].Inline)
	}
}

func TestNotifyPostsToWebhook(t *testing.T) {
	var received discordwebhook.Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("decoding webhook body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := NewDiscord(server.URL).Notify(testReport()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if received.Embeds == nil || len(*received.Embeds) != 1 {
		t.Fatalf("webhook received %+v", received)
	}
}

func TestNotifyWrapsError(t *testing.T) {
	d := &Discord{url: "http://example.invalid", send: func(string, discordwebhook.Message) error {
		return errors.New("rate limited")
	}}
	err := d.Notify(testReport())
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Notify = %v", err)
	}
}
