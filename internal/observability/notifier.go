package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	slackTimeout = 10 * time.Second
	// digestSectionLimit caps the lines per digest section; Slack rejects
	// section text longer than 3000 characters.
	digestSectionLimit = 15
)

// Notifier posts follow-up digests to an external channel.
type Notifier interface {
	Notify(d Digest) error
}

type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that posts digests to a Slack
// incoming webhook.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: slackTimeout},
	}
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func markdown(text string) *slackText {
	return &slackText{Type: "mrkdwn", Text: text}
}

// Notify posts d to the webhook. An empty digest sends nothing.
func (s *slackNotifier) Notify(d Digest) error {
	if d.Empty() {
		return nil
	}

	body, err := json.Marshal(digestMessage(d))
	if err != nil {
		return fmt.Errorf("encoding slack digest: %w", err)
	}
	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// digestMessage lays the digest out as a header, a one-line summary and one
// section per non-empty group: overdue, due today, lapsed cadence.
func digestMessage(d Digest) slackMessage {
	summary := digestSummary(d)
	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: "commtrack follow-ups for " + d.GeneratedAt.Format("Mon 2 Jan 2006")}},
		{Type: "section", Text: markdown(summary)},
	}

	var overdue, dueToday, lapsed []string
	for _, p := range d.Overdue {
		overdue = append(overdue, fmt.Sprintf("%s *%s*: %s, %s late (scheduled %s UTC)",
			severityEmoji(overdueSeverity(p, d.EscalateAfterDays)), p.CompanyName, p.Type,
			pluralDays(p.DaysOverdue), p.ScheduledDate.UTC().Format("2006-01-02 15:04")))
	}
	for _, p := range d.DueToday {
		dueToday = append(dueToday, fmt.Sprintf("%s *%s*: %s at %s UTC",
			severityEmoji(SeverityLow), p.CompanyName, p.Type, p.ScheduledDate.UTC().Format("15:04")))
	}
	for _, g := range d.Lapsed {
		line := fmt.Sprintf("%s *%s*: never contacted", severityEmoji(cadenceSeverity(g)), g.CompanyName)
		if !g.NeverContacted {
			line = fmt.Sprintf("%s *%s*: last contact %s ago, expected every %s",
				severityEmoji(cadenceSeverity(g)), g.CompanyName, pluralDays(g.DaysSince), pluralDays(g.PeriodicityDays))
		}
		lapsed = append(lapsed, line)
	}

	for _, group := range []struct {
		title string
		lines []string
	}{
		{"Overdue", overdue},
		{"Due today", dueToday},
		{"Contact cadence lapsed", lapsed},
	} {
		if len(group.lines) == 0 {
			continue
		}
		blocks = append(blocks,
			slackBlock{Type: "divider"},
			slackBlock{Type: "section", Text: markdown(digestSection(group.title, group.lines))},
		)
	}

	blocks = append(blocks, slackBlock{
		Type:     "context",
		Elements: []slackText{*markdown(fmt.Sprintf("Overdue items turn red after %s.", pluralDays(d.EscalateAfterDays)))},
	})
	return slackMessage{Text: summary, Blocks: blocks}
}

func digestSection(title string, lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (%d)", title, len(lines))
	for i, line := range lines {
		if i == digestSectionLimit {
			fmt.Fprintf(&b, "\n_and %d more_", len(lines)-digestSectionLimit)
			break
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// digestSummary reads e.g. "*4 follow-ups:* 2 overdue, 1 due today, 1 lapsed cadence".
func digestSummary(d Digest) string {
	var parts []string
	if n := len(d.Overdue); n > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue", n))
	}
	if n := len(d.DueToday); n > 0 {
		parts = append(parts, fmt.Sprintf("%d due today", n))
	}
	if n := len(d.Lapsed); n == 1 {
		parts = append(parts, "1 lapsed cadence")
	} else if n > 1 {
		parts = append(parts, fmt.Sprintf("%d lapsed cadences", n))
	}
	noun := "follow-ups"
	if d.Total() == 1 {
		noun = "follow-up"
	}
	return fmt.Sprintf("*%d %s:* %s", d.Total(), noun, strings.Join(parts, ", "))
}

func severityEmoji(severity AlertSeverity) string {
	switch severity {
	case SeverityHigh:
		return "\U0001f534"
	case SeverityMedium:
		return "\U0001f7e1"
	default:
		return "\U0001f535"
	}
}
