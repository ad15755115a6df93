package templates

import (
	"fmt"
	"html"
	"strings"
)

// DigestJob is one posting listed in a subscription digest
type DigestJob struct {
	Title           string
	Company         string
	Location        string
	MatchPercentage int
}

// RenderJobDigest lists new postings that matched a job subscription
func RenderJobDigest(jobs []DigestJob) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%d new job posting(s) match your subscription.</p>", len(jobs))
	for _, j := range jobs {
		b.WriteString(`<div class="item">`)
		fmt.Fprintf(&b, "<h3>%s</h3>", html.EscapeString(j.Title))
		fmt.Fprintf(&b, `<div class="muted">%s &middot; %s</div>`, html.EscapeString(j.Company), html.EscapeString(j.Location))
		if j.MatchPercentage > 0 {
			fmt.Fprintf(&b, "<div>Skill match: <strong>%d%%</strong></div>", j.MatchPercentage)
		}
		b.WriteString("</div>")
	}
	b.WriteString(`<p class="muted">Manage your subscriptions from the jobs page.</p>`)
	return layout("New jobs for you", "New jobs for you", b.String())
}

// JobDigestPlain is the text alternative of RenderJobDigest
func JobDigestPlain(jobs []DigestJob) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d new job posting(s) match your subscription:\n\n", len(jobs))
	for _, j := range jobs {
		fmt.Fprintf(&b, "- %s at %s (%s)\n", j.Title, j.Company, j.Location)
	}
	return b.String()
}

// RenderReferralReminder nudges a job poster about a referral nobody has looked at
func RenderReferralReminder(jobTitle, candidateName string, daysPending int) string {
	body := fmt.Sprintf(`<p>A referral for <strong>%s</strong> has been waiting for %d days.</p>
      <div class="item"><h3>%s</h3><div class="muted">Status: pending</div></div>
      <p>Please review it so the referrer and candidate hear back.</p>`,
		html.EscapeString(jobTitle), daysPending, html.EscapeString(candidateName))
	return layout("Referral awaiting review", "Referral awaiting review", body)
}

// RenderContactCopy forwards a contact form submission to the staff inbox
func RenderContactCopy(name, email, subject, message string) string {
	body := fmt.Sprintf(`<p><strong>From:</strong> %s &lt;%s&gt;</p>
      <p><strong>Subject:</strong> %s</p>
      <div class="item">%s</div>`,
		html.EscapeString(name), html.EscapeString(email), html.EscapeString(subject), paragraphs(message))
	return layout("New contact message", "New contact message", body)
}
