package templates

import (
	"fmt"
	"html"
	"strings"
)

const footer = `<div class="footer">
      <p>&copy; Alumni Hub | You are receiving this because you signed up on the alumni portal.</p>
    </div>`

// layout wraps already-escaped body HTML in the branded shell
func layout(title, heading, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f5f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #1e3a8a 0%%, #2563eb 100%%); padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 32px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .item { border: 1px solid #e5e7eb; border-radius: 8px; padding: 14px 16px; margin: 12px 0; }
    .item h3 { margin: 0 0 4px 0; font-size: 16px; color: #1e3a8a; }
    .muted { color: #6b7280; font-size: 13px; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    %s
  </div>
</body>
</html>`, title, heading, body, footer)
}

// paragraphs escapes plain text and keeps its line breaks
func paragraphs(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

// RenderGenericEmail generates branded HTML for a plain text email such as a newsletter issue.
// The subject is shown in the header banner.
func RenderGenericEmail(subject, bodyContent string) string {
	safeSubject := html.EscapeString(subject)
	return layout(safeSubject, safeSubject, paragraphs(bodyContent))
}
