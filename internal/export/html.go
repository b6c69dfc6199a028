// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/aria-tui/internal/format"
	"github.com/jeranaias/aria-tui/internal/model"
	"github.com/jeranaias/aria-tui/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a single HTML page with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	return &HTMLExporter{options: opts.withDefaults()}
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv *storage.StoredConversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.Summary)))
	sb.WriteString("    <meta name=\"generator\" content=\"aria\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(e.css())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s\">\n", e.themeClass()))
	sb.WriteString("<main>\n")
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(conv.Summary)))
	sb.WriteString(fmt.Sprintf("<p class=\"meta\">%s · %d messages</p>\n",
		conv.CreatedAt.Format("2006-01-02 15:04"), len(conv.Messages)))

	for _, msg := range conv.Messages {
		sb.WriteString(e.renderMessage(msg))
	}

	sb.WriteString("</main>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) themeClass() string {
	if e.options.Theme == "light" {
		return "light"
	}
	return "dark"
}

// renderMessage renders one bubble. Only successful bot replies are
// formatted; user and error text is shown verbatim.
func (e *HTMLExporter) renderMessage(msg model.Message) string {
	class := "message " + msg.Sender.String()
	if msg.IsError {
		class += " error"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<section class=\"%s\">\n", class))
	sb.WriteString("<header>")
	sb.WriteString(fmt.Sprintf("<span class=\"sender\">%s</span>", html.EscapeString(senderLabel(msg, e.options.BotName))))
	if e.options.IncludeTimestamps && msg.Time != "" {
		sb.WriteString(fmt.Sprintf(" <time>%s</time>", html.EscapeString(msg.Time)))
	}
	sb.WriteString("</header>\n")

	if msg.IsBot() && !msg.IsError {
		sb.WriteString(renderSegments(format.Format(msg.Text)))
	} else {
		sb.WriteString(fmt.Sprintf("<div class=\"text verbatim\">%s</div>\n", html.EscapeString(msg.Text)))
	}
	sb.WriteString("</section>\n")
	return sb.String()
}

// renderSegments converts formatted segments to HTML.
func renderSegments(segments []format.Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case format.SegmentCode:
			sb.WriteString(fmt.Sprintf("<div class=\"code\"><span class=\"lang\">%s</span><pre><code class=\"language-%s\">%s</code></pre></div>\n",
				html.EscapeString(seg.Language),
				html.EscapeString(seg.Language),
				html.EscapeString(seg.Code)))
		default:
			sb.WriteString("<div class=\"text\">")
			for i, line := range seg.Lines {
				if i > 0 {
					sb.WriteString("<br>\n")
				}
				for _, span := range line {
					text := html.EscapeString(span.Text)
					switch span.Kind {
					case format.SpanCode:
						sb.WriteString("<code>" + text + "</code>")
					case format.SpanBold:
						sb.WriteString("<strong>" + text + "</strong>")
					default:
						sb.WriteString(text)
					}
				}
			}
			sb.WriteString("</div>\n")
		}
	}
	return sb.String()
}

// css returns the embedded stylesheet. The colors follow the terminal theme.
func (e *HTMLExporter) css() string {
	return `    <style>
        body.dark  { --bg: #1E1E2E; --fg: #CDD6F4; --muted: #6C7086; --user: #1D4ED8; --user-fg: #E0F2FE;
                     --bot: #3B3655; --bot-fg: #E9E4F5; --err: #881337; --err-fg: #FECACA; --code: #181825; }
        body.light { --bg: #FFFFFF; --fg: #1F2937; --muted: #9CA3AF; --user: #DBEAFE; --user-fg: #1E40AF;
                     --bot: #F5F3FF; --bot-fg: #5B4B8A; --err: #FEE2E2; --err-fg: #991B1B; --code: #F5F5F5; }
        body { margin: 0; background: var(--bg); color: var(--fg);
               font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.5; }
        main { max-width: 820px; margin: 0 auto; padding: 24px 16px; }
        h1 { font-size: 1.4rem; margin-bottom: 4px; }
        .meta, time { color: var(--muted); font-size: 0.8rem; }
        .message { border-radius: 16px; padding: 10px 14px; margin: 12px 0; max-width: 80%; }
        .message.user { margin-left: auto; background: var(--user); color: var(--user-fg); }
        .message.bot { background: var(--bot); color: var(--bot-fg); }
        .message.error { background: var(--err); color: var(--err-fg); }
        .sender { font-weight: 600; font-size: 0.85rem; }
        .verbatim { white-space: pre-wrap; }
        code { font-family: "JetBrains Mono", Menlo, monospace; font-size: 0.9em; }
        .text code { background: var(--code); padding: 1px 4px; border-radius: 4px; }
        .code { background: var(--code); border-radius: 8px; margin: 8px 0; overflow-x: auto; }
        .code .lang { display: block; padding: 4px 10px; color: var(--muted); font-size: 0.75rem; }
        .code pre { margin: 0; padding: 8px 12px; }
    </style>
`
}
