// internal/app/compose.go
package app

import (
	"fmt"
	"html"
	"strconv"

	"draw_notification_bot/internal/domain/draw"
	"draw_notification_bot/internal/domain/notification"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

const drawIntro = "A new Express Entry draw has been published."

// ComposeNotification renders a draw into a subject and plain/HTML bodies.
// The output depends only on the record.
func ComposeNotification(latest draw.Record) notification.Message {
	subject := fmt.Sprintf("New Express Entry Draw #%d: %s (%s)",
		latest.DrawNumber, latest.Category, latest.DateString())

	plain := fmt.Sprintf("%s\n\n%s\n", drawIntro, newDrawTable(latest).Render())

	htmlTable := newDrawTable(latest)
	htmlTable.Style().HTML = table.HTMLOptions{
		CSSClass:    "draw-table",
		EmptyColumn: "&nbsp;",
		EscapeText:  true,
		Newline:     "<br/>",
	}
	htmlBody := fmt.Sprintf("<html>\n<body>\n<h2>%s</h2>\n<p>%s</p>\n%s\n</body>\n</html>\n",
		html.EscapeString(subject), drawIntro, htmlTable.RenderHTML())

	return notification.Message{
		Subject:   subject,
		PlainBody: plain,
		HTMLBody:  htmlBody,
	}
}

func newDrawTable(rec draw.Record) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Draw #", strconv.Itoa(rec.DrawNumber)},
		{"Date", rec.DateString()},
		{"Category", rec.Category},
		{"ITAs Issued", humanize.Comma(int64(rec.ITAsIssued))},
		{"CRS Score", strconv.Itoa(rec.CRSScore)},
	})
	return t
}
