// Package templates renders the HTML pages of the web server.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ReviewSheet/internal/core"
)

const pageStyle = `body{font-family:sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;width:100%;margin-bottom:2rem}
th,td{border:1px solid #ccc;padding:.3rem .5rem;text-align:left;vertical-align:top}
th{background:#f3f3f3}
.completed{color:#17662b}.failed{color:#a11}.cancelled{color:#8a5a00}.in-progress{color:#1a4fa0}
ul{margin:0;padding-left:1.2rem}`

// StatusPage lists the pipeline stages, the run lock and every known job.
func StatusPage(stages []core.Stage, lock core.RunLockStatus, jobs []core.Job) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString("<!DOCTYPE html><html lang=\"ja\"><head><meta charset=\"utf-8\">")
		b.WriteString("<title>Review sheet pipeline</title><style>" + pageStyle + "</style></head><body>")
		b.WriteString("<h1>Review sheet pipeline</h1>")

		b.WriteString("<h2>Stages</h2><ol>")
		for _, st := range stages {
			fmt.Fprintf(&b, "<li value=\"%d\">%s</li>", st.Number(), esc(st.Name()))
		}
		b.WriteString("</ol>")

		b.WriteString("<h2>Run lock</h2><p>")
		if lock.Held {
			fmt.Fprintf(&b, "held by <code>%s</code>", esc(lock.Holder))
			if lock.Since != nil {
				fmt.Fprintf(&b, " since %s", esc(lock.Since.Format(time.DateTime)))
			}
		} else {
			b.WriteString("free")
		}
		b.WriteString("</p>")

		b.WriteString("<h2>Jobs</h2>")
		if len(jobs) == 0 {
			b.WriteString("<p>No jobs yet.</p>")
		} else {
			b.WriteString("<table><thead><tr><th>Job</th><th>Status</th><th>Stage</th><th>Created</th><th>Message</th><th>Progress</th><th>Result</th></tr></thead><tbody>")
			for _, j := range jobs {
				jobRow(&b, j)
			}
			b.WriteString("</tbody></table>")
		}

		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func jobRow(b *strings.Builder, j core.Job) {
	fmt.Fprintf(b, "<tr><td><code>%s</code></td>", esc(j.ID))
	fmt.Fprintf(b, "<td class=\"%s\">%s</td>", esc(string(j.Status)), esc(string(j.Status)))
	fmt.Fprintf(b, "<td>%s</td>", esc(j.CurrentStage))
	fmt.Fprintf(b, "<td>%s</td>", esc(j.CreatedAt.Format(time.DateTime)))

	msg := j.Message
	if j.ErrorMessage != "" && j.ErrorMessage != msg {
		msg += ": " + j.ErrorMessage
	}
	fmt.Fprintf(b, "<td>%s</td>", esc(msg))

	b.WriteString("<td><ul>")
	for _, m := range j.Messages {
		fmt.Fprintf(b, "<li>%s</li>", esc(m))
	}
	b.WriteString("</ul></td><td>")
	if j.ResultsURL != "" {
		fmt.Fprintf(b, "<a href=\"%s\">%s</a>", esc(j.ResultsURL), esc(j.ResultsFile))
	}
	b.WriteString("</td></tr>")
}

func esc(s string) string { return templ.EscapeString(s) }
