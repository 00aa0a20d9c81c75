package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `worklog tracks work sessions: one open session per user, closed by the user or reclaimed automatically.

Tools:
- begin(note?): start your workday. Rejected softly if you already have an open session.
- end(finish_note?): stop your open session; reports hours worked. The finish note is appended as "[Finished: ...]".
- status: show your open session and elapsed hours.
- history(member?, limit?): closed sessions, newest first (default 5).
- summary(member?, days?): total hours over the trailing days (default 7).

Identity:
- HTTP: send the X-Worklog-User header.
- Stdio: pass _meta.user_id; otherwise the server's default user is used.

Sessions left open longer than the configured maximum are stopped at exactly that many hours.
A notice about it is attached to your next reply.

Docs: worklog://docs/usage
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "worklog://docs/usage",
		Name:        "docs_usage",
		Title:       "worklog usage",
		Description: "Session lifecycle, reclamation and reporting rules.",
		Content: `# worklog

## Lifecycle

1. ` + "`begin`" + ` opens a session stamped with the server clock (whole seconds).
2. ` + "`end`" + ` closes it. Hours are ` + "`(stop - start) / 3600`" + `.
3. A second ` + "`begin`" + ` while a session is open is rejected; nothing is written.
4. ` + "`end`" + ` without an open session is rejected.

## Reclamation

A background sweep closes sessions open longer than the configured maximum (16h by default).
The stop time is set to start + maximum, never to the sweep time. The user is told on their next call.

## Reporting

- ` + "`history`" + ` lists closed sessions only, newest start first.
- ` + "`summary`" + ` totals closed sessions whose start falls inside the window. A session counts
  in full even if it ended after the window began.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
