package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// UserHeader carries the caller identity on the HTTP transport.
const UserHeader = "X-Worklog-User"

type contextKey int

const userIDKey contextKey = iota

// getUserID extracts the caller's user ID from context.
func getUserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// withUserID returns a context carrying userID.
func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// userMiddleware resolves the caller from the X-Worklog-User header (HTTP) or
// _meta.user_id (stdio), falling back to defaultUser.
func userMiddleware(defaultUser string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var userID string

			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				userID = strings.TrimSpace(extra.Header.Get(UserHeader))
			}

			// Notifications such as "initialized" may carry nil params.
			if userID == "" {
				if params := req.GetParams(); params != nil {
					func() {
						defer func() { recover() }()
						if meta := params.GetMeta(); meta != nil {
							if uid, ok := meta["user_id"].(string); ok {
								userID = strings.TrimSpace(uid)
							}
						}
					}()
				}
			}

			if userID == "" {
				userID = defaultUser
			}
			if userID != "" {
				ctx = withUserID(ctx, userID)
			}

			return next(ctx, method, req)
		}
	}
}
