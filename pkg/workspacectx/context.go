// Package workspacectx carries the workspace an operation is scoped to.
package workspacectx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type keyType string

const WorkspaceIDKey keyType = "workspace_id"

func WithWorkspaceID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, WorkspaceIDKey, id)
}

func WorkspaceID(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(WorkspaceIDKey).(snowflake.ID)
	return id, ok && id != 0
}
