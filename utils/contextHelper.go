package utils

import (
	"context"
	"fmt"

	"github.com/enescc00/b2bsitesibitmis-sub000/appctx"
)

var (
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyUserName      = appctx.ContextKeyUserName
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserName)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

// ActorFromContext returns the display name recorded in history/ledger rows.
// A request carrying only a user id is recorded as "user:<id>"; background and
// seed paths fall back to "system".
func ActorFromContext(ctx context.Context) string {
	if name, ok := GetUserNameFromContext(ctx); ok && name != "" {
		return name
	}
	if id, ok := GetUserIdFromContext(ctx); ok {
		return fmt.Sprintf("user:%d", id)
	}
	return "system"
}
