package http

import (
	"net/http"

	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
	"github.com/AlibekovAA/chat-accounts/internal/common/httpmetrics"
	"github.com/AlibekovAA/chat-accounts/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware

	return securityHeaders(traceID(recovery(maxRequestSize(metrics.Wrap(handler)))))
}
