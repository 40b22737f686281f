package service

import (
	"time"

	"github.com/AlibekovAA/chat-accounts/internal/observability/metrics"
)

func incrementSessionTokensIssued() {
	metrics.SessionTokensIssued.Inc()
}

func incrementSessionTokensRevoked() {
	metrics.SessionTokensRevoked.Inc()
}

func incrementAccountLockouts() {
	metrics.AccountLockouts.Inc()
}

func recordRegistration(status Status) {
	metrics.RegistrationsTotal.WithLabelValues(string(status)).Inc()
}

func recordAuthentication(status Status) {
	metrics.AuthenticationsTotal.WithLabelValues(string(status)).Inc()
}

func recordTokenValidation(status Status) {
	metrics.TokenValidationsTotal.WithLabelValues(string(status)).Inc()
}

func observePasswordHash(start time.Time) {
	metrics.PasswordHashDurationSeconds.Observe(time.Since(start).Seconds())
}
