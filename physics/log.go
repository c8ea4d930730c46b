package physics

import "log/slog"

// logger is the package-level structured logger. The GJK and EPA code
// logs degenerate-numeric conditions through it rather than returning an
// error, consistent with the "no errors surface from step" policy; the
// solver and joint code fall back silently.
var logger = slog.Default()

// SetLogger replaces the package-level logger. Call once at startup; the
// physics package itself is not safe for concurrent reconfiguration mid-step.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
