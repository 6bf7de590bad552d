package invoicehttp

import (
	"log/slog"

	"github.com/odyssey-erp/odyssey-invoice/internal/invoice"
)

// LogNotifier reports blocked submissions to the logger. The HTTP client
// receives the same notice in the problem response.
func LogNotifier(logger *slog.Logger) invoice.Notifier {
	return invoice.NotifierFunc(func(n invoice.Notice) {
		logger.Info("invoice submission notice", slog.String("title", n.Title), slog.String("message", n.Message))
	})
}
