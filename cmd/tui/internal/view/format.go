package view

import (
	"context"
	"fmt"
	"time"
)

const opTimeout = 5 * time.Second

// FormatAmount formats an amount in the smallest currency unit.
func FormatAmount(amount int64) string {
	return fmt.Sprintf("%.2f", float64(amount)/100.0)
}

// FormatTime formats a timestamp for display.
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// OpCtx returns a context with a standard timeout for service operations.
func OpCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
