// Package ui declares the presentation collaborators the workflows talk to:
// toasts, confirmation dialogs and navigation.
package ui

import "context"

// Routes the workflows navigate to.
const (
	RouteLogin     = "/auth/login"
	RouteProducts  = "/products"
	RouteDashboard = "/seller/dashboard"
	RouteMedia     = "/seller/media"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

type Notifier interface {
	Notify(level Level, message string)
}

// Confirmation describes a yes/no question.
type Confirmation struct {
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
	Danger      bool
}

type Dialog interface {
	Confirm(ctx context.Context, c Confirmation) bool
}

type Navigator interface {
	Navigate(route string)
}

func Success(n Notifier, msg string) { n.Notify(LevelSuccess, msg) }
func Error(n Notifier, msg string)   { n.Notify(LevelError, msg) }
func Warning(n Notifier, msg string) { n.Notify(LevelWarning, msg) }
func Info(n Notifier, msg string)    { n.Notify(LevelInfo, msg) }

// Common confirmations.
func ConfirmDelete(item string) Confirmation {
	return Confirmation{
		Title:       "Delete " + item,
		Message:     "Are you sure you want to delete this " + item + "? This action cannot be undone.",
		ConfirmText: "Delete",
		CancelText:  "Cancel",
		Danger:      true,
	}
}

func ConfirmDiscard() Confirmation {
	return Confirmation{
		Title:       "Discard changes",
		Message:     "You have unsaved changes. Are you sure you want to leave?",
		ConfirmText: "Discard",
		CancelText:  "Keep editing",
		Danger:      true,
	}
}
