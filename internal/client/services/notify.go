// Package services holds the console's application services: the session
// manager, the product synchronizer and the mutation coordinator. Services
// catch failures at their boundary, report them through a Notifier and
// return the error so callers can decide whether to react; nothing here
// panics into the rendering layer.
package services

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	// Loading shows a persistent indicator that is later replaced by the
	// outcome reported on the returned Pending.
	Loading(msg string) Pending
}

// Pending is an in-progress indicator.
type Pending interface {
	Success(msg string)
	Error(msg string)
}
