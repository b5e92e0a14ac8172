// Package preflight provides readiness checks for the folders and files the
// homework generator depends on.
//
// The CLI "homework doctor" command runs RunAll and prints one line per
// check; "homework generate" runs the same checks first and refuses to start
// when a required directory is unusable. Optional inputs such as the question
// bank or a custom font only fail when they are configured but broken.
package preflight
