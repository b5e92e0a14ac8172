// Package homework runs the daily batch: one homework sheet per student.
//
// For every student found in the plan folders the generator picks the least
// used screenshots from the student's current and past chapter folders,
// composes them into a JPEG sheet, and, for paid-plan students, appends an
// open-ended question. A student whose name already appears in a .jpeg in
// the output directory is skipped, so rerunning the batch on the same day
// only fills in the gaps.
//
// Failures are isolated per student: a ledger that cannot be saved or a sheet
// that cannot be rendered is recorded in the Summary and the batch moves on.
// A lock file in the state directory keeps two batch runs from overlapping.
package homework
