// Package main hosts the homework CLI entrypoint and command graph.
//
// The Cobra command tree covers the daily batch (generate), ad-hoc fair
// selection over any folder (select), ledger inspection (ledger), the student
// roster (students), drill history (pitch), configuration scaffolding
// (config), and readiness checks (doctor). Configuration and logging are
// resolved once in commandContext so subcommands only deal with output.
package main
