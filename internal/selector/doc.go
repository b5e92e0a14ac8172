// Package selector picks homework screenshots least-used first.
//
// A selection groups candidate paths by containing folder, loads each folder's
// usage ledger, registers unseen files at zero, shuffles the flattened pool,
// stable-sorts it by ascending usage, and takes the first n. The shuffle is the
// only source of randomness: files tied on usage come out in a random order,
// while a less-used file always beats a more-used one. Picked files are
// incremented and every touched folder's ledger is saved, including folders
// that contributed no pick, so newly discovered files are registered at once.
//
// Saves are isolated per folder. A folder whose ledger cannot be written is
// reported in Result.Failed and its picks are withheld from Result.Picked;
// other folders are unaffected.
//
// A Selector owns its random source and is not safe for concurrent use.
package selector
