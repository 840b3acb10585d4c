// Package receipt implements persistence for the run receipt.
//
// The FileRepository stores and loads the receipt as JSON on disk so an
// operator (or the next run) can see what the previous run accomplished.
package receipt
