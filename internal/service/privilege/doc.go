// Package privilege reports whether the current process runs with
// administrative rights. The check is the first gate of the setup pipeline:
// every later step (writing to a system path, launching an elevated child)
// would otherwise fail late and confusingly.
package privilege
