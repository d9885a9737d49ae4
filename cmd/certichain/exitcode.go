package main

import "certichain/internal/certificate"

// exitCodeFor maps a verdict to the process exit code: 0 when nothing
// contradicted the ledger, 2 for a proven mismatch, 1 when no record exists
// so nothing could be checked.
func exitCodeFor(verdict certificate.Verdict) int {
	switch verdict {
	case certificate.VerdictAuthentic, certificate.VerdictDisplayedOnly:
		return 0
	case certificate.VerdictFake:
		return 2
	default:
		return 1
	}
}
