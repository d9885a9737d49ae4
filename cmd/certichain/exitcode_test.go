package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"certichain/internal/certificate"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, 0, exitCodeFor(certificate.VerdictAuthentic))
	assert.Equal(t, 0, exitCodeFor(certificate.VerdictDisplayedOnly))
	assert.Equal(t, 2, exitCodeFor(certificate.VerdictFake))
	assert.Equal(t, 1, exitCodeFor(certificate.VerdictUnknown))
	assert.Equal(t, 1, exitCodeFor(certificate.Verdict("")))
}
