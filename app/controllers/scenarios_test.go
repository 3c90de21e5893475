package controllers_test

import (
	"testing"

	"github.com/shashiranjanraj/bazaar/pkg/testkit"
)

// The scenario files under testdata/scenarios describe request/response
// pairs for endpoints whose behaviour does not depend on seeded rows.
// Request and expected-response bodies live in testdata/bodies so the
// directory glob only picks up scenario files.
func TestAPIScenarios(t *testing.T) {
	srv := newAPI(t)
	testkit.RunDir(t, srv.handler, "testdata/scenarios")
}
