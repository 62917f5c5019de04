package testing

import (
	"context"
	"testing"

	"github.com/gridnfs/gridnfs/pkg/grid"
)

// ClientTestSuite is a test suite for grid.Client implementations. It
// tests the interface contract, not implementation details, making it
// reusable across different backends (memory, S3, etc.).
//
// Usage:
//
//	func TestMyGridStore(t *testing.T) {
//	    suite := &testing.ClientTestSuite{
//	        NewClient: func() (grid.Client, string) {
//	            return mystore.New(), "/root/path"
//	        },
//	    }
//	    suite.Run(t)
//	}
type ClientTestSuite struct {
	// NewClient is a factory function that creates a fresh client for
	// each test, returning it together with an existing root collection
	// path. This ensures test isolation.
	NewClient func() (grid.Client, string)
}

// Run executes all tests in the suite.
func (suite *ClientTestSuite) Run(t *testing.T) {
	t.Run("Stat", suite.RunStatTests)
	t.Run("Create", suite.RunCreateTests)
	t.Run("List", suite.RunListTests)
	t.Run("Permissions", suite.RunPermissionTests)
	t.Run("Stats", suite.RunStatsTests)
	t.Run("Sessions", suite.RunSessionTests)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
