// Package testing provides test utilities for the gecco library.
//
// It follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Example usage:
//
//	import (
//	    "testing"
//	    geccotest "github.com/andy-wagner/gecco/testing"
//	)
//
//	func TestMyModule(t *testing.T) {
//	    logger := geccotest.NewTestLogger(t)
//	    // Pass logger to the component under test
//	}
package testing
