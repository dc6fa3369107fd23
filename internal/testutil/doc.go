// Package testutil provides fakes shared by service tests.
package testutil
