// Package grid drives the portal's data-grid widget: locating rows, editing
// cells through the double-click-to-edit protocol, and sequencing record
// create/edit/delete operations with partial-failure accounting.
//
// The package talks to the browser through the narrow Page and Locator
// interfaces defined in page.go, so every operation can be exercised against
// in-memory fakes. The playwright-backed implementation lives in pkg/browser.
//
// All operations return structured results; driver errors never escape this
// package.
package grid
