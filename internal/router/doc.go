// Package router resolves locations to pages and renders them into a
// single mount point.
//
// Lifecycle:
//   - routes are registered in order with Route, the last one a CatchAll
//   - Install binds the router to NavigateMsg/BackMsg and renders the
//     start location
//   - each navigation tears down the mounted page (Disconnecter) before
//     the next one is produced, then appends the new page and marks the
//     links that point at the current path
//
// A Router is driven from a bubbletea Update function and is not safe for
// concurrent use. Page production runs inside a tea.Cmd; Views and Guard
// producers may therefore run on any goroutine.
package router
