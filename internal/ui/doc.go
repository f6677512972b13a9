// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a two-view workflow over the matched album collection:
//  1. [BrowseView] : Scroll the collection, toggle listened state, and apply the favorites filter
//  2. [BusyView] : Monitor real-time progress while a refresh or favorite sync runs
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the sync engine, providing non-blocking
// status reporting during long operations.
//
// Keyboard navigation uses vim-style bindings (j/k, f, l, r, F, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
