// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the directory page as a set of views:
//  1. [EmployeeListView] : Browse the filtered, sorted directory
//  2. [ProfileView] : Read every field of one employee
//  3. [EmployeeFormView] / [GradeFormView] : Create or edit a record
//  4. [GradeListView] : Manage grade levels with assigned counts
//  5. [DataView] : Storage usage, summary and clear-all
//
// Destructive actions ([ConfirmView]) always ask y/n first.
//
// Records are loaded through [repositories.Repositories] by tea.Cmd functions, so every mutation
// ends with a fresh snapshot message rather than in-place edits of the model's slices.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
