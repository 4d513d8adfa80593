// Package tasks runs bulk directory operations with real-time progress reporting.
//
// # Operations
//
// [Engine] exposes two operations:
//
//  1. [Engine.BulkImport] : Spreadsheet rows → employees
//     - Validates records on a worker pool
//     - Matches grade names ignoring case and rewrites them to the stored spelling
//     - Saves every accepted record in one write, updating records whose ID already exists
//
//  2. [Engine.BulkExport] : Directory → files
//     - Writes the backup document plus CSV, Markdown, text and XLSX renderings concurrently
//     - Records an export_manifest.json describing each file
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate]. Sends never block; a full channel
// drops the update. Validation progress is rate limited by [ImportOpts.ProgressInterval].
package tasks
