// Package tasks runs long meal plan operations with real-time progress reporting.
//
// # Bulk export
//
// [Exporter.BulkExport] writes every saved meal plan (or a chosen subset) to an output directory.
// Plans are fetched one at a time under a rate limiter and handed to a pool of workers that
// render them with the formatter package. A failed plan is recorded and the export carries on.
// When all plans are done a manifest summarising the run is written next to the files.
//
// # Progress Reporting
//
// Operations take an optional channel of [ProgressUpdate]. Sends never block: when the channel
// is full the update is dropped.
package tasks
