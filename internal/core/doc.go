// Package core runs the review sheet pipeline as jobs.
//
// A job walks the stages in ascending order, each reading only what the
// previous stage left on disk:
//
//  1. convert: downloads to flat tables ([ConvertStage], pluggable [Converter])
//  2. normalize: every header and cell through the text normalizer
//  3. build: review sheets decoded into the canonical tables
//  4. load: canonical tables copied into a database, when one is configured
//
// A final step bundles the canonical tables into processed_data_{job}.zip.
//
// # Jobs
//
// [Service.Start] records a job and runs it on one background goroutine. A
// process-wide [RunLock] admits one running job; a start that finds it held
// fails at once with [ErrPipelineBusy] and the new job is recorded as failed.
// Job state lives in a [JobRegistry]; the in-memory implementation hands out
// copies so status reads never race the running job.
//
// # Cancellation
//
// [Service.RequestCancel] sets the job's [CancelToken]. Stages observe it
// only at safe points, through the [Reporter] they publish progress with:
// a Reporter call made after the request records nothing and returns
// [ErrCancelled], which unwinds the job to cancelled. Work already in flight
// is never interrupted.
//
// # Errors
//
// A [SkippableInputError] skips one source file. A [FatalStageError] fails
// the job and names the stage. [MapError] turns any of them into a
// [UserMessage] with a support code.
package core
