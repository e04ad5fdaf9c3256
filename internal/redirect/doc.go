// Package redirect rewires the process's standard output and error
// descriptors into pipes drained by dedicated reader threads that forward
// chunked, tagged records to a log sink.
//
// Redirection is a startup-time, call-once operation and is never reversed:
// the duplicated descriptors and reader threads outlive the call that created
// them and persist until process exit. Chunking is byte-oriented rather than
// line-oriented, so a single logical line may be split across records and
// unrelated writes may be coalesced into one record. Bytes still buffered in
// a pipe when the process exits never reach the sink; both are accepted
// limitations of descriptor-level capture.
//
// Only Linux is supported. On other platforms RedirectAll fails without
// touching the streams.
package redirect
