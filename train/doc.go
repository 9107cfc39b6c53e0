// Package train streams training jobs into a word-embedding engine.
//
// The engine is a consumed capability behind the Engine interface: it
// owns its worker pool and the update math; this package owns the
// protocol around it. Coordinator drives the fixed lifecycle
//
//	Initialize -> LaunchWorkers -> Submit... -> Join
//
// where Submit never waits on worker completion (corpus IO overlaps
// training compute) and Join is the single blocking call that drains
// the pool and returns the aggregate loss.
//
// There is no cancellation once workers are launched: the only way to
// stop a run is to let Join complete or terminate the process. That
// limitation is inherited from the engine protocol and is deliberately
// not papered over here.
//
// InProc is a pure-Go reference engine implementing skip-gram negative
// sampling against the same fixed-point tables a native engine uses;
// it exists so the protocol and the tables can be tested end to end.
package train
