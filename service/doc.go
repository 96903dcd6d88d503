// Package service coordinates the routing core of a daemon: the selected
// routing module, plan persistence, the plan-generation sequencer and the
// event ring feeding the broadcaster.
//
// It is the only write entry point; transports such as gRPC sit on top of
// it.
package service
