// Package wire implements the newline-delimited request/response protocol
// spoken between correction workers and module servers.
//
// A request and a response are each a single opaque UTF-8 line terminated
// by '\n'; payloads must not contain an embedded newline (callers encoding
// structured data are responsible for keeping it on one line). A
// connection carries any number of request/response pairs, strictly one at
// a time; there is no pipelining.
//
// The reserved request LoadQuery is answered by the server itself with its
// current in-flight request count, without invoking the module handler.
// The load balancer uses it to rank endpoints.
package wire
