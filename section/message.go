package section

import (
	"github.com/dsprotocol/agesim/node"
	"github.com/dsprotocol/agesim/prefix"
)

// Request is a message a section can receive, either injected by the
// network (Live, Dead) or sent by another section (everything else). It is
// a closed sum type: every implementation lives in this file, and callers
// are expected to switch exhaustively over the concrete types.
type Request interface {
	isRequest()
}

// RequestLive asks the receiving section to admit Node, which just joined
// the network. A relocating node arrives as RequestRelocateCommit instead.
type RequestLive struct{ Node node.Node }

// RequestDead reports that the named node has disconnected.
type RequestDead struct{ Name prefix.Name }

// RequestMerge asks the receiving section to begin merging into Parent.
type RequestMerge struct{ Parent prefix.Prefix }

// RequestRelocateRequest asks the receiving section to accept NodeName,
// currently a member of Src, as an incoming relocation.
type RequestRelocateRequest struct {
	Src      prefix.Prefix
	Target   prefix.Name
	NodeName prefix.Name
}

// RequestRelocateAccept notifies the sending section that its relocation
// request for NodeName was accepted by Dst.
type RequestRelocateAccept struct {
	Dst      prefix.Prefix
	NodeName prefix.Name
}

// RequestRelocateReject notifies the sending section that its relocation
// request for NodeName, targeting Target, was rejected.
type RequestRelocateReject struct {
	Target   prefix.Name
	NodeName prefix.Name
}

// RequestRelocateCommit delivers the actual relocating node to the section
// that accepted it, with its age already incremented by the sender.
type RequestRelocateCommit struct {
	Node   node.Node
	Target prefix.Name
}

// RequestRelocateCancel tells the receiving section to release whatever
// in-flight relocation slot it was holding for NodeName, because the
// sender gave up (the node it meant to relocate disconnected first).
// Target is carried alongside so the dispatcher can route the cancel by
// name even after the originating section's own bookkeeping is gone.
type RequestRelocateCancel struct {
	NodeName prefix.Name
	Target   prefix.Name
}

func (RequestLive) isRequest()            {}
func (RequestDead) isRequest()            {}
func (RequestMerge) isRequest()           {}
func (RequestRelocateRequest) isRequest() {}
func (RequestRelocateAccept) isRequest()  {}
func (RequestRelocateReject) isRequest()  {}
func (RequestRelocateCommit) isRequest()  {}
func (RequestRelocateCancel) isRequest()  {}

// Response is an outbound action a section emits from HandleRequests, for
// the network dispatcher to apply.
type Response interface {
	isResponse()
}

// ResponseMerge reports that Section absorbed everything that used to live
// under OldPrefix and should replace it in the network's partition map.
type ResponseMerge struct {
	Section   *Section
	OldPrefix prefix.Prefix
}

// ResponseSplit reports that the section at OldPrefix split into S0 and S1.
type ResponseSplit struct {
	S0, S1    *Section
	OldPrefix prefix.Prefix
}

// ResponseReject reports that Node's attempt to join was rejected.
type ResponseReject struct{ Node node.Node }

// ResponseSend asks the dispatcher to deliver Request to the section at
// Prefix (or, for a Merge request, to every section at or below Prefix).
type ResponseSend struct {
	Prefix  prefix.Prefix
	Request Request
}

// ResponseRouteByName asks the dispatcher to deliver Request to whichever
// section currently owns Name. Used where the sender knows only a node's
// address, not the prefix of the section that owns it — relocation
// requests, and relocation cancels sent after the target section's
// prefix may have moved on from what the sender last knew.
type ResponseRouteByName struct {
	Name    prefix.Name
	Request Request
}

func (ResponseMerge) isResponse()       {}
func (ResponseSplit) isResponse()       {}
func (ResponseReject) isResponse()      {}
func (ResponseSend) isResponse()        {}
func (ResponseRouteByName) isResponse() {}
