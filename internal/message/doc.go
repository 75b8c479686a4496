// Package message defines the persisted message record, its classification
// enums and the filter used to select stored messages.
//
// A Record is one row of the messages table: one recorded execution of a
// command, query or event together with its serialized payload, outcome and
// timing. A Query is an ephemeral, caller-built filter; every nil field is
// unconstrained on that dimension.
//
// Type and Status are closed enums at the domain boundary and only become
// small integers at the storage edge (see Type.Code / Status.Code).
package message
