// Package packet implements a self-describing key-value packet.
//
// Layout (little-endian):
//
//	[0..4)   numKeys    u32
//	[4..8)   keysOffset u32, 0 while the packet is being built
//	[8..keysOffset)     field payload
//	[keysOffset..)      numKeys x {keyHash u32, offset u32, length u32}
//
// A Packet is either built field by field (New), parsed from a complete
// received buffer (FromBytes) or reassembled from stream chunks
// (NewReceiver + Append). Ownership of the underlying store is tracked by a
// single types.State: only an owned packet grows or releases its store, a
// borrowed one is read-only, and a sent one has handed its store to a
// transport which becomes responsible for releasing it.
//
// Views returned by Get and Allocate alias the store. They are invalidated by
// any later call that grows, releases or hands off the packet.
//
// A Packet is not safe for concurrent use.
package packet
