// Package transport moves packets over byte streams and datagram sockets.
//
// Senders take ownership of a packet's store through packet.Handoff and
// release it once the bytes are written. Receivers reassemble packets from
// arbitrary read boundaries with packet.Append, or wrap whole datagrams with
// packet.FromBytes.
package transport
