// Package vscp provides the VSCP command frame codec.
package vscp

// VSCP frames are sent by an operator station to the vehicle over UDP,
// one frame per datagram, fire-and-forget. There is no sequencing or
// acknowledgment: a lost frame is simply superseded by the next one and
// the vehicle fails safe when frames stop arriving.
//
// Frame layout, all little-endian:
//
//	offset 0  u32  magic 0xAABBCCDD
//	offset 4  f32  forward_backward
//	offset 8  f32  left_right
//
// Bytes after offset 12 are ignored.
//
// Producer: operator station (vscpcli, vscpjoy)
// Consumer: vehicle (vscpd)
