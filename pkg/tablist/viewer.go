package tablist

import "go.minekube.com/veloxy/pkg/protoversion"

// Viewer is the owning connection's outbound packet sink. The engine
// never frames or writes bytes itself; it hands built packets to the
// viewer, which is the external collaborator for the actual
// connection/codec layer.
type Viewer interface {
	// Protocol returns the viewer's negotiated protocol version.
	Protocol() *protoversion.Version
	// WritePacket sends p immediately (non-blocking from the engine's view).
	WritePacket(p any) error
	// DelayedWritePacket queues p on the connection's outbound queue
	// without forcing an immediate flush. Used for clearAll, mirroring
	// the connection's delayedWrite used by the reference proxy.
	DelayedWritePacket(p any) error
}
