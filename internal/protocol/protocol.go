// Package protocol defines the numeric wire encoding shared by the Server
// Dispatcher, the Service Worker loop, and the Outer Boundary. The ids are
// kept stable across the Go port so that a log line or a test fixture
// referencing an action id means the same thing it meant in the original
// daemon.
package protocol

// ServiceID selects one of the four registered services on the dispatcher
// queue.
type ServiceID int

const (
	ServiceCodeModel ServiceID = 0
	ServiceBuild     ServiceID = 1
	ServiceFormat    ServiceID = 2
	ServiceLint      ServiceID = 3
)

func (id ServiceID) String() string {
	switch id {
	case ServiceCodeModel:
		return "code-model"
	case ServiceBuild:
		return "build"
	case ServiceFormat:
		return "format"
	case ServiceLint:
		return "lint"
	default:
		return "unknown"
	}
}

// ActionID is the top-level verb on a Server Dispatcher message.
type ActionID int

const (
	ActionStartAll        ActionID = 0xF0
	ActionStartOne        ActionID = 0xF1
	ActionSendOne         ActionID = 0xF2
	ActionShutdownAll     ActionID = 0xFD
	ActionShutdownOne     ActionID = 0xFE
	ActionShutdownAndExit ActionID = 0xFF
)

// DispatchMessage is the 3-tuple `[action_id, service_id, payload]` every
// caller enqueues on the dispatcher's input queue (spec §6).
type DispatchMessage struct {
	Action  ActionID
	Service ServiceID
	Payload []any
}

// MessageTag is the 2-tuple tag a Service Worker recognizes on its own
// queue (spec §4.6, §6).
type MessageTag int

const (
	TagStartup MessageTag = 0
	TagShutdown MessageTag = 1
	TagRequest MessageTag = 2
)

// ServiceMessage is one entry on a Service Worker's input queue.
type ServiceMessage struct {
	Tag     MessageTag
	Payload []any
}

// CodeModelSubID selects a Code-Model Service sub-handler (spec §4.4, §6).
type CodeModelSubID int

const (
	SubIndexer         CodeModelSubID = 0
	SubSyntaxHighlight CodeModelSubID = 1
	SubDiagnostics     CodeModelSubID = 2
	SubTypeDeduction   CodeModelSubID = 3
	SubGoToDefinition  CodeModelSubID = 4
	SubGoToInclude     CodeModelSubID = 5
)

// IndexerOpID selects an Indexer Engine operation (spec §4.3, §6).
type IndexerOpID int

const (
	OpRunSingle    IndexerOpID = 0x0
	OpRunDirectory IndexerOpID = 0x1
	OpDropSingle   IndexerOpID = 0x2
	OpDropAll      IndexerOpID = 0x3
	OpFindAllRefs  IndexerOpID = 0x10
)

// Result pairs a REQUEST's success flag with its value (spec §4.6). No
// package uses it: service handlers return (bool, any) and the Service
// Worker passes success and result to the completion callback as separate
// arguments.
type Result struct {
	Success bool
	Value   any
}
