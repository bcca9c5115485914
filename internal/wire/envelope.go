// Package wire implements the protocol framing and typed envelopes from
// spec.md section 6: a length-prefixed binary datagram carrying a tagged
// manager/world request, response, or status envelope.
package wire

import "github.com/segmentio/ksuid"

// NewCorrelationID mints a globally unique, k-sortable token for
// ManagerRequest.CorrelationID. No example repo in the pack carries a
// short-id library (shortuuid, nanoid, xid are all absent), so
// segmentio/ksuid stands in; its lexical sortability is incidental here,
// only uniqueness is required.
func NewCorrelationID() string { return ksuid.New().String() }

// ManagerRequestKind tags which variant of the ManagerRequest tagged union
// a client sends to the multi-world manager.
type ManagerRequestKind uint8

const (
	KindSpawnItem ManagerRequestKind = iota
	KindGetItemList
	KindGetItemInfo
	KindDeleteItem
	KindCustom
)

// ManagerRequest is the tagged request envelope described in spec.md
// section 6: "SpawnItem | GetItemList | GetItemInfo(id) | DeleteItem(id) |
// Custom(id, WorldRequest)".
type ManagerRequest struct {
	CorrelationID string // ksuid-formatted token used to match responses
	Kind          ManagerRequestKind
	ID            string // populated for GetItemInfo/DeleteItem/Custom
	World         WorldRequest
}

// WorldRequestKind tags one of the per-world control operations.
type WorldRequestKind uint8

const (
	KindStart WorldRequestKind = iota
	KindStep
	KindStop
	KindReset
	KindDebug
	KindExport
	KindDelete
	KindExecute
)

// WorldRequest is the per-world request envelope from spec.md section 6:
// "Start(stop_at: u32) | Step | Stop | Reset | Debug | Export(path) |
// Delete | Execute(stop_at)".
type WorldRequest struct {
	Kind   WorldRequestKind
	StopAt uint32 // Start, Execute
	Path   string // Export
}

// ResponseOkKind tags the successful-response payload shape.
type ResponseOkKind uint8

const (
	OkSuccess ResponseOkKind = iota
	OkSuccessWithMessage
	OkItem
	OkItemList
	OkItemInfo
	OkCustom
)

// WorldStatus mirrors spec.md section 3 and section 6: step is
// authoritative, TimeStamp is wall-clock and advisory.
type WorldStatus struct {
	Step      uint32
	State     WorldState
	TimeStamp int64 // unix seconds
}

// WorldState is the {Stopped, Started, Ended} state machine from spec.md
// section 4.7. The open question in spec.md section 9 about a Failed
// terminal is resolved here: there is no Failed state.
type WorldState uint8

const (
	Stopped WorldState = iota
	Started
	Ended
)

func (s WorldState) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Started:
		return "Started"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// ResponseOk is the successful-response payload from spec.md section 6.
type ResponseOk struct {
	Kind    ResponseOkKind
	Message string      // SuccessWithMessage
	Item    string      // Item(id)
	Items   []string    // ItemList([id])
	Info    WorldStatus // ItemInfo
}

// ErrorKind enumerates the wire error taxonomy from spec.md section 6.
type ErrorKind uint8

const (
	ErrNoIdFound ErrorKind = iota
	ErrFailedToSpawn
	ErrProcessIOError
	ErrAbort
	ErrAlreadyStarted
	ErrAlreadyStopped
	ErrAlreadyEnded
	ErrFileExportFailed
	ErrCustom
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNoIdFound:
		return "NoIdFound"
	case ErrFailedToSpawn:
		return "FailedToSpawn"
	case ErrProcessIOError:
		return "ProcessIOError"
	case ErrAbort:
		return "Abort"
	case ErrAlreadyStarted:
		return "AlreadyStarted"
	case ErrAlreadyStopped:
		return "AlreadyStopped"
	case ErrAlreadyEnded:
		return "AlreadyEnded"
	case ErrFileExportFailed:
		return "FileExportFailed"
	case ErrCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// ErrorInfo is the wire error payload; Message carries the Custom(string)
// detail or a human-readable elaboration of any other kind.
type ErrorInfo struct {
	Kind    ErrorKind
	Message string
}

func (e *ErrorInfo) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

// Response is the Ok(ResponseOk) | Err(ErrorInfo) envelope from spec.md
// section 6. Exactly one of Ok/Err is non-nil.
type Response struct {
	CorrelationID string
	Ok            *ResponseOk
	Err           *ErrorInfo
}
