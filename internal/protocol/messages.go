// Package protocol defines the request/response JSON schema and the
// length-prefixed, zlib-compressed wire framing clients speak over TCP
// (spec §6).
package protocol

// Request is the envelope a client sends. Identity is always required;
// Bye and Init are mutually-meaningful flags layered on top of a sync
// (see internal/dispatch for the decision chain).
type Request struct {
	Identity string         `json:"identity"`
	Bye      bool           `json:"bye,omitempty"`
	Init     bool           `json:"init,omitempty"`
	Text     string         `json:"text"`
	Mode     int            `json:"mode"`
	Cursors  map[string]int `json:"cursors"`
}

// OtherUser is one entry of a sync Response's Others list: an online
// peer's nickname, mode, and cursor positions.
type OtherUser struct {
	Nickname string         `json:"nickname"`
	Mode     int            `json:"mode"`
	Cursors  map[string]int `json:"cursors"`
}

// Response is the envelope the server sends back. A successful sync
// populates Text/Cursors/Mode/Others; a failure populates only Error.
type Response struct {
	Text    string         `json:"text,omitempty"`
	Cursors map[string]int `json:"cursors,omitempty"`
	Mode    int            `json:"mode,omitempty"`
	Others  []OtherUser    `json:"others,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ErrorResponse builds a Response carrying only an error message.
func ErrorResponse(message string) Response {
	return Response{Error: message}
}
