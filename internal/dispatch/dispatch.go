// Package dispatch implements the request-handler contract that sits
// between the wire protocol and the User/Text Manager: identity
// validation, the bye/init/authority decision chain, and sync response
// assembly (spec §4.3 "Request-handler contract").
package dispatch

import (
	"github.com/shrvim/shrvimd/internal/manager"
	"github.com/shrvim/shrvimd/internal/protocol"
)

// Dispatch handles one decoded request against mgr and returns the
// response to encode back to the client. It never returns an error;
// all failure modes are represented as protocol.Response.Error.
func Dispatch(mgr *manager.Manager, req protocol.Request) protocol.Response {
	if req.Identity == "" {
		return protocol.ErrorResponse("Bad request.")
	}

	self, ok := mgr.GetUsersInfo(nil, false)[req.Identity]
	if !ok {
		return protocol.ErrorResponse("Invalid identity.")
	}

	if req.Bye {
		_ = mgr.ResetUser(req.Identity)
		return protocol.Response{}
	}

	text := req.Text
	cursors := req.Cursors

	if req.Init {
		_ = mgr.ResetUser(req.Identity)
		text = ""
		cursors = make(map[string]int, len(req.Cursors))
		for name := range req.Cursors {
			cursors[name] = 0
		}
	}

	if self.Authority != manager.Readwrite {
		// Read-only users cannot effect edits: replace their submitted
		// text with their own current baseline before committing, so
		// the diff against it is empty.
		existing, err := mgr.GetUserText(req.Identity)
		if err != nil {
			return protocol.ErrorResponse("Invalid identity.")
		}
		text = existing
	}

	updated, rebasedText, err := mgr.UpdateUserText(req.Identity, req.Mode, cursors, text)
	if err != nil {
		return protocol.ErrorResponse("Invalid identity.")
	}

	others := mgr.GetUsersInfo([]string{req.Identity}, true)
	otherList := make([]protocol.OtherUser, 0, len(others))
	for _, o := range others {
		otherList = append(otherList, protocol.OtherUser{
			Nickname: o.Nickname,
			Mode:     o.Mode,
			Cursors:  o.Cursors,
		})
	}

	return protocol.Response{
		Text:    rebasedText,
		Cursors: updated.Cursors,
		Mode:    updated.Mode,
		Others:  otherList,
	}
}
