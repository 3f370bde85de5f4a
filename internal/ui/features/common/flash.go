package common

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie the UI keeps its session in.
const SessionName = "storefront"

// SetFlash queues a flash for the next page render. It must be called
// before anything is written to w.
func SetFlash(store sessions.Store, w http.ResponseWriter, r *http.Request, f Flash) error {
	session, err := store.Get(r, SessionName)
	if err != nil && session == nil {
		return err
	}
	session.AddFlash(f.Kind + ":" + f.Message)
	return session.Save(r, w)
}

// PopFlash returns and clears the pending flash, if any.
func PopFlash(store sessions.Store, w http.ResponseWriter, r *http.Request) *Flash {
	session, err := store.Get(r, SessionName)
	if err != nil || session == nil {
		return nil
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	_ = session.Save(r, w)

	raw, ok := flashes[len(flashes)-1].(string)
	if !ok {
		return nil
	}
	if kind, msg, found := strings.Cut(raw, ":"); found {
		return &Flash{Kind: kind, Message: msg}
	}
	return &Flash{Kind: FlashSuccess, Message: raw}
}
