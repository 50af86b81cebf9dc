// Package hub keeps the registry of streaming subscribers and fans broadcast
// frames out to the ones whose condition matches.
//
// A subscriber lives in the registry exactly as long as its connection:
//
//	sub, err := reg.Register(predicate, r.RemoteAddr)
//	if err != nil {
//		return err
//	}
//	// blocks until the client goes away, then unregisters
//	err = reg.Serve(r.Context(), sub, sink)
//
// Broadcast encodes the document once. Every matching subscriber receives its
// own duplicate of the frame in a bounded queue; a full queue drops the frame
// for that subscriber only. Each duplicate is released after its delivery
// attempt or when the subscriber is removed, so the shared storage is
// reclaimed after the last one.
//
// Conditions are evaluated under a per-subscriber lock, so concurrent
// broadcasts never share a subscriber's evaluation scope.
package hub
