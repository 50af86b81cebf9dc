// Package clientip extracts the client address from an HTTP request.
//
// Headers are checked in priority order:
//  1. CF-Connecting-IP
//  2. DO-Connecting-IP
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP
//  5. RemoteAddr
//
// Values are parsed and normalized with net.ParseIP. Unparseable values and
// 0.0.0.0 are skipped. If nothing yields an address the raw RemoteAddr is
// returned, so GetIP never returns an empty string for a served request.
//
//	ip := clientip.GetIP(r)
package clientip
