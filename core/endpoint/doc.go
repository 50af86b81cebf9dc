// Package endpoint is the HTTP surface of the notification hub.
//
// Routes are matched on the exact path:
//
//	POST /publish          event batch from the gateway; always answered with 100 Continue
//	GET  /subscribe        chunked stream of frames matching ?condition=<base64>
//	GET  /subscribe/ws     the same stream as binary websocket messages
//	GET  /                 service banner
//	GET  /health/live      ALIVE
//	GET  /health/ready     READY, or 503 when a readiness check fails
//	GET  /metrics          Prometheus exposition, when configured
//
// Any other path is answered with 400 "Unsupported uri path". Error
// responses close the connection.
//
// A subscription condition is base64 text compiled by the filter package.
// It is rejected with 400 when it is blank, does not compile, or, evaluated
// against empty metadata, yields true, null or a non-boolean value:
//
//	cond := base64.StdEncoding.EncodeToString([]byte("content_type == 'image/png'"))
//	resp, err := http.Get(base + "/subscribe?condition=" + cond)
//	r := bufio.NewReader(resp.Body)
//	for {
//		doc, err := frame.ReadFrame(r)
//		...
//	}
//
// Panics while handling a request are logged with the remote address and
// answered with 500 and a closed connection.
package endpoint
