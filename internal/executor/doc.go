/*
Package executor is the network boundary of the runtime.

# HTTP

HTTPTransport implements Transport over net/http. Paths are resolved
against a base URL; requests flagged with Credentials go through a client
with a cookie jar, all others through one without. Response header names
are lower-cased.

Normalize converts every response to a types.Envelope. Bodies that fail
to parse as JSON are wrapped as {"error": {"message": raw}} so consumers
never see a parse failure. Failure builds the envelope of a request that
produced no response (status 0).

# Live channels

WSDialer opens gorilla/websocket connections and reports open, message,
close and error events through Handlers. Relative channel URLs reuse the
base URL host with ws/wss schemes:

	dialer := executor.NewWSDialer("http://localhost:8080", nil)
	ch, err := dialer.Open(ctx, "/ws/chat", executor.Handlers{
		OnMessage: func(text string) { fmt.Println(text) },
	})

# TLS

TLSConfig supports custom CA certificates, client certificates (mTLS) and
InsecureSkipVerify for development.
*/
package executor
