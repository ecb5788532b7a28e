// Package main runs the in-memory Wallet Bridge relay used during development
// and tests. It stores sealed requests and responses keyed by request id
// until they are read or expire.
//
// HTTP API
//
//	POST /request
//	    Store a sealed request envelope {iv, payload}. Returns 201 with
//	    {"request_id": "<uuid>"}.
//
//	GET /request/{id}
//	    Return the sealed request once and mark it retrieved. Later reads
//	    get 404.
//
//	PUT /response/{id}
//	    Store the wallet's sealed answer and mark the request completed.
//	    A second answer gets 409.
//
//	GET /response/{id}
//	    Return {"status": "initialized"|"retrieved"|"completed", "response":
//	    envelope|null}. A completed entry is deleted once served.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Entries expire after --ttl (default 5m) and then read as 404.
//   - An access log in combined log format is written to stderr; application
//     logs are JSON on stdout.
//   - The default listen address is :8080.
//
// The relay never sees plaintext: requests and answers are sealed with a key
// that only travels inside the connector URL.
package main
