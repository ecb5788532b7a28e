// Package verification builds the two kinds of bridge request a relying
// party can make and opens sessions for them.
//
// A uniqueness request (link type "wld") asks for a proof of personhood at a
// minimum verification level and is answered with a domain.Proof. A
// credential-category request (link type "cred") asks for a proof of owning a
// credential in one of several categories; its result is passed through as
// raw JSON.
package verification
