// Package samsung implements the aircon.Transport interface over the Samsung
// smart air conditioner's local HTTPS API.
//
// The appliance exposes a small JSON API on port 2878, authenticated with a
// bearer token obtained during pairing and, on most firmware revisions, a
// TLS client certificate. The server certificate is self-signed, so
// verification is typically disabled via configuration.
//
// Two operations cover the whole surface:
//
//   - GET /devices returns the full device list; the bridge addresses its
//     appliance by a configured index into that list.
//   - PUT /devices/{index}{path} applies a partial update, e.g.
//     PUT /devices/0/temperatures/0 with {"desired": 24}.
//
// The same configured index is used for reads and writes. Failures are
// wrapped in the aircon package sentinels (ErrNetwork, ErrAuth, ErrParse,
// ErrTimeout) so the cache and dispatcher can classify them.
package samsung
