// Package smb provides the production SMB implementations of the share
// capabilities: enumerating a host's exported shares, validating a share
// with a real connection attempt, and checking a saved share's liveness.
//
// The Client connects over TCP port 445 and negotiates SMB2/3 using NTLM
// authentication (guest when no credentials are supplied). Every
// operation is bounded by the client's connect timeout via its context
// deadline; a slow or dead server surfaces as a typed timeout error
// rather than a hang.
//
// Administrative shares (ADMIN$, C$, IPC$ and anything else ending in
// "$") are filtered from enumeration results at this layer, so the rest
// of the system only ever sees user-visible shares.
//
// Errors map onto the taxonomy in the shares package: well-known NT
// status codes become authentication / share-not-found errors, and raw
// network failures go through shares.ClassifyConnectionError. CheckStatus
// never returns an error at all; failures fold into an Offline status
// with a short reason.
package smb
