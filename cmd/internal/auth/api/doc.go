// Package authapi exposes Raven's authentication surface: the login and
// registration handlers, and the request authorization gate that fronts every
// non-exempt route.
//
// All responses use the single envelope {success, message, data}. Gate
// rejections always carry the same generic message whatever the cause
// (missing header, bad signature, expiry), so the response cannot be used as
// an oracle for why a credential failed.
package authapi
