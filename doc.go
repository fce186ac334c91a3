// Package gqlbody decodes GraphQL-over-HTTP request bodies into parameter maps.
//
// Supported media types are application/graphql, application/json and
// application/x-www-form-urlencoded. Bodies may be gzip or deflate encoded and
// are read through a hard size cap before being decoded with the declared
// charset (utf-8 or utf16le).
package gqlbody
