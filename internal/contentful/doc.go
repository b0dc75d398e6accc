// Package contentful models the Content Delivery API surface the binder needs:
// entries, queries, and a client that fetches entry collections.
//
// Only the entries endpoint is used. Responses are decoded into generic JSON
// trees so entries of any content type can be addressed by dotted field path.
package contentful
