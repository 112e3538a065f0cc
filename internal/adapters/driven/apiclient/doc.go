// Package apiclient holds the outbound call policy shared by every AI
// provider adapter: a per-attempt timeout, one retry on transport errors
// and 5xx responses, no retry on 4xx, and an optional request rate limit.
//
// Hand-written HTTP adapters use Client. Adapters built on a vendor SDK
// disable the SDK's own retries and wrap each call in Retry instead.
package apiclient
