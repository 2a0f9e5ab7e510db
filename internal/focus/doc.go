// Package focus is a thin client for the Teamleader Focus API.
//
// Every Focus operation is a POST of a JSON body to
// https://api.focus.teamleader.eu/<action> (e.g. "contacts.list") with
// a bearer access token. Successful responses carry {"data": ...} and
// sometimes {"meta": ...}; failures carry a JSON:API-style
// {"errors": [...]} document, surfaced as *APIError.
//
// Client.Call is the authenticated-call wrapper: on an authentication
// rejection (HTTP 401) it forces a token refresh through the token
// source and retries the call exactly once. Every other failure, and a
// second rejection, propagates unchanged.
package focus
