// Package jwt issues and verifies the HS512 access tokens handed out by login
// and required by the data API.
package jwt
