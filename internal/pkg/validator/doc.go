// Package validator checks request structs before a usecase touches storage.
// Failures come back as a field-to-message map keyed in snake_case, which the
// router renders under "error".
package validator
