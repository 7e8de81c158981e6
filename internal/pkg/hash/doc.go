// Package hash stores account passwords as bcrypt or argon2id digests,
// selected by hash.password.driver.
package hash
