// Package messaging is the broker-agnostic queue used to hand OTP deliveries
// from the API process to notification workers.
//
// Drivers: NSQ, NATS, Kafka and Google Pub/Sub. Handlers return nil to ack a
// message; a non-nil error asks the broker to redeliver when it can.
package messaging
