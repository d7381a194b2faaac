// Package events carries echo session notifications between components.
//
// The echo server publishes an Event when a client connects, disconnects or
// fails, and the admin API streams them to websocket subscribers. Publishing
// never blocks: a subscriber whose buffer is full misses the event and the
// drop is counted.
package events
