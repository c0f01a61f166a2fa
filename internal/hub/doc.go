// Package hub implements the chat fan-out core.
//
// Every connection gets a reader goroutine and a pump goroutine coupled by an
// unbounded FIFO queue. A mutex-guarded registry maps connection ids to queues;
// broadcast snapshots the registry and enqueues to everyone except the sender.
// The registry lock is never held across I/O, so one slow peer cannot stall
// registration or broadcast for the rest.
package hub
