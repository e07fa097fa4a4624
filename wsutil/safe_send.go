package wsutil

import "log"

// SafeSend sends data to a client's send channel without panicking if the
// channel was already closed by the hub. If the channel is full or closed,
// the message is dropped; the next state broadcast supersedes it anyway.
func SafeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[wsutil] SafeSend recovered panic: %v", r)
		}
	}()
	select {
	case ch <- data:
	default:
	}
}
