/*
 * Copyright 2026 The Workpad Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rpc

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// sendChanSize is the buffer of a connection's outbound queue.
	sendChanSize = 32

	// writeTimeout bounds a single socket write.
	writeTimeout = 10 * time.Second

	// enqueueTimeout bounds handing a frame to the writer. A connection
	// whose writer stopped draining is treated as dead.
	enqueueTimeout = 5 * time.Second
)

// connection wraps a websocket with a single writer goroutine. All
// frames go through the outbound queue, so the socket is never written
// from two goroutines at once. The queue channel is never closed;
// shutdown is signaled through the done channel, so an enqueue that is
// parked on a full queue wakes up instead of racing a close.
type connection struct {
	ws           *websocket.Conn
	pingInterval time.Duration

	closeOnce sync.Once
	done      chan struct{}
	send      chan ServerFrame
}

func newConnection(ws *websocket.Conn, pingInterval time.Duration) *connection {
	return &connection{
		ws:           ws,
		pingInterval: pingInterval,
		done:         make(chan struct{}),
		send:         make(chan ServerFrame, sendChanSize),
	}
}

// enqueue hands the frame to the writer goroutine. It reports whether
// the frame was accepted.
func (c *connection) enqueue(frame ServerFrame) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return false
	case <-time.After(enqueueTimeout):
		return false
	}
}

// close stops the writer. Frames still queued for the dying connection
// are dropped. It is safe to call more than once.
func (c *connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writeLoop consumes the outbound queue and keeps the connection alive
// with periodic pings. It owns all writes to the socket.
func (c *connection) writeLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(
				websocket.CloseNormalClosure, "",
			))
			return
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
