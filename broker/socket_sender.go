// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package broker

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.nanomsg.org/mangos/v3/protocol"
	"go.nanomsg.org/mangos/v3/protocol/push"
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"

	"code.stratatrade.io/strata/logging"
)

const dialRetryInterval = 5 * time.Second

// ErrDialFailed signals the sender could not reach the remote within its
// retry budget.
var ErrDialFailed = errors.New("failed to dial remote socket")

// SocketSender streams encoded kernel events over a push socket to a
// remote consumer, typically an archiver or a monitoring sidecar.
type SocketSender struct {
	log  *logging.Logger
	sock protocol.Socket
}

// NewSocketSender dials the configured remote, retrying up to the
// configured number of attempts.
func NewSocketSender(log *logging.Logger, cfg SocketConfig) (*SocketSender, error) {
	sock, err := push.NewSocket()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create socket")
	}

	addr := fmt.Sprintf("%s://%s:%d", cfg.TransportType, cfg.IP, cfg.Port)
	retries := cfg.DialRetries
	if retries <= 0 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		if err = sock.Dial(addr); err != nil {
			log.Error("failed to connect, retrying",
				logging.String("address", addr),
				logging.Error(err),
			)
			time.Sleep(dialRetryInterval)
			continue
		}
		return &SocketSender{log: log, sock: sock}, nil
	}
	_ = sock.Close()
	return nil, errors.Wrap(ErrDialFailed, addr)
}

// Send writes one encoded frame to the socket.
func (s *SocketSender) Send(buf []byte) error {
	if err := s.sock.Send(buf); err != nil {
		return errors.Wrap(err, "failed to send on socket")
	}
	return nil
}

// Close shuts the socket down.
func (s *SocketSender) Close() error {
	return s.sock.Close()
}
