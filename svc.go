package swiftkit

import (
	"sync"

	"github.com/joy-dx/lockablemap"
	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/swiftkit/client/swiftclient"
	"github.com/joy-dx/swiftkit/config"
	"github.com/joy-dx/swiftkit/dto"
)

// StoreSvc is the front door for object-storage work. It owns the
// registered backend clients, a pooled client manager for concurrent
// transfers and the transfer notification plumbing.
type StoreSvc struct {
	cfg            *config.StoreSvcConfig
	relay          relayDTO.RelayInterface
	clients        map[string]dto.ClientInterface
	manager        *swiftclient.Manager
	transferState  lockablemap.LockableMap[string, dto.TransferNotification]
	muListeners    sync.Mutex
	listenersByURL map[string][]chan dto.TransferNotification
}

func (s *StoreSvc) RegisterClient(ref string, client dto.ClientInterface) {
	s.clients[ref] = client
}

// TransferListener returns a channel of updates for a particular source
func (s *StoreSvc) TransferListener(source string) (<-chan dto.TransferNotification, func()) {
	s.muListeners.Lock()
	defer s.muListeners.Unlock()

	ch := make(chan dto.TransferNotification, 10)
	s.listenersByURL[source] = append(s.listenersByURL[source], ch)

	unsub := func() {
		s.muListeners.Lock()
		defer s.muListeners.Unlock()

		chans := s.listenersByURL[source]
		out := chans[:0]
		for _, c := range chans {
			if c != ch {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			delete(s.listenersByURL, source)
		} else {
			s.listenersByURL[source] = out
		}
		close(ch)
	}

	return ch, unsub
}

// TransferListenerClose closes all channels for a given source manually
func (s *StoreSvc) TransferListenerClose(source string) {
	s.muListeners.Lock()
	defer s.muListeners.Unlock()
	if chans, ok := s.listenersByURL[source]; ok {
		for _, c := range chans {
			close(c)
		}
		delete(s.listenersByURL, source)
	}
}
