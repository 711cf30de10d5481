package swiftkit

import (
	"context"
	"errors"

	"github.com/joy-dx/swiftkit/client/swiftclient"
	"github.com/joy-dx/swiftkit/dto"
)

func (s *StoreSvc) State() *dto.StoreState {
	return &dto.StoreState{
		AuthURL:         s.cfg.AuthURL,
		Region:          s.cfg.Region,
		Snet:            s.cfg.Snet,
		Attempts:        s.cfg.Attempts,
		SegmentSize:     s.cfg.SegmentSize,
		Concurrency:     s.cfg.Concurrency,
		RequestTimeout:  s.cfg.RequestTimeout,
		UserAgent:       s.cfg.UserAgent,
		ExtraHeaders:    s.cfg.ExtraHeaders,
		TransfersStatus: s.transferState.GetAll(),
	}
}

func (s *StoreSvc) Hydrate(ctx context.Context) error {
	if s.cfg == nil {
		return errors.New("no store config")
	}
	if s.relay == nil {
		return errors.New("no relay implementation")
	}
	if s.cfg.AuthURL == "" && s.cfg.StorageURL == "" {
		return dto.ErrNoAuthURL
	}

	defaultClientCfg := swiftclient.DefaultStorageClientConfig()
	defaultClient, err := swiftclient.NewStorageClient(dto.STORE_DEFAULT_CLIENT_REF, s.cfg, defaultClientCfg)
	if err != nil {
		return err
	}
	s.clients[dto.STORE_DEFAULT_CLIENT_REF] = defaultClient

	// Segmented transfers borrow dedicated clients from the manager so
	// concurrent segment uploads never share a connection.
	s.manager = swiftclient.NewManager(s.cfg.Concurrency, func() (*swiftclient.StorageClient, error) {
		return swiftclient.NewStorageClient(dto.STORE_DEFAULT_CLIENT_REF, s.cfg, defaultClientCfg)
	})
	s.manager.Put(defaultClient)

	return nil
}
