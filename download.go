package swiftkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joy-dx/swiftkit/client/swiftclient"
	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/metrics"
	"github.com/joy-dx/swiftkit/relays"
	"github.com/joy-dx/swiftkit/utils"
)

// isDirectoryMarker reports whether a response describes a pseudo
// directory object rather than file content.
func isDirectoryMarker(headers http.Header, length int64) bool {
	if length != 0 {
		return false
	}
	ct := headers.Get("Content-Type")
	return strings.HasPrefix(ct, "text/directory") || strings.HasPrefix(ct, "application/directory")
}

// DownloadObject streams one object to the local filesystem with progress
// notifications. Directory marker objects become local directories.
func (s *StoreSvc) DownloadObject(ctx context.Context, cfg *dto.DownloadObjectConfig) error {
	source := swiftclient.ObjectPath(cfg.Container, cfg.Object)

	if cfg.OutputFileName == "" {
		filename := utils.FilenameFromObject(cfg.Object)
		if filename == "" {
			filename = cfg.Object
		}
		cfg.OutputFileName = filename
	}
	destination := filepath.Join(cfg.DestinationFolder, cfg.OutputFileName)

	s.relay.Info(relays.RlyStoreTransfer{
		Source:      source,
		Destination: destination,
		Status:      string(dto.IN_PROGRESS),
		Msg:         fmt.Sprintf("starting download: %s", source),
	})

	clientRef := cfg.ClientRef
	if clientRef == "" {
		clientRef = dto.STORE_DEFAULT_CLIENT_REF
	}

	reqCfg := swiftclient.DefaultStoreRequestConfig()
	reqCfg.WithPath(source).
		WithStream(true)
	if cfg.Headers != nil {
		reqCfg.WithHeaders(cfg.Headers)
	}
	storeCfg := dto.DefaultRequestConfig()
	storeCfg.WithClientRef(clientRef).
		WithReqConfig(&reqCfg).
		WithTaskName("GET " + source)

	resp, err := s.Request(ctx, &storeCfg)
	if err != nil {
		s.publishTransferUpdate(dto.TransferNotification{
			Source:      source,
			Destination: destination,
			Status:      dto.ERROR,
			Message:     err.Error(),
		})
		return fmt.Errorf("failed to start download: %w", err)
	}
	defer func() {
		if resp.Stream != nil {
			io.Copy(io.Discard, resp.Stream)
			resp.Stream.Close()
		}
	}()

	if !resp.OK() {
		s.publishTransferUpdate(dto.TransferNotification{
			Source:      source,
			Destination: destination,
			Status:      dto.ERROR,
			Message:     fmt.Sprintf("bad status: %d %s", resp.StatusCode, resp.Reason),
		})
		return fmt.Errorf("download %s: %d %s", source, resp.StatusCode, resp.Reason)
	}

	total := int64(-1)
	if v := resp.Headers.Get("Content-Length"); v != "" {
		fmt.Sscanf(v, "%d", &total)
	}

	if isDirectoryMarker(resp.Headers, total) {
		if err := os.MkdirAll(destination, 0o755); err != nil {
			return fmt.Errorf("could not create directory %q: %w", destination, err)
		}
		s.publishTransferUpdate(dto.TransferNotification{
			Source:      source,
			Destination: destination,
			Status:      dto.COMPLETE,
			Percentage:  100,
			Message:     "directory marker",
		})
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		s.publishTransferUpdate(dto.TransferNotification{
			Source:      source,
			Destination: destination,
			Status:      dto.ERROR,
			Message:     err.Error(),
		})
		return fmt.Errorf("could not create destination folder %q: %w", destination, err)
	}

	out, err := os.Create(destination)
	if err != nil {
		s.publishTransferUpdate(dto.TransferNotification{
			Source:      source,
			Destination: destination,
			Status:      dto.ERROR,
			Message:     err.Error(),
		})
		return fmt.Errorf("could not create output file %q: %w", destination, err)
	}
	defer out.Close()

	if total <= 0 {
		s.relay.Warn(relays.RlyStoreTransfer{Source: source, Msg: "unknown object size"})
	}

	interval := s.cfg.DownloadCallbackInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	report := func(transferred, total int64, percent float64, speed float64, eta time.Duration) {
		s.publishTransferUpdate(dto.TransferNotification{
			Source:      source,
			Destination: destination,
			Status:      dto.IN_PROGRESS,
			Transferred: transferred,
			TotalSize:   total,
			Percentage:  percent,
		})
	}

	pr := &progressReader{
		ctx:        ctx,
		reader:     resp.Stream,
		total:      total,
		interval:   interval,
		lastReport: time.Now(),
		onProgress: report,
	}

	chunk := s.cfg.ChunkSize
	if chunk <= 0 {
		chunk = 64 * 1024
	}
	buf := make([]byte, chunk)
	written, err := io.CopyBuffer(out, pr, buf)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.publishTransferUpdate(dto.TransferNotification{
				Source:      source,
				Destination: destination,
				Status:      dto.STOPPED,
			})
			return ctx.Err()
		}
		s.publishTransferUpdate(dto.TransferNotification{
			Source:      source,
			Destination: destination,
			Status:      dto.ERROR,
			Message:     err.Error(),
		})
		return fmt.Errorf("transfer failed for %s: %w", source, err)
	}
	metrics.TransferBytesTotal.WithLabelValues("download").Add(float64(written))

	if cfg.Checksum != "" {
		if checkErr := utils.Sha256SumVerify(destination, cfg.Checksum); checkErr != nil {
			s.publishTransferUpdate(dto.TransferNotification{
				Source:      source,
				Destination: destination,
				Status:      dto.ERROR,
				Percentage:  100,
				Message:     "failed to verify checksum",
			})
			return fmt.Errorf("checksum verification failed: %w", checkErr)
		}
	}

	s.publishTransferUpdate(dto.TransferNotification{
		Source:      source,
		Destination: destination,
		Status:      dto.COMPLETE,
		Transferred: written,
		TotalSize:   total,
		Percentage:  100,
		Message:     "download complete",
	})
	return nil
}
