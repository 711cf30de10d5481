package swiftkit

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/pool"
)

const directoryMarkerContentType = "text/directory"

// UploadTree mirrors a local directory into a container. Directories become
// zero-length marker objects so empty directories survive a round trip;
// files go through UploadObject concurrently and inherit its segmentation
// and conditional-skip behavior.
func (s *StoreSvc) UploadTree(ctx context.Context, container, objectPrefix, localRoot string, cfg *dto.UploadObjectConfig) error {
	if cfg == nil {
		cfg = &dto.UploadObjectConfig{}
	}

	p := pool.New(s.cfg.Concurrency)
	walkErr := filepath.WalkDir(localRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(localRoot, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		object := strings.TrimPrefix(objectPrefix+"/"+filepath.ToSlash(rel), "/")

		if d.IsDir() {
			// Markers are written inline; they are cheap and writing them
			// ahead of the pooled file uploads preserves walk ordering.
			return s.putDirectoryMarker(ctx, container, object, d)
		}
		if !d.Type().IsRegular() {
			// Sockets, devices and symlinks have no object representation.
			return nil
		}

		// Stop queueing new work once anything already failed.
		for _, res := range p.Results() {
			if res.Err != nil {
				return fs.SkipAll
			}
		}

		fileCfg := *cfg
		fileCfg.Container = container
		fileCfg.Object = object
		fileCfg.InputPath = path
		fileCfg.Empty = false
		p.Spawn(object, func() (any, error) {
			return nil, s.UploadObject(ctx, &fileCfg)
		})
		return nil
	})
	p.Join()

	if walkErr != nil {
		return walkErr
	}
	for ident, res := range p.Results() {
		if res.Err != nil {
			return fmt.Errorf("upload %s: %w", ident, res.Err)
		}
	}
	return nil
}

func (s *StoreSvc) putDirectoryMarker(ctx context.Context, container, object string, d fs.DirEntry) error {
	headers := map[string]string{"Content-Type": directoryMarkerContentType}
	if info, err := d.Info(); err == nil {
		headers[mtimeHeader] = fmt.Sprintf("%.6f", float64(info.ModTime().UnixNano())/1e9)
	}
	resp, err := s.PutObjectData(ctx, container, object, nil, headers)
	if err != nil {
		return fmt.Errorf("directory marker %s: %w", object, err)
	}
	if !resp.OK() {
		return fmt.Errorf("directory marker %s: %d %s", object, resp.StatusCode, resp.Reason)
	}
	return nil
}
