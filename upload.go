package swiftkit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/joy-dx/swiftkit/client/swiftclient"
	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/metrics"
	"github.com/joy-dx/swiftkit/pool"
	"github.com/joy-dx/swiftkit/relays"
)

const mtimeHeader = "X-Object-Meta-Mtime"

// UploadObject writes one local file (or an empty object) to the store.
// Files larger than the configured segment size are split into segments
// uploaded concurrently and bound together by a manifest; the target object
// never appears until every segment is confirmed.
func (s *StoreSvc) UploadObject(ctx context.Context, cfg *dto.UploadObjectConfig) error {
	target := swiftclient.ObjectPath(cfg.Container, cfg.Object)

	var size int64
	var mtime string
	if !cfg.Empty {
		info, err := os.Stat(cfg.InputPath)
		if err != nil {
			return fmt.Errorf("stat %q: %w", cfg.InputPath, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%q is a directory, use UploadTree", cfg.InputPath)
		}
		size = info.Size()
		mtime = fmt.Sprintf("%.6f", float64(info.ModTime().UnixNano())/1e9)
	}

	if cfg.Newer || cfg.Different {
		skip, err := s.shouldSkipUpload(ctx, cfg, size, mtime)
		if err != nil {
			return fmt.Errorf("conditional check %s: %w", target, err)
		}
		if skip {
			s.relay.Debug(relays.RlyStoreTransfer{
				Source:      cfg.InputPath,
				Destination: target,
				Msg:         "remote object is current, skipping upload",
			})
			return nil
		}
	}

	headers := make(map[string]string, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if mtime != "" {
		headers[mtimeHeader] = mtime
	}

	s.publishTransferUpdate(dto.TransferNotification{
		Source:      cfg.InputPath,
		Destination: target,
		Status:      dto.IN_PROGRESS,
		TotalSize:   size,
	})

	var err error
	switch {
	case cfg.Empty:
		err = s.uploadSimple(ctx, cfg, headers, nil, 0)
	case size > s.cfg.SegmentSize:
		err = s.uploadSegmented(ctx, cfg, headers, size, mtime)
	default:
		err = s.uploadWhole(ctx, cfg, headers, size)
	}
	if err != nil {
		s.publishTransferUpdate(dto.TransferNotification{
			Source:      cfg.InputPath,
			Destination: target,
			Status:      dto.ERROR,
			Message:     err.Error(),
		})
		return err
	}

	metrics.TransferBytesTotal.WithLabelValues("upload").Add(float64(size))
	s.publishTransferUpdate(dto.TransferNotification{
		Source:      cfg.InputPath,
		Destination: target,
		Status:      dto.COMPLETE,
		Transferred: size,
		TotalSize:   size,
		Percentage:  100,
	})
	return nil
}

// shouldSkipUpload compares local size and mtime against the remote
// object's recorded values. A missing remote object never skips; any
// other HEAD failure aborts the upload instead of risking a blind
// overwrite.
func (s *StoreSvc) shouldSkipUpload(ctx context.Context, cfg *dto.UploadObjectConfig, size int64, mtime string) (bool, error) {
	resp, err := s.HeadObject(ctx, cfg.Container, cfg.Object, nil)
	if err != nil {
		return false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if !resp.OK() {
		return false, fmt.Errorf("head %s/%s: %d %s", cfg.Container, cfg.Object, resp.StatusCode, resp.Reason)
	}

	remoteMtime, mtimeErr := strconv.ParseFloat(resp.Headers.Get(mtimeHeader), 64)
	if mtimeErr != nil {
		// Without a recorded mtime there is nothing to compare against.
		return false, nil
	}
	localMtime, _ := strconv.ParseFloat(mtime, 64)
	remoteSize, sizeErr := strconv.ParseInt(resp.Headers.Get("Content-Length"), 10, 64)

	if cfg.Newer && localMtime <= remoteMtime {
		return true, nil
	}
	if cfg.Different && localMtime == remoteMtime && sizeErr == nil && size == remoteSize {
		return true, nil
	}
	return false, nil
}

func (s *StoreSvc) uploadWhole(ctx context.Context, cfg *dto.UploadObjectConfig, headers map[string]string, size int64) error {
	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("open %q: %w", cfg.InputPath, err)
	}
	defer f.Close()

	body, err := dto.SeekerBody(f, size)
	if err != nil {
		return err
	}
	return s.uploadSimple(ctx, cfg, headers, body, size)
}

func (s *StoreSvc) uploadSimple(ctx context.Context, cfg *dto.UploadObjectConfig, headers map[string]string, body dto.Body, size int64) error {
	path := swiftclient.ObjectPath(cfg.Container, cfg.Object)
	resp, err := s.storeRequest(ctx, http.MethodPut, path, cfg.Query, headers, body, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("upload %s: %d %s", path, resp.StatusCode, resp.Reason)
	}
	return nil
}

// segmentsContainer names the side container that holds segment objects.
func segmentsContainer(container string) string {
	return container + "_segments"
}

// segmentPrefix names the shared prefix of one upload's segments. Embedding
// mtime and size keeps re-uploads of a changed file from colliding with
// segments still referenced by an old manifest.
func segmentPrefix(object, mtime string, size int64) string {
	return fmt.Sprintf("%s/%s/%d/", object, mtime, size)
}

type segmentResult struct {
	index int
	info  dto.SegmentInfo
}

func (s *StoreSvc) uploadSegmented(ctx context.Context, cfg *dto.UploadObjectConfig, headers map[string]string, size int64, mtime string) error {
	segContainer := segmentsContainer(cfg.Container)
	prefix := segmentPrefix(cfg.Object, mtime, size)

	if resp, err := s.PutContainer(ctx, segContainer, nil); err != nil {
		return fmt.Errorf("create segments container: %w", err)
	} else if !resp.OK() {
		return fmt.Errorf("create segments container: %d %s", resp.StatusCode, resp.Reason)
	}

	segSize := s.cfg.SegmentSize
	count := int(size / segSize)
	if size%segSize != 0 {
		count++
	}

	p := pool.New(s.cfg.Concurrency)
	for i := 0; i < count; i++ {
		// Drain before spawning so the first failure stops the transfer
		// instead of queueing more work behind it.
		if firstSegmentFailure(p.Results()) != nil {
			p.Join()
			return firstSegmentFailure(p.Results())
		}

		index := i
		offset := int64(index) * segSize
		length := segSize
		if offset+length > size {
			length = size - offset
		}
		segObject := fmt.Sprintf("%s%08d", prefix, index)
		segPath := swiftclient.ObjectPath(segContainer, segObject)

		if err := ctx.Err(); err != nil {
			p.Join()
			return err
		}
		p.Spawn(segPath, func() (any, error) {
			info, err := s.uploadSegment(ctx, cfg.InputPath, segContainer, segObject, offset, length)
			if err != nil {
				metrics.SegmentsUploadedTotal.WithLabelValues("failure").Inc()
				return nil, err
			}
			metrics.SegmentsUploadedTotal.WithLabelValues("success").Inc()
			return segmentResult{index: index, info: info}, nil
		})
	}
	p.Join()

	results := p.Results()
	if err := firstSegmentFailure(results); err != nil {
		return err
	}
	ordered := make([]segmentResult, 0, len(results))
	for ident, res := range results {
		sr, ok := res.Value.(segmentResult)
		if !ok {
			return fmt.Errorf("unexpected segment result for %s", ident)
		}
		ordered = append(ordered, sr)
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].index < ordered[b].index })

	var confirmed int64
	segments := make([]dto.SegmentInfo, len(ordered))
	for i, sr := range ordered {
		segments[i] = sr.info
		confirmed += sr.info.Size
	}
	if confirmed != size {
		return &dto.ManifestInconsistency{Expected: size, Confirmed: confirmed}
	}

	if cfg.StaticSegments {
		return s.putStaticManifest(ctx, cfg, headers, segments)
	}
	return s.putDynamicManifest(ctx, cfg, headers, segContainer, prefix)
}

// uploadSegment sends one slice of the source file on a dedicated client
// and returns the service-confirmed size and etag.
// firstSegmentFailure surfaces the failed segment with the lowest ordinal
// so the reported error is stable regardless of completion order.
func firstSegmentFailure(results map[string]pool.Result) error {
	var idents []string
	for ident, res := range results {
		if res.Err != nil {
			idents = append(idents, ident)
		}
	}
	if len(idents) == 0 {
		return nil
	}
	sort.Strings(idents)
	return &dto.SegmentFailure{Path: idents[0], Err: results[idents[0]].Err}
}

func (s *StoreSvc) uploadSegment(ctx context.Context, inputPath, segContainer, segObject string, offset, length int64) (dto.SegmentInfo, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return dto.SegmentInfo{}, fmt.Errorf("open %q: %w", inputPath, err)
	}
	defer f.Close()

	section := io.NewSectionReader(f, offset, length)
	body, err := dto.SeekerBody(section, length)
	if err != nil {
		return dto.SegmentInfo{}, err
	}

	path := swiftclient.ObjectPath(segContainer, segObject)
	var info dto.SegmentInfo
	err = s.manager.With(ctx, func(client *swiftclient.StorageClient) error {
		reqCfg := swiftclient.DefaultStoreRequestConfig()
		reqCfg.WithMethod(http.MethodPut).
			WithPath(path).
			WithBody(body)
		storeCfg := dto.DefaultRequestConfig()
		storeCfg.WithReqConfig(&reqCfg).
			WithTaskName("PUT " + path)

		resp, err := client.ProcessRequest(ctx, &storeCfg)
		if err != nil {
			return err
		}
		if !resp.OK() {
			return fmt.Errorf("segment put: %d %s", resp.StatusCode, resp.Reason)
		}

		info = dto.SegmentInfo{
			Path: path,
			Size: length,
			ETag: resp.Headers.Get("Etag"),
		}
		if info.ETag == "" {
			// Some deployments omit the etag on PUT; confirm with a HEAD.
			headCfg := swiftclient.DefaultStoreRequestConfig()
			headCfg.WithMethod(http.MethodHead).
				WithPath(path)
			headStore := dto.DefaultRequestConfig()
			headStore.WithReqConfig(&headCfg).
				WithTaskName("HEAD " + path)
			headResp, err := client.ProcessRequest(ctx, &headStore)
			if err != nil {
				return fmt.Errorf("confirm segment: %w", err)
			}
			if !headResp.OK() {
				return fmt.Errorf("confirm segment: %d %s", headResp.StatusCode, headResp.Reason)
			}
			info.ETag = headResp.Headers.Get("Etag")
			if v := headResp.Headers.Get("Content-Length"); v != "" {
				info.Size, _ = strconv.ParseInt(v, 10, 64)
			}
		}
		return nil
	})
	if err != nil {
		return dto.SegmentInfo{}, err
	}
	return info, nil
}

// putStaticManifest writes a static large object manifest listing every
// confirmed segment.
func (s *StoreSvc) putStaticManifest(ctx context.Context, cfg *dto.UploadObjectConfig, headers map[string]string, segments []dto.SegmentInfo) error {
	entries := make([]dto.SegmentInfo, len(segments))
	for i, seg := range segments {
		entries[i] = seg
		if entries[i].Path != "" && entries[i].Path[0] != '/' {
			entries[i].Path = "/" + entries[i].Path
		}
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	query := make(map[string]string, len(cfg.Query)+1)
	for k, v := range cfg.Query {
		query[k] = v
	}
	query["multipart-manifest"] = "put"

	path := swiftclient.ObjectPath(cfg.Container, cfg.Object)
	resp, err := s.storeRequest(ctx, http.MethodPut, path, query, headers, dto.BytesBody(body), nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("static manifest put: %d %s", resp.StatusCode, resp.Reason)
	}
	metrics.ManifestsWrittenTotal.WithLabelValues("static").Inc()
	return nil
}

// putDynamicManifest writes an empty object whose manifest header points at
// the segment prefix.
func (s *StoreSvc) putDynamicManifest(ctx context.Context, cfg *dto.UploadObjectConfig, headers map[string]string, segContainer, prefix string) error {
	h := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		h[k] = v
	}
	h["X-Object-Manifest"] = segContainer + "/" + prefix

	path := swiftclient.ObjectPath(cfg.Container, cfg.Object)
	resp, err := s.storeRequest(ctx, http.MethodPut, path, cfg.Query, h, nil, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("dynamic manifest put: %d %s", resp.StatusCode, resp.Reason)
	}
	metrics.ManifestsWrittenTotal.WithLabelValues("dynamic").Inc()
	return nil
}
