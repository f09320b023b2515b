package report

import (
	"errors"
	"unsafe"

	"github.com/coocood/freecache"
	"github.com/klauspost/compress/zstd"

	"github.com/Tiliavir/file-time-tracker/internal/logger"
)

// Cache holds encoded views keyed by log content and filter.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// freeCache stores values zstd-compressed. freecache refuses entries larger
// than 1/1024 of its size, and encoded views are highly repetitive.
type freeCache struct {
	cache  *freecache.Cache
	ttl    int
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	logger logger.Logger
}

// NewCache returns a freecache of sizeMB megabytes, or a cache that never
// hits when sizeMB is not positive.
func NewCache(sizeMB, ttlSeconds int, log logger.Logger) Cache {
	if sizeMB <= 0 {
		log.Infof(logger.TypeReport, "Report cache disabled")
		return noopCache{}
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		log.Warnf(logger.TypeReport, "Report cache disabled: %v", err)
		return noopCache{}
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		log.Warnf(logger.TypeReport, "Report cache disabled: %v", err)
		return noopCache{}
	}
	log.Debugf(logger.TypeReport, "Report cache initialized: %dMB, TTL=%ds", sizeMB, ttlSeconds)
	return &freeCache{
		cache:  freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:    ttlSeconds,
		enc:    enc,
		dec:    dec,
		logger: log,
	}
}

// stringBytes converts without allocation; freecache copies keys internally
// and never writes to them.
func stringBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *freeCache) Get(key string) ([]byte, bool) {
	packed, err := c.cache.Get(stringBytes(key))
	if err != nil {
		return nil, false
	}
	val, err := c.dec.DecodeAll(packed, nil)
	if err != nil {
		c.logger.Warnf(logger.TypeReport, "dropping unreadable cache entry: %v", err)
		c.cache.Del(stringBytes(key))
		return nil, false
	}
	return val, true
}

func (c *freeCache) Set(key string, value []byte) {
	packed := c.enc.EncodeAll(value, make([]byte, 0, len(value)/4))
	err := c.cache.Set(stringBytes(key), packed, c.ttl)
	switch {
	case errors.Is(err, freecache.ErrLargeEntry):
		c.logger.Warnf(logger.TypeReport, "view of %d bytes (%d compressed) exceeds the report cache entry limit; raise cache.size", len(value), len(packed))
	case err != nil:
		c.logger.Warnf(logger.TypeReport, "caching view: %v", err)
	}
}

type noopCache struct{}

func (noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (noopCache) Set(_ string, _ []byte)      {}
