package collect

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jyothri/ipodphotos/db"
	"github.com/jyothri/ipodphotos/notification"
	"github.com/jyothri/ipodphotos/photodb"
)

// photoDbSource describes where a scan reads its container from.
type photoDbSource struct {
	scanType  string
	clientKey string
	// Recorded in scan metadata.
	name   string
	path   string
	filter string
	load   func(ctx context.Context) ([]byte, error)
}

// startPhotoDbScan records the scan and decodes the container in the background. Images
// are saved as they are decoded, so a structural failure keeps the images before it.
func startPhotoDbScan(src photoDbSource) (int, error) {
	scanId, err := db.LogStartScan(src.scanType)
	if err != nil {
		return 0, fmt.Errorf("failed to start %s scan (path=%s): %w", src.scanType, src.path, err)
	}
	if src.clientKey == "" {
		src.clientKey = notification.NOTIFICATION_ALL
	}

	images := make(chan db.PhotoDbImage, 10)
	go func() {
		defer close(images)

		err := collectPhotoDb(scanId, src, images)
		if err != nil {
			slog.Error("Photo database scan failed",
				"scan_id", scanId,
				"scan_type", src.scanType,
				"path", src.path,
				"error", err)
			db.MarkScanFailed(scanId, err.Error())
			return
		}
	}()

	go db.SavePhotoDbImagesToDb(scanId, images)

	return scanId, nil
}

func collectPhotoDb(scanId int, src photoDbSource, images chan<- db.PhotoDbImage) (err error) {
	lock.Lock()
	defer lock.Unlock()
	resetCounters()
	ticker := time.NewTicker(5 * time.Second)
	done := make(chan error, 1)
	go logProgress(scanId, src.clientKey, done, ticker)
	defer func() {
		ticker.Stop()
		done <- err
	}()

	buf, err := src.load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read photo database: %w", err)
	}
	counter_bytes.Store(int64(len(buf)))

	go func() {
		if err := db.SaveScanMetadata(src.name, src.path, src.filter, md5Hex(buf), int64(len(buf)), scanId); err != nil {
			slog.Error("Failed to save scan metadata",
				"scan_id", scanId,
				"path", src.path,
				"error", err)
		}
	}()

	for img, err := range photodb.Images(buf) {
		if err != nil {
			return fmt.Errorf("failed to decode photo database after %d images: %w", counter_processed.Load(), err)
		}
		images <- toDbImage(img)
		counter_processed.Add(1)
	}

	// Images decoded cleanly, so the full decode only adds the albums.
	database, err := photodb.Decode(buf)
	if err != nil {
		return fmt.Errorf("failed to decode photo database albums: %w", err)
	}
	if err := db.SavePhotoDbAlbumsToDb(scanId, toDbAlbums(database.Albums)); err != nil {
		return fmt.Errorf("failed to save albums: %w", err)
	}
	slog.Info("Photo database decoded",
		"scan_id", scanId,
		"images", counter_processed.Load(),
		"albums", len(database.Albums),
		"size_bytes", len(buf))
	return nil
}

func toDbImage(img photodb.Image) db.PhotoDbImage {
	out := db.PhotoDbImage{
		ImageId:            int64(img.ID()),
		Filename:           img.Filename(),
		SizeBytes:          int64(img.FileSizeBytes()),
		SizeHuman:          img.FileSizeHumanReadable(),
		OriginalDateEpoch:  int64(img.OriginalDateEpoch()),
		DigitizedDateEpoch: int64(img.DigitizedDateEpoch()),
		DatesValid:         img.AreDatesValid(),
	}
	if t, err := img.OriginalDate(); err == nil {
		out.OriginalDate = &t
	}
	if t, err := img.DigitizedDate(); err == nil {
		out.DigitizedDate = &t
	}
	unknown := make([]string, 0, len(img.UnknownObjects()))
	for _, code := range img.UnknownObjects() {
		unknown = append(unknown, strconv.Itoa(int(code)))
	}
	out.UnknownObjects = strings.Join(unknown, ",")
	for _, thumb := range img.Thumbnails() {
		out.Thumbnails = append(out.Thumbnails, db.PhotoDbThumbnail{
			Filename:      thumb.Filename,
			CorrelationId: int64(thumb.CorrelationID),
			IthmbOffset:   int64(thumb.Offset),
			Size:          int64(thumb.Size),
			Width:         int(thumb.Width),
			Height:        int(thumb.Height),
		})
	}
	return out
}

func toDbAlbums(albums []photodb.Album) []db.PhotoDbAlbum {
	out := make([]db.PhotoDbAlbum, 0, len(albums))
	for _, album := range albums {
		ids := make([]int64, len(album.ImageIDs))
		for i, id := range album.ImageIDs {
			ids[i] = int64(id)
		}
		out = append(out, db.PhotoDbAlbum{AlbumId: int64(album.ID), Name: album.Name, ImageIds: ids})
	}
	return out
}

func md5Hex(buf []byte) string {
	sum := md5.Sum(buf)
	return hex.EncodeToString(sum[:])
}
