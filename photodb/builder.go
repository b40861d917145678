package photodb

import (
	"errors"
	"fmt"
	"iter"
)

// Fixed header offsets used by the builder.
const (
	fileHeaderChildCountOffset = 20
	fileHeaderNextIDOffset     = 28

	imageIDOffset            = 16
	imageOriginalDateOffset  = 40
	imageDigitizedDateOffset = 44
	imageSourceSizeOffset    = 48

	nameCorrelationIDOffset = 16
	nameIthmbOffsetOffset   = 20
	nameImageSizeOffset     = 24
	nameHeightOffset        = 32
	nameWidthOffset         = 34

	albumIDOffset     = 20
	albumItemIDOffset = 16

	fileItemCorrelationIDOffset = 16
	fileItemImageSizeOffset     = 20
)

// Database is a fully decoded Photo Database.
type Database struct {
	DataSetCount uint32      `json:"data_set_count"`
	NextImageID  uint32      `json:"next_image_id"`
	Images       []Image     `json:"images"`
	Albums       []Album     `json:"albums"`
	Files        []ThumbFile `json:"files"`
}

// Album groups images by id.
type Album struct {
	ID       uint32   `json:"id"`
	Name     string   `json:"name"`
	ImageIDs []uint32 `json:"image_ids"`
}

// ThumbFile describes one .ithmb thumbnail file and the size of the images it holds.
type ThumbFile struct {
	CorrelationID uint32 `json:"correlation_id"`
	ImageSize     uint32 `json:"image_size"`
}

// Decode reads the whole buffer. Any structural failure aborts the decode.
func Decode(buf []byte) (*Database, error) {
	b := &builder{collect: true}
	for rec, err := range NewDecoder(buf).Records() {
		if err != nil {
			return nil, err
		}
		img, ok, err := b.add(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			b.db.Images = append(b.db.Images, img)
		}
	}
	img, ok, err := b.finish()
	if err != nil {
		return nil, err
	}
	if ok {
		b.db.Images = append(b.db.Images, img)
	}
	return &b.db, nil
}

// Images yields each image once the next image boundary is reached, in container order.
// Images completed before a structural failure are still yielded; the failure comes last.
func Images(buf []byte) iter.Seq2[Image, error] {
	return func(yield func(Image, error) bool) {
		b := &builder{}
		for rec, err := range NewDecoder(buf).Records() {
			if err != nil {
				if img, ok := b.completedBefore(err); ok && !yield(img, nil) {
					return
				}
				yield(Image{}, err)
				return
			}
			img, ok, err := b.add(rec)
			if err != nil {
				yield(Image{}, err)
				return
			}
			if ok && !yield(img, nil) {
				return
			}
		}
		img, ok, err := b.finish()
		if err != nil {
			yield(Image{}, err)
			return
		}
		if ok {
			yield(img, nil)
		}
	}
}

type builder struct {
	// collect keeps albums and files; Images only needs images.
	collect   bool
	sawHeader bool
	db        Database
	image     *imageBuilder
	album     *albumBuilder
}

// add consumes one record and returns the image it completed, if any.
func (b *builder) add(rec Record) (Image, bool, error) {
	if !b.sawHeader {
		if rec.Tag != TagFileHeader {
			return Image{}, false, &DecodeError{
				Tag:    rec.Tag,
				Offset: rec.Offset,
				Err:    fmt.Errorf("expected %s file header: %w", TagFileHeader, ErrMalformed),
			}
		}
		b.sawHeader = true
		return Image{}, false, b.addFileHeader(rec)
	}

	var done Image
	var completed bool
	if b.image != nil && rec.Depth <= b.image.depth {
		done, completed = b.image.build(), true
		b.image = nil
	}
	if b.album != nil && rec.Depth <= b.album.depth {
		b.db.Albums = append(b.db.Albums, b.album.build())
		b.album = nil
	}

	var err error
	switch {
	case rec.Tag == TagImageItem:
		b.image, err = newImageBuilder(rec)
	case b.image != nil:
		err = b.image.add(rec)
	case rec.Tag == TagAlbum && b.collect:
		b.album, err = newAlbumBuilder(rec)
	case b.album != nil:
		err = b.album.add(rec)
	case rec.Tag == TagFileItem && b.collect:
		err = b.addFileItem(rec)
	}
	return done, completed, err
}

func (b *builder) finish() (Image, bool, error) {
	if !b.sawHeader {
		return Image{}, false, &DecodeError{Err: fmt.Errorf("no %s file header: %w", TagFileHeader, ErrMalformed)}
	}
	if b.album != nil {
		b.db.Albums = append(b.db.Albums, b.album.build())
		b.album = nil
	}
	if b.image == nil {
		return Image{}, false, nil
	}
	img := b.image.build()
	b.image = nil
	return img, true, nil
}

// completedBefore returns the pending image when err lies past the end of its record, so
// every byte of the image was read before the failure.
func (b *builder) completedBefore(err error) (Image, bool) {
	var decodeErr *DecodeError
	if b.image == nil || !errors.As(err, &decodeErr) || decodeErr.Offset < b.image.end {
		return Image{}, false
	}
	img := b.image.build()
	b.image = nil
	return img, true
}

func (b *builder) addFileHeader(rec Record) error {
	count, err := rec.Uint32At(fileHeaderChildCountOffset)
	if err != nil {
		return err
	}
	nextID, err := rec.Uint32At(fileHeaderNextIDOffset)
	if err != nil {
		return err
	}
	b.db.DataSetCount = count
	b.db.NextImageID = nextID
	return nil
}

func (b *builder) addFileItem(rec Record) error {
	id, err := rec.Uint32At(fileItemCorrelationIDOffset)
	if err != nil {
		return err
	}
	size, err := rec.Uint32At(fileItemImageSizeOffset)
	if err != nil {
		return err
	}
	b.db.Files = append(b.db.Files, ThumbFile{CorrelationID: id, ImageSize: size})
	return nil
}

// imageBuilder collects the fields of one image. Nil pointers mean "not read yet".
type imageBuilder struct {
	depth           int
	end             int
	id              uint32
	fileSize        *uint64
	originalDate    *uint64
	digitizedDate   *uint64
	fullResFilename *string
	firstFilename   *string
	thumbnails      []Thumbnail
	unknown         []MhodType

	// Enclosing container object, if the walk is inside one.
	container      MhodType
	containerDepth int
	// Index into thumbnails of the image name being read, or -1.
	thumbnail int
}

func newImageBuilder(rec Record) (*imageBuilder, error) {
	id, err := rec.Uint32At(imageIDOffset)
	if err != nil {
		return nil, err
	}
	original, err := rec.Uint32At(imageOriginalDateOffset)
	if err != nil {
		return nil, err
	}
	digitized, err := rec.Uint32At(imageDigitizedDateOffset)
	if err != nil {
		return nil, err
	}
	size, err := rec.Uint32At(imageSourceSizeOffset)
	if err != nil {
		return nil, err
	}
	o, d, s := uint64(original), uint64(digitized), uint64(size)
	return &imageBuilder{
		depth:          rec.Depth,
		end:            rec.Offset + int(rec.Length),
		id:             id,
		originalDate:   &o,
		digitizedDate:  &d,
		fileSize:       &s,
		containerDepth: -1,
		thumbnail:      -1,
	}, nil
}

func (b *imageBuilder) add(rec Record) error {
	if b.containerDepth >= 0 && rec.Depth <= b.containerDepth {
		b.container, b.containerDepth, b.thumbnail = 0, -1, -1
	}

	switch rec.Tag {
	case TagObject:
		switch {
		case rec.ObjectType.IsContainer():
			b.container, b.containerDepth, b.thumbnail = rec.ObjectType, rec.Depth, -1
		case rec.ObjectType == FileName:
			name, err := decodeString(rec)
			if err != nil {
				return err
			}
			b.setFilename(name)
		case !rec.ObjectType.Known():
			b.unknown = append(b.unknown, rec.ObjectType)
		}
	case TagImageName:
		if b.container != ThumbnailImage {
			return nil
		}
		thumb, err := readImageName(rec)
		if err != nil {
			return err
		}
		b.thumbnails = append(b.thumbnails, thumb)
		b.thumbnail = len(b.thumbnails) - 1
	}
	return nil
}

func (b *imageBuilder) setFilename(name string) {
	switch {
	case b.container == ThumbnailImage:
		if b.thumbnail >= 0 {
			b.thumbnails[b.thumbnail].Filename = CanonicalPath(name)
		}
		return
	case b.container == Container && b.fullResFilename == nil:
		b.fullResFilename = &name
	}
	if b.firstFilename == nil {
		b.firstFilename = &name
	}
}

func (b *imageBuilder) build() Image {
	img := Image{id: b.id, thumbnails: b.thumbnails, unknownObjects: b.unknown}
	if b.fileSize != nil {
		img.SetFileSize(*b.fileSize)
	}
	if b.originalDate != nil {
		img.SetOriginalDate(*b.originalDate)
	}
	if b.digitizedDate != nil {
		img.SetDigitizedDate(*b.digitizedDate)
	}
	switch {
	case b.fullResFilename != nil:
		img.SetFilename(*b.fullResFilename)
	case b.firstFilename != nil:
		img.SetFilename(*b.firstFilename)
	}
	return img
}

func readImageName(rec Record) (Thumbnail, error) {
	var t Thumbnail
	var err error
	if t.CorrelationID, err = rec.Uint32At(nameCorrelationIDOffset); err != nil {
		return t, err
	}
	if t.Offset, err = rec.Uint32At(nameIthmbOffsetOffset); err != nil {
		return t, err
	}
	if t.Size, err = rec.Uint32At(nameImageSizeOffset); err != nil {
		return t, err
	}
	if t.Height, err = rec.Uint16At(nameHeightOffset); err != nil {
		return t, err
	}
	if t.Width, err = rec.Uint16At(nameWidthOffset); err != nil {
		return t, err
	}
	return t, nil
}

type albumBuilder struct {
	depth    int
	id       uint32
	name     *string
	imageIDs []uint32
}

func newAlbumBuilder(rec Record) (*albumBuilder, error) {
	id, err := rec.Uint32At(albumIDOffset)
	if err != nil {
		return nil, err
	}
	return &albumBuilder{depth: rec.Depth, id: id}, nil
}

func (b *albumBuilder) add(rec Record) error {
	switch {
	case rec.Tag == TagObject && rec.ObjectType == AlbumName && b.name == nil:
		name, err := decodeString(rec)
		if err != nil {
			return err
		}
		b.name = &name
	case rec.Tag == TagAlbumItem:
		id, err := rec.Uint32At(albumItemIDOffset)
		if err != nil {
			return err
		}
		b.imageIDs = append(b.imageIDs, id)
	}
	return nil
}

func (b *albumBuilder) build() Album {
	a := Album{ID: b.id, ImageIDs: b.imageIDs}
	if b.name != nil {
		a.Name = *b.name
	}
	return a
}
