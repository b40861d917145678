package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jyothri/ipodphotos/constants"
	_ "github.com/lib/pq"
)

const pageSize = 10

var db *sqlx.DB

// SetupDatabase initializes the database connection and runs migrations
func SetupDatabase() error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s "+
		"password=%s dbname=%s sslmode=disable",
		constants.DbHost, constants.DbPort, constants.DbUser, constants.DbPassword, constants.DbName)

	var err error
	db, err = sqlx.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Successfully connected to database", "host", constants.DbHost, "db_name", constants.DbName)

	if err := migrateDB(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

func LogStartScan(scanType string) (int, error) {
	insert_row := `insert into scans
									(scan_type, created_on, scan_start_time, status)
								values
									($1, current_timestamp, current_timestamp, 'Running') RETURNING id`
	lastInsertId := 0
	err := db.QueryRow(insert_row, scanType).Scan(&lastInsertId)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan for type %s: %w", scanType, err)
	}
	return lastInsertId, nil
}

func SaveScanMetadata(name string, sourcePath string, sourceFilter string, md5Hash string, sizeBytes int64, scanId int) error {
	insert_row := `insert into scanmetadata
			(name, source_path, source_filter, md5hash, size_bytes, scan_id)
		values
			($1, $2, $3, $4, $5, $6) RETURNING id`
	_, err := db.Exec(insert_row, name, substr(sourcePath, 2000), substr(sourceFilter, 2000), md5Hash, sizeBytes, scanId)
	if err != nil {
		return fmt.Errorf("failed to save scan metadata for scan %d (name=%s, path=%s): %w",
			scanId, name, sourcePath, err)
	}
	return nil
}

// SavePhotoDbImagesToDb stores images until the channel closes, then marks the scan
// completed unless the producer already marked it failed.
func SavePhotoDbImagesToDb(scanId int, images <-chan PhotoDbImage) {
	for {
		img, more := <-images
		if !more {
			scan, err := GetScanById(scanId)
			if err != nil {
				slog.Error("Failed to get scan status",
					"scan_id", scanId,
					"error", err)
				return
			}

			if scan.Status != "Failed" {
				if err := MarkScanCompleted(scanId); err != nil {
					slog.Error("Failed to mark scan complete",
						"scan_id", scanId,
						"error", err)
				}
			}
			break
		}

		if err := savePhotoDbImage(scanId, img); err != nil {
			slog.Error("Failed to save photo database image, skipping",
				"scan_id", scanId,
				"image_id", img.ImageId,
				"filename", img.Filename,
				"error", err)
		}
	}
}

// savePhotoDbImage writes an image and its thumbnails in one transaction.
func savePhotoDbImage(scanId int, img PhotoDbImage) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert_row := `insert into photodbimage
			(image_id, filename, size_bytes, size_human, original_date_epoch, original_date,
				digitized_date_epoch, digitized_date, dates_valid, unknown_objects, scan_id)
		values
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	lastInsertId := 0
	err = tx.QueryRow(insert_row, img.ImageId, substr(img.Filename, 2000), img.SizeBytes, img.SizeHuman,
		img.OriginalDateEpoch, img.OriginalDate, img.DigitizedDateEpoch, img.DigitizedDate,
		img.DatesValid, img.UnknownObjects, scanId).Scan(&lastInsertId)
	if err != nil {
		return fmt.Errorf("failed to insert image %d: %w", img.ImageId, err)
	}

	insert_thumb_row := `insert into photodbthumbnail
			(photodb_image_id, filename, correlation_id, ithmb_offset, size, width, height)
		values
			($1, $2, $3, $4, $5, $6, $7)`
	for _, thumb := range img.Thumbnails {
		_, err = tx.Exec(insert_thumb_row, lastInsertId, substr(thumb.Filename, 2000), thumb.CorrelationId,
			thumb.IthmbOffset, thumb.Size, thumb.Width, thumb.Height)
		if err != nil {
			return fmt.Errorf("failed to insert thumbnail %d of image %d: %w", thumb.CorrelationId, img.ImageId, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit image %d: %w", img.ImageId, err)
	}
	return nil
}

func SavePhotoDbAlbumsToDb(scanId int, albums []PhotoDbAlbum) error {
	insert_row := `insert into photodbalbum
			(album_id, name, image_ids, scan_id)
		values
			($1, $2, $3, $4)`
	for _, album := range albums {
		_, err := db.Exec(insert_row, album.AlbumId, substr(album.Name, 500), joinIds(album.ImageIds), scanId)
		if err != nil {
			return fmt.Errorf("failed to save album %d for scan %d: %w", album.AlbumId, scanId, err)
		}
	}
	return nil
}

func SaveOAuthToken(accessToken string, refreshToken string, displayName string, clientKey string, scope string, expiresIn int16, tokenType string) error {
	insert_row := `insert into privatetokens
			(access_token, refresh_token, display_name, client_key, scope, expires_in, token_type, created_on)
		values
			($1, $2, $3, $4, $5, $6, $7, current_timestamp) RETURNING id`
	_, err := db.Exec(insert_row, accessToken, refreshToken, displayName, clientKey, scope, expiresIn, tokenType)
	if err != nil {
		return fmt.Errorf("failed to save OAuth token for client %s: %w", clientKey, err)
	}
	return nil
}

func GetOAuthToken(clientKey string) (PrivateToken, error) {
	read_row :=
		`select id, access_token, refresh_token, display_name, client_key, created_on, scope, expires_in, token_type
		FROM privatetokens
		WHERE client_key = $1`
	tokenData := PrivateToken{}
	err := db.Get(&tokenData, read_row, clientKey)
	if err != nil {
		return PrivateToken{}, fmt.Errorf("failed to get OAuth token for client %s: %w", clientKey, err)
	}
	return tokenData, nil
}

func GetRequestAccountsFromDb() ([]Account, error) {
	read_row :=
		`select distinct display_name, client_key from privatetokens p
		`
	accounts := []Account{}
	err := db.Select(&accounts, read_row)
	if err != nil {
		return nil, fmt.Errorf("failed to get request accounts: %w", err)
	}
	return accounts, nil
}

func GetScansFromDb(pageNo int) ([]Scan, int, error) {
	offset := pageSize * (pageNo - 1)
	count_rows := `select count(*) from scans`
	read_row :=
		`select S.id, scan_type,
		 created_on AT TIME ZONE 'UTC' AT TIME ZONE 'America/Los_Angeles' as created_on,
		 scan_start_time AT TIME ZONE 'UTC' AT TIME ZONE 'America/Los_Angeles' as scan_start_time,
		 scan_end_time, CONCAT(source_path, source_filter) as metadata,
		 date_trunc('millisecond', COALESCE(scan_end_time,current_timestamp)-scan_start_time) as duration,
		 COALESCE(status, 'Completed') as status, error_msg, completed_at
	   from scans S LEFT JOIN scanmetadata SM
		 ON S.id = SM.scan_id
		 order by id limit $1 OFFSET $2
		`
	scans := []Scan{}
	var count int
	err := db.Select(&scans, read_row, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get scans for page %d: %w", pageNo, err)
	}
	err = db.Get(&count, count_rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get scan count: %w", err)
	}
	return scans, count, nil
}

// GetPhotoDbImagesFromDb returns one page of images for a scan, thumbnails included.
func GetPhotoDbImagesFromDb(scanId int, pageNo int) ([]PhotoDbImageRead, int, error) {
	offset := pageSize * (pageNo - 1)
	count_rows := `select count(*) from photodbimage where scan_id = $1`
	read_row := `select id, image_id, filename, size_bytes, size_human, original_date_epoch, original_date,
								digitized_date_epoch, digitized_date, dates_valid, unknown_objects, scan_id
								from photodbimage
							 where scan_id = $1 order by id limit $2 offset $3`
	images := []PhotoDbImageRead{}
	var count int
	err := db.Get(&count, count_rows, scanId)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get image count for scan %d: %w", scanId, err)
	}
	err = db.Select(&images, read_row, scanId, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get images for scan %d, page %d: %w", scanId, pageNo, err)
	}
	if err := attachThumbnails(images); err != nil {
		return nil, 0, fmt.Errorf("failed to get thumbnails for scan %d, page %d: %w", scanId, pageNo, err)
	}
	return images, count, nil
}

func attachThumbnails(images []PhotoDbImageRead) error {
	if len(images) == 0 {
		return nil
	}
	rowIds := make([]int, len(images))
	byRowId := make(map[int]*PhotoDbImageRead, len(images))
	for i := range images {
		rowIds[i] = images[i].Id
		byRowId[images[i].Id] = &images[i]
		images[i].Thumbnails = []PhotoDbThumbnailRead{}
	}
	query, args, err := sqlx.In(`select photodb_image_id, filename, correlation_id, ithmb_offset, size, width, height
		from photodbthumbnail where photodb_image_id IN (?) order by id`, rowIds)
	if err != nil {
		return fmt.Errorf("failed to build thumbnail query: %w", err)
	}
	thumbnails := []PhotoDbThumbnailRead{}
	if err := db.Select(&thumbnails, db.Rebind(query), args...); err != nil {
		return err
	}
	for _, thumb := range thumbnails {
		if img, ok := byRowId[thumb.PhotoDbImageId]; ok {
			img.Thumbnails = append(img.Thumbnails, thumb)
		}
	}
	return nil
}

func GetPhotoDbAlbumsFromDb(scanId int) ([]PhotoDbAlbumRead, error) {
	read_row := `select id, album_id, name, image_ids, scan_id
								from photodbalbum
							 where scan_id = $1 order by id`
	albums := []PhotoDbAlbumRead{}
	err := db.Select(&albums, read_row, scanId)
	if err != nil {
		return nil, fmt.Errorf("failed to get albums for scan %d: %w", scanId, err)
	}
	return albums, nil
}

func DeleteScan(scanId int) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Safe to call after commit.
	defer tx.Rollback()

	// Child tables before parent tables.
	deletions := []struct {
		table string
		query string
	}{
		{"photodbthumbnail", `DELETE FROM photodbthumbnail
			WHERE photodb_image_id IN (
				SELECT id FROM photodbimage WHERE scan_id = $1
			)`},
		{"photodbimage", `DELETE FROM photodbimage WHERE scan_id = $1`},
		{"photodbalbum", `DELETE FROM photodbalbum WHERE scan_id = $1`},
		{"scanmetadata", `DELETE FROM scanmetadata WHERE scan_id = $1`},
		{"scans", `DELETE FROM scans WHERE id = $1`},
	}

	for _, deletion := range deletions {
		result, err := tx.Exec(deletion.query, scanId)
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", deletion.table, err)
		}

		rowsAffected, _ := result.RowsAffected()
		slog.Debug("Deleted rows",
			"table", deletion.table,
			"rows", rowsAffected,
			"scan_id", scanId)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("Successfully deleted scan", "scan_id", scanId)
	return nil
}

// MarkScanCompleted marks a scan as completed
func MarkScanCompleted(scanId int) error {
	update_row := `update scans
								 set scan_end_time = current_timestamp, completed_at = current_timestamp, status = 'Completed'
								 where id = $1`
	res, err := db.Exec(update_row, scanId)
	if err != nil {
		return fmt.Errorf("failed to mark scan %d as completed: %w", scanId, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for scan %d: %w", scanId, err)
	}
	if count != 1 {
		slog.Warn("Unexpected rows affected when marking scan complete",
			"scan_id", scanId,
			"expected", 1,
			"actual", count)
	}
	slog.Info("Scan marked as completed", "scan_id", scanId)
	return nil
}

// MarkScanFailed marks a scan as failed with an error message
func MarkScanFailed(scanId int, errMsg string) error {
	update_row := `update scans
								 set scan_end_time = current_timestamp, status = 'Failed', error_msg = $2
								 where id = $1`
	res, err := db.Exec(update_row, scanId, errMsg)
	if err != nil {
		return fmt.Errorf("failed to mark scan %d as failed: %w", scanId, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for scan %d: %w", scanId, err)
	}
	if count != 1 {
		slog.Warn("Unexpected rows affected when marking scan failed",
			"scan_id", scanId,
			"expected", 1,
			"actual", count)
	}
	slog.Error("Scan marked as failed", "scan_id", scanId, "error", errMsg)
	return nil
}

// GetScanById retrieves a scan by ID
func GetScanById(scanId int) (*Scan, error) {
	read_row := `select id, scan_type, COALESCE(status, 'Completed') as status,
		error_msg, completed_at FROM scans WHERE id = $1`

	var scan Scan
	err := db.Get(&scan, read_row, scanId)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan %d: %w", scanId, err)
	}

	return &scan, nil
}

func migrateDB() error {
	var count int
	has_table_query := `select count(*)
		from information_schema.tables
		where table_name = $1`
	err := db.Get(&count, has_table_query, "version")
	if err != nil {
		return fmt.Errorf("failed to check for version table: %w", err)
	}
	if count == 0 {
		return migrateDBv0()
	}
	return nil
}

func migrateDBv0() error {
	insert_version_table := `delete from version;
		INSERT INTO version (id) VALUES (1)`

	statements := []struct {
		name string
		sql  string
	}{
		{"scans", create_scans_table},
		{"scanmetadata", create_scanmetadata_table},
		{"photodbimage", create_photodbimage_table},
		{"photodbthumbnail", create_photodbthumbnail_table},
		{"photodbalbum", create_photodbalbum_table},
		{"privatetokens", create_privatetokens_table},
		{"version", create_version_table},
	}

	for _, stmt := range statements {
		_, err := db.Exec(stmt.sql)
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", stmt.name, err)
		}
		slog.Info("Created table", "table", stmt.name)
	}

	_, err := db.Exec(insert_version_table)
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}
	return nil
}

const create_scans_table string = `CREATE TABLE IF NOT EXISTS scans (
		  id serial PRIMARY KEY,
		  scan_type VARCHAR (50) NOT NULL,
		  created_on TIMESTAMP NOT NULL,
		  scan_start_time TIMESTAMP NOT NULL,
		  scan_end_time TIMESTAMP,
		  status VARCHAR(50) DEFAULT 'Completed',
		  error_msg TEXT,
		  completed_at TIMESTAMP
		)`

const create_version_table string = `CREATE TABLE IF NOT EXISTS version (
		  id INT PRIMARY KEY
		)`

const create_scanmetadata_table string = `CREATE TABLE IF NOT EXISTS scanmetadata (
	id serial PRIMARY KEY,
	name VARCHAR(200),
	source_path VARCHAR(2000),
	source_filter VARCHAR(2000),
	md5hash VARCHAR(60),
	size_bytes BIGINT,
	scan_id INT NOT NULL,
	FOREIGN KEY (scan_id)
		REFERENCES Scans (id)
)`

const create_photodbimage_table string = `CREATE TABLE IF NOT EXISTS photodbimage (
	id serial PRIMARY KEY NOT NULL,
	image_id BIGINT NOT NULL,
	filename TEXT NOT NULL,
	size_bytes BIGINT,
	size_human VARCHAR(50),
	original_date_epoch BIGINT,
	original_date TIMESTAMP,
	digitized_date_epoch BIGINT,
	digitized_date TIMESTAMP,
	dates_valid boolean,
	unknown_objects VARCHAR(200),
	scan_id INT NOT NULL,
	FOREIGN KEY (scan_id)
		REFERENCES Scans (id)
)`

const create_photodbthumbnail_table string = `CREATE TABLE IF NOT EXISTS photodbthumbnail (
	id serial PRIMARY KEY NOT NULL,
	photodb_image_id INT NOT NULL,
	filename TEXT,
	correlation_id BIGINT,
	ithmb_offset BIGINT,
	size BIGINT,
	width INT,
	height INT,
	FOREIGN KEY (photodb_image_id)
		REFERENCES photodbimage (id)
)`

const create_photodbalbum_table string = `CREATE TABLE IF NOT EXISTS photodbalbum (
	id serial PRIMARY KEY NOT NULL,
	album_id BIGINT NOT NULL,
	name VARCHAR(500),
	image_ids TEXT,
	scan_id INT NOT NULL,
	FOREIGN KEY (scan_id)
		REFERENCES Scans (id)
)`

const create_privatetokens_table string = `CREATE TABLE IF NOT EXISTS privatetokens (
	id serial PRIMARY KEY NOT NULL,
	access_token VARCHAR(800),
	refresh_token VARCHAR(800),
	display_name VARCHAR(100),
	client_key VARCHAR(100) NOT NULL UNIQUE,
	created_on TIMESTAMP NOT NULL,
	scope VARCHAR(500), 
	expires_in INT, 
	token_type VARCHAR(100)
)`

type PrivateToken struct {
	Id           int       `db:"id" json:"scan_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	Client_key   string    `db:"client_key"`
	CreatedOn    time.Time `db:"created_on"`
	DisplayName  string    `db:"display_name"`
	Scope        string    `db:"scope"`
	ExpiresIn    int       `db:"expires_in"`
	TokenType    string    `db:"token_type"`
}

type Scan struct {
	Id            int            `db:"id" json:"scan_id"`
	ScanType      string         `db:"scan_type"`
	CreatedOn     time.Time      `db:"created_on"`
	ScanStartTime time.Time      `db:"scan_start_time"`
	ScanEndTime   sql.NullTime   `db:"scan_end_time"`
	Metadata      string         `db:"metadata"`
	Duration      string         `db:"duration"`
	Status        string         `db:"status"`
	ErrorMsg      sql.NullString `db:"error_msg"`
	CompletedAt   sql.NullTime   `db:"completed_at"`
}

type PhotoDbImageRead struct {
	Id                 int                    `db:"id" json:"photodb_image_id"`
	ScanId             int                    `db:"scan_id" json:"scan_id"`
	ImageId            int64                  `db:"image_id" json:"image_id"`
	Filename           string                 `db:"filename" json:"filename"`
	SizeBytes          sql.NullInt64          `db:"size_bytes" json:"size_bytes"`
	SizeHuman          sql.NullString         `db:"size_human" json:"size_human"`
	OriginalDateEpoch  sql.NullInt64          `db:"original_date_epoch" json:"original_date_epoch"`
	OriginalDate       sql.NullTime           `db:"original_date" json:"original_date"`
	DigitizedDateEpoch sql.NullInt64          `db:"digitized_date_epoch" json:"digitized_date_epoch"`
	DigitizedDate      sql.NullTime           `db:"digitized_date" json:"digitized_date"`
	DatesValid         sql.NullBool           `db:"dates_valid" json:"dates_valid"`
	UnknownObjects     sql.NullString         `db:"unknown_objects" json:"unknown_objects"`
	Thumbnails         []PhotoDbThumbnailRead `db:"-" json:"thumbnails"`
}

type PhotoDbThumbnailRead struct {
	PhotoDbImageId int            `db:"photodb_image_id" json:"-"`
	Filename       sql.NullString `db:"filename" json:"filename"`
	CorrelationId  sql.NullInt64  `db:"correlation_id" json:"correlation_id"`
	IthmbOffset    sql.NullInt64  `db:"ithmb_offset" json:"ithmb_offset"`
	Size           sql.NullInt64  `db:"size" json:"size"`
	Width          sql.NullInt32  `db:"width" json:"width"`
	Height         sql.NullInt32  `db:"height" json:"height"`
}

type PhotoDbAlbumRead struct {
	Id       int            `db:"id" json:"photodb_album_id"`
	ScanId   int            `db:"scan_id" json:"scan_id"`
	AlbumId  int64          `db:"album_id" json:"album_id"`
	Name     sql.NullString `db:"name" json:"name"`
	ImageIds sql.NullString `db:"image_ids" json:"image_ids"`
}

type Account struct {
	ClientKey   string `db:"client_key" json:"clientKey"`
	DisplayName string `db:"display_name" json:"displayName"`
}

func joinIds(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func substr(s string, end int) string {
	if len(s) < end {
		return s
	}
	counter := 0
	for i := range s {
		if counter == end {
			return s[0:i]
		}
		counter++
	}
	return s
}
