package collect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jyothri/ipodphotos/constants"
	"github.com/jyothri/ipodphotos/db"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultDriveQuery = "name = '" + PhotoDbFileName + "' and trashed = false"

var (
	cloudConfigOnce sync.Once
	cloudConfig     *oauth2.Config
)

// getCloudConfig builds the OAuth config on first use, after flags are parsed.
func getCloudConfig() *oauth2.Config {
	cloudConfigOnce.Do(func() {
		cloudConfig = &oauth2.Config{
			ClientID:     constants.OauthClientId,
			ClientSecret: constants.OauthClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{drive.DriveReadonlyScope},
		}
	})
	return cloudConfig
}

func getDriveService(ctx context.Context, refreshToken string) (*drive.Service, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is empty")
	}
	tokenSrc := oauth2.Token{
		RefreshToken: refreshToken,
	}
	driveService, err := drive.NewService(ctx, option.WithTokenSource(getCloudConfig().TokenSource(ctx, &tokenSrc)))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return driveService, nil
}

type DrivePhotoDbScan struct {
	// FileId wins over QueryString when both are set.
	FileId      string
	QueryString string
	// RefreshToken may be omitted when ClientKey names a linked account.
	RefreshToken string
	ClientKey    string
}

func DrivePhotoDb(driveScan DrivePhotoDbScan) (int, error) {
	refreshToken, err := resolveRefreshToken(driveScan.RefreshToken, driveScan.ClientKey)
	if err != nil {
		return 0, err
	}
	query := driveScan.QueryString
	if query == "" {
		query = defaultDriveQuery
	}
	return startPhotoDbScan(photoDbSource{
		scanType:  "google_drive",
		clientKey: driveScan.ClientKey,
		name:      driveScan.ClientKey,
		path:      driveScan.FileId,
		filter:    query,
		load: func(ctx context.Context) ([]byte, error) {
			driveService, err := getDriveService(ctx, refreshToken)
			if err != nil {
				return nil, err
			}
			fileId := driveScan.FileId
			if fileId == "" {
				if fileId, err = findDriveFile(ctx, driveService, query); err != nil {
					return nil, err
				}
			}
			return downloadDriveFile(ctx, driveService, fileId)
		},
	})
}

func resolveRefreshToken(refreshToken string, clientKey string) (string, error) {
	if refreshToken != "" {
		return refreshToken, nil
	}
	if clientKey == "" {
		return "", fmt.Errorf("either refresh token or client key is required")
	}
	token, err := db.GetOAuthToken(clientKey)
	if err != nil {
		return "", fmt.Errorf("failed to resolve linked account: %w", err)
	}
	return token.RefreshToken, nil
}

func findDriveFile(ctx context.Context, driveService *drive.Service, query string) (string, error) {
	var fileList *drive.FileList
	err := withRetry(ctx, "files.list", func() error {
		var err error
		fileList, err = driveService.Files.List().
			PageSize(10).
			Q(query).
			Fields(googleapi.Field("files(id,name,size,md5Checksum)")).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to list drive files for query '%s': %w", query, err)
	}
	if len(fileList.Files) == 0 {
		return "", fmt.Errorf("%w in drive for query '%s'", ErrPhotoDbNotFound, query)
	}
	file := fileList.Files[0]
	if len(fileList.Files) > 1 {
		slog.Warn("Multiple drive files match, using the first",
			"query", query,
			"matches", len(fileList.Files),
			"file_id", file.Id)
	}
	slog.Info("Found photo database in drive",
		"file_id", file.Id,
		"name", file.Name,
		"size_bytes", file.Size,
		"md5", file.Md5Checksum)
	return file.Id, nil
}

func downloadDriveFile(ctx context.Context, driveService *drive.Service, fileId string) ([]byte, error) {
	var buf []byte
	err := withRetry(ctx, "files.get", func() error {
		res, err := driveService.Files.Get(fileId).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer res.Body.Close()
		buf, err = readLimited(res.Body, constants.MaxUploadBytes)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download drive file %s: %w", fileId, err)
	}
	return buf, nil
}

// GetIdentity returns the email address of the account behind refreshToken.
func GetIdentity(refreshToken string) (string, error) {
	ctx := context.Background()
	driveService, err := getDriveService(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	var about *drive.About
	err = withRetry(ctx, "about.get", func() error {
		var err error
		about, err = driveService.About.Get().Fields(googleapi.Field("user(emailAddress,displayName)")).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to get user from Drive API: %w", err)
	}
	if about.User == nil {
		return "", nil
	}
	return about.User.EmailAddress, nil
}
