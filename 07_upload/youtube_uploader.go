package upload

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shorts-studio/config"
	"shorts-studio/stage"
	"shorts-studio/types"
)

// Credentials are the OAuth2 client and refresh token of the channel owner
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// CredentialsFromEnv reads YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET and YOUTUBE_REFRESH_TOKEN
func CredentialsFromEnv() Credentials {
	return Credentials{
		ClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		ClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		RefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
	}
}

func (c Credentials) complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Uploader handles YouTube video upload via Data API v3
type Uploader struct {
	cfg         *config.Config
	creds       Credentials
	oauthURL    oauth2.Endpoint
	serviceOpts []option.ClientOption
}

// New creates a new Uploader
func New(cfg *config.Config, creds Credentials) *Uploader {
	return &Uploader{cfg: cfg, creds: creds, oauthURL: google.Endpoint}
}

// WithEndpoints points the token exchange and the API at other hosts
func (u *Uploader) WithEndpoints(tokenURL, apiEndpoint string) *Uploader {
	u.oauthURL = oauth2.Endpoint{TokenURL: tokenURL, AuthURL: u.oauthURL.AuthURL}
	u.serviceOpts = append(u.serviceOpts, option.WithEndpoint(apiEndpoint))
	return u
}

// Upload sends the video with its metadata and returns where it was published
func (u *Uploader) Upload(ctx context.Context, videoPath string, meta *types.VideoMetadata) (*types.Publication, error) {
	if !u.creds.complete() {
		return nil, stage.Local(stage.Publish, "YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set", nil)
	}

	log.Println("[upload] Authenticating with YouTube API...")
	svc, err := youtube.NewService(ctx, append([]option.ClientOption{
		option.WithHTTPClient(u.oauthClient(ctx)),
	}, u.serviceOpts...)...)
	if err != nil {
		return nil, stage.Local(stage.Publish, "youtube service", err)
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return nil, stage.Local(stage.Publish, "open video file", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Printf("[upload] Uploading %q (%.1f MB)", meta.Title, float64(fi.Size())/1024/1024)
	}

	visibility := meta.Visibility
	if visibility == "" {
		visibility = u.cfg.Upload.Visibility
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           meta.CategoryID,
			DefaultLanguage:      u.cfg.Upload.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.Upload.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).
		NotifySubscribers(u.cfg.Upload.NotifySubscribers).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return nil, stage.Service(stage.Publish, "youtube upload", err)
	}
	if uploaded.Id == "" {
		return nil, stage.Malformed(stage.Publish, "upload response has no video id", nil)
	}

	pub := &types.Publication{
		VideoID:    uploaded.Id,
		URL:        fmt.Sprintf("https://www.youtube.com/shorts/%s", uploaded.Id),
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
	}
	log.Printf("[upload] ✅ Uploaded: %s", pub.URL)
	return pub, nil
}

// oauthClient exchanges the stored refresh token for access tokens on demand
func (u *Uploader) oauthClient(ctx context.Context) *http.Client {
	conf := &oauth2.Config{
		ClientID:     u.creds.ClientID,
		ClientSecret: u.creds.ClientSecret,
		Endpoint:     u.oauthURL,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}
	token := &oauth2.Token{
		RefreshToken: u.creds.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return conf.Client(ctx, token)
}
