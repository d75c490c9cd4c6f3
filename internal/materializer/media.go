package materializer

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// SNIFF_BYTES is the number of leading bytes downloaded for content sniffing
const SNIFF_BYTES = 512

var extensionMimeTypes = map[string]string{
	".gif":  "image/gif",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".avif": "image/avif",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".glb":  "model/gltf-binary",
	".gltf": "model/gltf+json",
}

// media is the resolved display information of a record
type media struct {
	mediaType domain.MediaType
	mimeType  string
	frameURL  string
	imageURL  string
	gifURL    string
	videoURL  string
	threeDURL string
}

// mimeTypeFromExtension guesses the mime type from the URL path extension
func mimeTypeFromExtension(rawURL string) string {
	if mimeType, ok := dataURIMimeType(rawURL); ok {
		return mimeType
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return extensionMimeTypes[strings.ToLower(path.Ext(u.Path))]
}

// dataURIMimeType extracts the mime type declared by a data URI
func dataURIMimeType(rawURL string) (string, bool) {
	rest, ok := strings.CutPrefix(rawURL, "data:")
	if !ok {
		return "", false
	}
	end := strings.IndexAny(rest, ";,")
	if end <= 0 {
		return "text/plain", true
	}
	return strings.ToLower(rest[:end]), true
}

// mediaTypeOf maps a mime type to the display class of a collectible
func mediaTypeOf(mimeType string) domain.MediaType {
	switch {
	case mimeType == "image/gif":
		return domain.MediaTypeGIF
	case strings.HasPrefix(mimeType, "video/"):
		return domain.MediaTypeVideo
	case strings.HasPrefix(mimeType, "model/"):
		return domain.MediaTypeThreeD
	default:
		return domain.MediaTypeImage
	}
}

// detectMimeType asks the server for the content type of the URL and falls back
// to sniffing the first bytes of the content when the server does not tell
func (m *Materializer) detectMimeType(ctx context.Context, targetURL string) (string, error) {
	resp, err := m.httpClient.Head(ctx, targetURL)
	if err == nil {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
		if resp.StatusCode < 400 {
			contentType, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
			contentType = strings.ToLower(strings.TrimSpace(contentType))
			if contentType != "" && contentType != "application/octet-stream" {
				logger.DebugCtx(ctx, "Detected mime type from headers",
					zap.String("url", targetURL),
					zap.String("mimeType", contentType))
				return contentType, nil
			}
		}
	} else {
		logger.DebugCtx(ctx, "HEAD request failed, sniffing content", zap.String("url", targetURL), zap.Error(err))
	}

	content, err := m.httpClient.GetPartialContent(ctx, targetURL, SNIFF_BYTES)
	if err != nil {
		return "", fmt.Errorf("failed to download content for mime type detection: %w", err)
	}

	mtype := mimetype.Detect(content)
	mimeType, _, _ := strings.Cut(mtype.String(), ";")

	logger.DebugCtx(ctx, "Detected mime type from content",
		zap.String("url", targetURL),
		zap.String("mimeType", mimeType))

	return mimeType, nil
}

// resolveMedia classifies the record's media. The animation takes precedence
// over the image; an animation that cannot be reached fails the record.
func (m *Materializer) resolveMedia(ctx context.Context, asset domain.RawAsset) (media, error) {
	if asset.ImageURL == "" && asset.AnimationURL == "" {
		return media{}, domain.ErrNoMedia
	}

	var info media
	if asset.ImageURL != "" {
		imageURL, err := m.resolver.Resolve(ctx, asset.ImageURL)
		if err != nil {
			logger.WarnCtx(ctx, "Failed to resolve image URL, keeping original",
				zap.String("url", asset.ImageURL),
				zap.Error(err))
			imageURL = asset.ImageURL
		}
		info.imageURL = imageURL
		info.frameURL = imageURL
		info.mimeType = mimeTypeFromExtension(imageURL)
		info.mediaType = domain.MediaTypeImage
		if info.mimeType == "image/gif" {
			info.mediaType = domain.MediaTypeGIF
			info.gifURL = imageURL
		}
	}

	if asset.AnimationURL == "" {
		return info, nil
	}

	animationURL, err := m.resolver.Resolve(ctx, asset.AnimationURL)
	if err != nil {
		return media{}, fmt.Errorf("failed to resolve animation URL %s: %w", asset.AnimationURL, err)
	}

	mimeType := mimeTypeFromExtension(animationURL)
	if mimeType == "" {
		mimeType, err = m.detectMimeType(ctx, animationURL)
		if err != nil {
			return media{}, fmt.Errorf("animation URL %s is unreachable: %w", animationURL, err)
		}
	}

	info.mimeType = mimeType
	info.mediaType = mediaTypeOf(mimeType)
	switch info.mediaType {
	case domain.MediaTypeGIF:
		info.gifURL = animationURL
	case domain.MediaTypeVideo:
		info.videoURL = animationURL
	case domain.MediaTypeThreeD:
		info.threeDURL = animationURL
	default:
		// Interactive or still animations are shown through their frame
		if info.imageURL == "" {
			info.imageURL = animationURL
		}
	}
	if info.frameURL == "" {
		info.frameURL = info.imageURL
	}

	return info, nil
}
