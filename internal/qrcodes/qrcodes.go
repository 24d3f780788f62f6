// Package qrcodes turns scanned labels back into assets and kits and renders
// printable QR labels.
package qrcodes

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	custom_error "shelf/pkg/errors"
	"shelf/pkg/metadata"
	"shelf/pkg/models"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	scanPath  = "/qr/"
	imageSize = 256
)

type AssetFinder interface {
	FindAssetByCode(ctx context.Context, organizationID, code string) (*models.Asset, error)
}

type KitFinder interface {
	FindKitByCode(ctx context.Context, organizationID, code string) (*models.Kit, error)
}

type ScanResult struct {
	Type  string        `json:"type"`
	Code  string        `json:"code"`
	Asset *models.Asset `json:"asset,omitempty"`
	Kit   *models.Kit   `json:"kit,omitempty"`
}

type Service struct {
	assets  AssetFinder
	kits    KitFinder
	baseURL string
}

func NewService(a AssetFinder, k KitFinder, baseURL string) *Service {
	return &Service{assets: a, kits: k, baseURL: strings.TrimRight(baseURL, "/")}
}

// ParseScan extracts the code from a scanned value: either a label URL
// ending in /qr/<code> or the bare code.
func ParseScan(value string) (metadata.Code, error) {
	raw := strings.TrimSpace(value)

	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		idx := strings.LastIndex(u.Path, scanPath)
		if idx < 0 {
			return metadata.Code{}, custom_error.Invalid("value", value, "not a label url")
		}
		raw = strings.Trim(u.Path[idx+len(scanPath):], "/")
	}

	code, err := metadata.ParseCode(raw)
	if err != nil {
		return metadata.Code{}, custom_error.Invalid("value", value, err.Error())
	}

	return code, nil
}

// ResolveScan finds the asset or kit a scanned label belongs to.
func (s *Service) ResolveScan(ctx context.Context, organizationID, value string) (*ScanResult, error) {
	code, err := ParseScan(value)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Code: code.String()}
	if code.IsKit() {
		kit, err := s.kits.FindKitByCode(ctx, organizationID, code.String())
		if err != nil {
			return nil, err
		}
		result.Type = "kit"
		result.Kit = kit
		return result, nil
	}

	asset, err := s.assets.FindAssetByCode(ctx, organizationID, code.String())
	if err != nil {
		return nil, err
	}
	result.Type = "asset"
	result.Asset = asset

	return result, nil
}

// LabelURL is the content encoded in the label of code.
func (s *Service) LabelURL(code string) string {
	return s.baseURL + scanPath + code
}

// PNG renders the label of one code.
func (s *Service) PNG(code string) ([]byte, error) {
	parsed, err := metadata.ParseCode(code)
	if err != nil {
		return nil, custom_error.Invalid("code", code, err.Error())
	}

	png, err := qrcode.Encode(s.LabelURL(parsed.String()), qrcode.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code %s: %w", parsed.String(), err)
	}

	return png, nil
}

// WriteBundle writes a zip archive with one <code>.png per code to w.
// Duplicate codes are written once.
func (s *Service) WriteBundle(w io.Writer, codes []string) error {
	archive := zip.NewWriter(w)
	written := make(map[string]struct{}, len(codes))

	for _, code := range codes {
		png, err := s.PNG(code)
		if err != nil {
			return err
		}

		name := strings.ToUpper(strings.TrimSpace(code)) + ".png"
		if _, ok := written[name]; ok {
			continue
		}
		written[name] = struct{}{}

		f, err := archive.Create(name)
		if err != nil {
			return fmt.Errorf("create %s in archive: %w", name, err)
		}
		if _, err := f.Write(png); err != nil {
			return fmt.Errorf("write %s to archive: %w", name, err)
		}
	}

	return archive.Close()
}
